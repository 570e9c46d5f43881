// admin.go - Handles the catalog, account management and dashboard endpoints

package handlers // Declares the package name

import ( // Import required packages
	"bytes"
	"fmt"
	"net/http"
	"time"

	"cafesantander/apperr"
	"cafesantander/catalog"  // Product service
	"cafesantander/response" // Uniform JSON envelope
	"cafesantander/users"    // Account service

	"github.com/gin-gonic/gin" // Gin web framework
)

// Public catalog

func ListProducts(s *Services) gin.HandlerFunc { // Storefront listing, available products only
	return func(c *gin.Context) {
		products, err := s.Catalog.List(c.Request.Context(), true)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, products, "")
	}
}

func GetProduct(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		p, err := s.Catalog.Get(c.Request.Context(), id)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, p, "")
	}
}

// Admin catalog

func AdminListProducts(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := s.Catalog.List(c.Request.Context(), false)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, products, "")
	}
}

func SearchProducts(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := s.Catalog.Search(c.Request.Context(), c.Query("q"))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, products, "")
	}
}

func CreateProduct(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input catalog.ProductInput
		if !bindJSON(c, &input) {
			return
		}
		p, err := s.Catalog.Create(c.Request.Context(), input)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Created(c, p, "product created")
	}
}

func UpdateProduct(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input catalog.ProductInput
		if !bindJSON(c, &input) {
			return
		}
		p, err := s.Catalog.Update(c.Request.Context(), id, input)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, p, "product updated")
	}
}

func DeleteProduct(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := s.Catalog.Delete(c.Request.Context(), id); err != nil {
			response.Fail(c, err)
			return
		}
		response.Message(c, "product deleted")
	}
}

func ExportProducts(s *Services) gin.HandlerFunc { // Download the catalog as xlsx
	return func(c *gin.Context) {
		var buf bytes.Buffer // Buffer first so a failure can still answer with an envelope
		if err := s.Catalog.ExportXLSX(c.Request.Context(), &buf); err != nil {
			response.Fail(c, err)
			return
		}
		name := fmt.Sprintf("products-%s.xlsx", time.Now().Format("20060102"))
		c.Header("Content-Disposition", "attachment; filename="+name)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}

func ImportProducts(s *Services) gin.HandlerFunc { // Upload an xlsx in the export layout
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			response.Fail(c, apperr.Validation("xlsx file is required"))
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.Fail(c, apperr.Unexpected("failed to open upload", err))
			return
		}
		defer f.Close()

		res, err := s.Catalog.ImportXLSX(c.Request.Context(), f, fh.Size)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, res, fmt.Sprintf("%d created, %d updated, %d skipped", res.Created, res.Updated, res.Skipped))
	}
}

// Accounts

func ListUsers(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.Users.List(c.Request.Context())
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, list, "")
	}
}

func SearchUsers(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.Users.Search(c.Request.Context(), c.Query("q"))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, list, "")
	}
}

func GetUser(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		u, err := s.Users.Get(c.Request.Context(), id)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, u, "")
	}
}

func UpdateUser(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input users.UpdateInput
		if !bindJSON(c, &input) {
			return
		}
		u, err := s.Users.Update(c.Request.Context(), id, input)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, u, "user updated")
	}
}

func DeleteUser(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := s.Users.Delete(c.Request.Context(), id); err != nil {
			response.Fail(c, err)
			return
		}
		response.Message(c, "user deleted")
	}
}

func Stats(s *Services) gin.HandlerFunc { // Dashboard counters
	return func(c *gin.Context) {
		st, err := s.Users.Stats(c.Request.Context())
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, st, "")
	}
}
