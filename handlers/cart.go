// cart.go - Handles the caller's cart and the admin cart views

package handlers // Declares the package name

import ( // Import required packages
	"log/slog"

	"cafesantander/apperr"
	"cafesantander/middleware" // Identity from the context
	"cafesantander/response"   // Uniform JSON envelope

	"github.com/gin-gonic/gin" // Gin web framework
)

type AddItemInput struct { // Struct for add-to-cart input
	ProductID uint `json:"productId"` // Product to add (required)
	Quantity  *int `json:"quantity"`  // Units to add (required, positive)
}

type UpdateItemInput struct { // Struct for quantity update input
	Quantity *int `json:"quantity"` // New quantity, 0 or less removes the line
}

func GetCart(s *Services) gin.HandlerFunc { // Handler returning the active cart
	return func(c *gin.Context) {
		contents, err := s.Cart.GetCartContents(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, contents, "")
	}
}

func AddToCart(s *Services) gin.HandlerFunc { // Handler adding a product to the cart
	return func(c *gin.Context) {
		var input AddItemInput
		if !bindJSON(c, &input) {
			return
		}
		if input.Quantity == nil {
			response.Fail(c, apperr.Validation("quantity is required"))
			return
		}
		contents, err := s.Cart.AddItem(c.Request.Context(), middleware.UserID(c), input.ProductID, *input.Quantity)
		if err != nil {
			response.Fail(c, err) // 400 invalid input, 404 unknown product
			return
		}
		response.OK(c, contents, "product added to cart")
	}
}

func UpdateCartItem(s *Services) gin.HandlerFunc { // Handler changing a line's quantity
	return func(c *gin.Context) {
		itemID, ok := idParam(c, "itemId")
		if !ok {
			return
		}
		var input UpdateItemInput
		if !bindJSON(c, &input) {
			return
		}
		if input.Quantity == nil {
			response.Fail(c, apperr.Validation("quantity is required"))
			return
		}
		contents, err := s.Cart.UpdateItemQuantity(c.Request.Context(), middleware.UserID(c), itemID, *input.Quantity)
		if err != nil {
			response.Fail(c, err) // 403 not owned, 404 missing
			return
		}
		response.OK(c, contents, "cart updated")
	}
}

func RemoveCartItem(s *Services) gin.HandlerFunc { // Handler removing one line
	return func(c *gin.Context) {
		itemID, ok := idParam(c, "itemId")
		if !ok {
			return
		}
		contents, err := s.Cart.RemoveItem(c.Request.Context(), middleware.UserID(c), itemID)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, contents, "product removed from cart")
	}
}

func ClearCart(s *Services) gin.HandlerFunc { // Handler emptying the active cart
	return func(c *gin.Context) {
		if err := s.Cart.ClearCart(c.Request.Context(), middleware.UserID(c)); err != nil {
			response.Fail(c, err)
			return
		}
		response.Message(c, "cart cleared")
	}
}

func CartSocket(s *Services) gin.HandlerFunc { // Handler upgrading to the cart push channel
	return func(c *gin.Context) {
		if err := s.Hub.Serve(c.Writer, c.Request, middleware.UserID(c)); err != nil {
			slog.Debug("cart socket not upgraded", "err", err)
		}
	}
}

// Admin views

func ListCarts(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		carts, err := s.Cart.ListAllCarts(c.Request.Context())
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, carts, "")
	}
}

func GetCartByID(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, ok := idParam(c, "cartId")
		if !ok {
			return
		}
		detail, err := s.Cart.GetCartByID(c.Request.Context(), cartID)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, detail, "")
	}
}

func DeleteCart(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, ok := idParam(c, "cartId")
		if !ok {
			return
		}
		if err := s.Cart.DeleteCart(c.Request.Context(), cartID); err != nil {
			response.Fail(c, err)
			return
		}
		response.Message(c, "cart deleted")
	}
}
