// handlers.go - Shared dependencies and request helpers for the HTTP handlers

package handlers // Declares the package name

import ( // Import required packages
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cafesantander/apperr"
	"cafesantander/auth"
	"cafesantander/cart"
	"cafesantander/catalog"
	"cafesantander/realtime"
	"cafesantander/response"
	"cafesantander/uploads"
	"cafesantander/users"

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Binding error details
	"gorm.io/gorm"
)

// Services bundles what the handlers need. Built once in main.
type Services struct {
	DB      *gorm.DB
	Tokens  *auth.Tokens
	Auth    *auth.Service
	Cart    *cart.Service
	Catalog *catalog.Service
	Users   *users.Service
	Uploads *uploads.Service
	Hub     *realtime.Hub
}

// bindJSON decodes the body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Fail(c, apperr.Validation(bindMessage(err)))
		return false
	}
	return true
}

// bindMessage turns binding errors into a short client message.
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
			switch fe.Tag() {
			case "required":
				msgs = append(msgs, field+" is required")
			case "storemail":
				msgs = append(msgs, "invalid email format")
			default:
				msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
			}
		}
		return strings.Join(msgs, ", ")
	}
	return "invalid request body"
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, apperr.Validation(name+" must be a positive number"))
		return 0, false
	}
	return uint(id), true
}
