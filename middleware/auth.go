// auth.go - JWT authentication middleware
// This file implements authentication and authorization for the API
//
// Authentication Flow:
// 1. Extract the token from the Authorization header (or ?token= on websocket upgrades)
// 2. Verify signature, algorithm and expiration
// 3. Store user ID, email and role in the context for handlers
//
// Authorization Flow (Admin):
// 1. Run authentication middleware first
// 2. Require the admin role claim
// 3. Re-check the stored user, so a demoted admin loses access before the token expires

package middleware // Declares the package name

import ( // Import required packages
	"errors"
	"net/http" // HTTP status codes (401, 403, etc.)
	"strings"  // String operations (for header parsing)

	"cafesantander/apperr"   // Error kinds for the envelope
	"cafesantander/auth"     // Token verification
	"cafesantander/models"   // User model (for role checking)
	"cafesantander/response" // Uniform JSON envelope

	"github.com/gin-gonic/gin" // Gin web framework (for middleware)
	"gorm.io/gorm"             // Database handle for the role lookup
)

// Context keys set by AuthMiddleware
const (
	KeyUserID = "user_id"
	KeyEmail  = "email"
	KeyRole   = "role"
)

// bearerToken extracts the token from "Authorization: Bearer <token>".
// Browsers cannot set headers on websocket upgrades, so ?token= is accepted there too.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if header == "" && strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("token")
	}
	return ""
}

// authenticate verifies the token and stores the identity. It aborts and returns false on failure.
func authenticate(c *gin.Context, tokens *auth.Tokens) bool {
	// STEP 1: Extract the token
	tokenStr := bearerToken(c)
	if tokenStr == "" {
		response.Abort(c, http.StatusUnauthorized, apperr.KindUnauthenticated, "missing or invalid token")
		return false
	}

	// STEP 2: Verify the token
	claims, err := tokens.Verify(tokenStr)
	if err != nil {
		response.Abort(c, http.StatusUnauthorized, apperr.KindUnauthenticated, apperr.MessageOf(err))
		return false
	}

	// STEP 3: Store the identity for later handlers
	c.Set(KeyUserID, claims.UserID)
	c.Set(KeyEmail, claims.Email)
	c.Set(KeyRole, claims.Role)
	return true
}

// AuthMiddleware - Returns a Gin middleware function for JWT authentication
func AuthMiddleware(tokens *auth.Tokens) gin.HandlerFunc { // Returns a Gin middleware function
	return func(c *gin.Context) { // Middleware handler (runs before each request)
		if !authenticate(c, tokens) {
			return
		}
		c.Next() // Continue to next handler (authentication successful)
	}
}

// AdminMiddleware - Returns a Gin middleware function for admin access control
func AdminMiddleware(tokens *auth.Tokens, db *gorm.DB) gin.HandlerFunc { // Returns a Gin middleware function for admin access
	return func(c *gin.Context) { // Middleware handler (runs before admin endpoints)
		// STEP 1: Authenticate first; calling AuthMiddleware here would run the handler via its c.Next()
		if !authenticate(c, tokens) {
			return // Exit early - authentication failed
		}

		// STEP 2: The token must carry the admin role
		if c.GetString(KeyRole) != models.RoleAdmin {
			response.Abort(c, http.StatusForbidden, apperr.KindForbidden, "admin access required")
			return
		}

		// STEP 3: The stored user must still be an admin
		var user models.User
		err := db.WithContext(c.Request.Context()).Select("id", "role").First(&user, UserID(c)).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort(c, http.StatusUnauthorized, apperr.KindUnauthenticated, "user not found")
			return
		}
		if err != nil {
			response.Fail(c, apperr.Unexpected("failed to verify role", err))
			return
		}
		if !user.IsAdmin() {
			response.Abort(c, http.StatusForbidden, apperr.KindForbidden, "admin access required")
			return
		}

		c.Next() // Continue to next handler (admin access granted)
	}
}

// UserID returns the authenticated user's id, or 0 outside AuthMiddleware.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(KeyUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
