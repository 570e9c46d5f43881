// user.go - Handles registration, login, password reset and the caller's profile

package handlers // Declares the package name

import ( // Import required packages
	"cafesantander/auth"       // Account flows
	"cafesantander/middleware" // Identity from the context
	"cafesantander/response"   // Uniform JSON envelope

	"github.com/gin-gonic/gin" // Gin web framework
)

type ForgotPasswordInput struct { // Struct for password reset input
	Email string `json:"email" binding:"required,storemail"` // Email (required)
}

func Register(s *Services) gin.HandlerFunc { // Handler for user registration
	return func(c *gin.Context) {
		var input auth.RegisterInput // Declare input variable
		if !bindJSON(c, &input) {    // Parse JSON input
			return
		}
		user, err := s.Auth.Register(c.Request.Context(), input) // Hash password and save user
		if err != nil {
			response.Fail(c, err) // 400 invalid, 409 duplicate email
			return
		}
		response.Created(c, user, "registration successful") // Success response
	}
}

func Login(s *Services) gin.HandlerFunc { // Handler for user login
	return func(c *gin.Context) {
		var input auth.LoginInput // Declare input variable
		if !bindJSON(c, &input) { // Parse JSON input
			return
		}
		session, err := s.Auth.Login(c.Request.Context(), input) // Check credentials and sign a token
		if err != nil {
			response.Fail(c, err) // 401 invalid credentials
			return
		}
		response.OK(c, session, "login successful") // Return token and user
	}
}

func ForgotPassword(s *Services) gin.HandlerFunc { // Handler for password recovery
	return func(c *gin.Context) {
		var input ForgotPasswordInput
		if !bindJSON(c, &input) {
			return
		}
		if err := s.Auth.ForgotPassword(c.Request.Context(), input.Email); err != nil {
			response.Fail(c, err) // 404 unknown email
			return
		}
		response.Message(c, "a temporary password was sent to your email")
	}
}

// Logout is stateless: the client drops its token.
func Logout(c *gin.Context) {
	response.Message(c, "logged out")
}

func Me(s *Services) gin.HandlerFunc { // Handler returning the caller's profile
	return func(c *gin.Context) {
		user, err := s.Auth.Profile(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, user, "")
	}
}

func UpdateMe(s *Services) gin.HandlerFunc { // Handler editing the caller's profile
	return func(c *gin.Context) {
		var input auth.ProfileInput
		if !bindJSON(c, &input) {
			return
		}
		user, err := s.Auth.UpdateProfile(c.Request.Context(), middleware.UserID(c), input)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, user, "profile updated")
	}
}
