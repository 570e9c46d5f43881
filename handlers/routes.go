// routes.go - Maps every endpoint to its handler and access level

package handlers // Declares the package name

import ( // Import required packages
	"net/http"

	"cafesantander/apperr"
	"cafesantander/middleware" // Authentication and role checks
	"cafesantander/response"   // Uniform JSON envelope

	"github.com/gin-gonic/gin" // Gin web framework
)

// Setup registers all routes on r. publicDir is served under /public.
func Setup(r *gin.Engine, s *Services, publicDir string) error {
	if err := middleware.RegisterValidators(); err != nil {
		return err
	}
	authn := middleware.AuthMiddleware(s.Tokens)        // Any logged-in user
	admin := middleware.AdminMiddleware(s.Tokens, s.DB) // Admin role, verified against the store

	// Public routes (no authentication required)
	r.GET("/ping", func(c *gin.Context) { response.Message(c, "pong") })
	r.GET("/products", ListProducts(s))
	r.GET("/products/:id", GetProduct(s))
	r.Static("/public", publicDir)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", Register(s))
		authGroup.POST("/login", Login(s))
		authGroup.POST("/forgot-password", ForgotPassword(s))
		authGroup.POST("/logout", Logout)
		authGroup.GET("/me", authn, Me(s))
		authGroup.PUT("/me", authn, UpdateMe(s))
	}

	// Cart routes (require JWT authentication)
	cartGroup := r.Group("/cart")
	{
		cartGroup.GET("", authn, GetCart(s))
		cartGroup.POST("/add", authn, AddToCart(s))
		cartGroup.PUT("/update/:itemId", authn, UpdateCartItem(s))
		cartGroup.DELETE("/remove/:itemId", authn, RemoveCartItem(s))
		cartGroup.DELETE("/clear", authn, ClearCart(s))
		cartGroup.GET("/ws", authn, CartSocket(s))

		cartGroup.GET("/admin/all", admin, ListCarts(s))
		cartGroup.GET("/admin/:cartId", admin, GetCartByID(s))
		cartGroup.DELETE("/admin/:cartId", admin, DeleteCart(s))
	}

	// Admin routes (require the admin role)
	adminGroup := r.Group("/admin", admin)
	{
		adminGroup.GET("/products", AdminListProducts(s))
		adminGroup.GET("/products/search", SearchProducts(s))
		adminGroup.GET("/products/export", ExportProducts(s))
		adminGroup.POST("/products/import", ImportProducts(s))
		adminGroup.POST("/products", CreateProduct(s))
		adminGroup.PUT("/products/:id", UpdateProduct(s))
		adminGroup.DELETE("/products/:id", DeleteProduct(s))

		adminGroup.GET("/users", ListUsers(s))
		adminGroup.GET("/users/search", SearchUsers(s))
		adminGroup.GET("/users/:id", GetUser(s))
		adminGroup.PUT("/users/:id", UpdateUser(s))
		adminGroup.DELETE("/users/:id", DeleteUser(s))

		adminGroup.GET("/stats", Stats(s))
	}

	// File routes: listing and download are public, changes need the admin role
	files := r.Group("/files")
	{
		files.GET("/uploads", ListUploads(s))
		files.GET("/gallery", ListGallery(s))
		files.GET("/download/:filename", DownloadFile(s))
		files.POST("/upload", admin, UploadFile(s))
		files.POST("/upload-multiple", admin, UploadFiles(s))
		files.DELETE("/delete/:filename", admin, DeleteFile(s))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Abort(c, http.StatusNotFound, apperr.KindNotFound, "route not found")
	})
	return nil
}
