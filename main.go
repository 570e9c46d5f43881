// main.go - Entry point for the CaféSantander storefront backend

package main // Declares the package name

import ( // Import required packages
	"log/slog" // Structured logging
	"net/http" // Origin check for the cart socket
	"os"       // Log output
	"slices"   // Origin lookup

	"cafesantander/auth"       // Tokens and account flows
	"cafesantander/cart"       // Cart service
	"cafesantander/catalog"    // Product service
	"cafesantander/config"     // Project config management
	"cafesantander/database"   // Database connection and setup
	"cafesantander/handlers"   // HTTP handlers for API endpoints
	"cafesantander/mailer"     // Password reset mail
	"cafesantander/middleware" // CORS
	"cafesantander/mqtt"       // MQTT client logic
	"cafesantander/realtime"   // Cart push over websockets
	"cafesantander/uploads"    // Media storage
	"cafesantander/users"      // Account admin

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/joho/godotenv" // .env loading
)

func main() { // Main function, program entry point
	// STEP 1: Load configuration and logging
	if err := godotenv.Load(); err != nil { // Optional .env file next to the binary
		slog.Debug("no .env file loaded", "err", err)
	}
	cfg := config.Load() // Load configuration (DB, JWT secret, SMTP, MQTT broker)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// STEP 2: Establish connections
	if err := database.Connect(cfg); err != nil { // Connect to the database
		slog.Error("DB connection error", "err", err)
		os.Exit(1)
	}
	if err := mqtt.Connect(cfg.MQTTBroker); err != nil { // Cart events are optional, keep serving without them
		slog.Warn("MQTT connection error, cart events disabled", "err", err)
	}
	defer mqtt.Disconnect()

	// STEP 3: Build services
	var sender mailer.Sender = mailer.LogSender{}
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	}
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	hub := realtime.NewHub(allowOrigin(cfg.CORSOrigins))
	defer hub.Close()
	publisher := mqtt.NewCartPublisher()
	defer publisher.Close()

	db := database.DB
	svcs := &handlers.Services{
		DB:      db,
		Tokens:  tokens,
		Auth:    auth.NewService(db, tokens, sender),
		Cart:    cart.NewService(db, cart.Notifiers{hub, publisher}),
		Catalog: catalog.NewService(db),
		Users:   users.NewService(db),
		Uploads: uploads.New(cfg.PublicDir, cfg.UploadMaxBytes),
		Hub:     hub,
	}

	// STEP 4: Create Gin router and configure routes
	r := gin.Default() // Create a new Gin router (web server)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if err := handlers.Setup(r, svcs, cfg.PublicDir); err != nil {
		slog.Error("route setup failed", "err", err)
		os.Exit(1)
	}

	// STEP 5: Start the web server
	slog.Info("server listening", "port", cfg.Port, "db", cfg.DBDriver)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("server stopped", "err", err)
	}
}

// allowOrigin accepts socket upgrades from the configured browser origins.
func allowOrigin(origins []string) func(*http.Request) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}
