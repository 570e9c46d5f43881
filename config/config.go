// config.go - Handles configuration for the storefront backend

package config // Declares the package name

import ( // Import required packages
	"fmt"
	"log/slog"
	"os"      // For reading environment variables
	"strconv" // For numeric and boolean variables
	"strings"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL DSN builder
)

type Config struct { // Config struct holds all configuration values
	Port string // HTTP listen port

	DBDriver     string // sqlite, mysql or postgres
	DBPath       string // Path to the SQLite database file
	DatabaseURL  string // Full DSN, overrides the DB_* parts when set
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	MaxOpenConns int // Upper bound of the connection pool

	JWTSecret string        // Secret key for JWT authentication
	TokenTTL  time.Duration // Lifetime of issued tokens

	CORSOrigins    []string // Origins allowed to call the API from a browser
	PublicDir      string   // Root of the static files served under /public
	UploadMaxBytes int64    // Per-file upload limit

	SMTPHost     string // Empty disables SMTP, reset mails are logged instead
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	MQTTBroker string // Address of the MQTT broker, empty disables cart events

	CreateAdmin   bool   // Seed an admin account on startup
	AdminEmail    string // Seeded admin email
	AdminPassword string // Seeded admin password

	LogLevel string
}

func Load() *Config { // Load reads config from environment variables or uses defaults
	return &Config{
		Port: getEnv("PORT", "5000"),

		DBDriver:     strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:       getEnv("DB_PATH", "data.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		DBHost:       getEnv("DB_HOST", "127.0.0.1"),
		DBPort:       getEnv("DB_PORT", "3306"),
		DBUser:       getEnv("DB_USER", "root"),
		DBPassword:   getEnv("DB_PASSWORD", ""),
		DBName:       getEnv("DB_NAME", "cafeDB"),
		MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),

		JWTSecret: getEnv("JWT_SECRET", "supersecret"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174,http://localhost:5175,http://localhost:3000")),
		PublicDir:      getEnv("PUBLIC_DIR", "public"),
		UploadMaxBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", 100<<20)),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@cafesantander.local"),

		MQTTBroker: getEnv("MQTT_BROKER", ""),

		CreateAdmin:   getEnvBool("CREATE_ADMIN", false),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@cafesantander.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	switch c.DBDriver {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = c.DBUser
		mc.Passwd = c.DBPassword
		mc.Net = "tcp"
		mc.Addr = c.DBHost + ":" + c.DBPort
		mc.DBName = c.DBName
		mc.ParseTime = true
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN()
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
	default:
		if strings.Contains(c.DBPath, "?") {
			return c.DBPath
		}
		return c.DBPath + "?_busy_timeout=5000&_txlock=immediate"
	}
}

// SlogLevel converts LOG_LEVEL into a slog level (unknown values mean info).
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string { // Helper to get env var or fallback
	if value := os.Getenv(key); value != "" { // If env var is set, use it
		return value
	}
	return fallback // Otherwise, use fallback value
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
