package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("TOKEN_TTL", "")
	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.MaxOpenConns)
	assert.Equal(t, int64(100<<20), cfg.UploadMaxBytes)
	assert.Contains(t, cfg.CORSOrigins, "http://localhost:5173")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CREATE_ADMIN", "true")
	t.Setenv("DB_MAX_OPEN_CONNS", "4")
	t.Setenv("CORS_ORIGINS", " https://shop.example , ")
	cfg := Load()
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.CreateAdmin)
	assert.Equal(t, 4, cfg.MaxOpenConns)
	assert.Equal(t, []string{"https://shop.example"}, cfg.CORSOrigins)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBDriver: "sqlite", DBPath: "shop.db"}
	assert.Equal(t, "shop.db?_busy_timeout=5000&_txlock=immediate", cfg.DSN())

	cfg = &Config{DBDriver: "mysql", DBUser: "un_usr", DBPassword: "una_clave", DBHost: "127.0.0.1", DBPort: "3306", DBName: "cafeDB"}
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "un_usr:una_clave@tcp(127.0.0.1:3306)/cafeDB")
	assert.Contains(t, dsn, "parseTime=true")

	cfg.DatabaseURL = "postgres://u:p@db/shop"
	assert.Equal(t, "postgres://u:p@db/shop", cfg.DSN())
}
