// user_test.go - Automated tests for registration, login and profile handlers
// Run with: go test ./...

package handlers

import (
	"bytes"             // For building request bodies
	"encoding/json"     // For encoding/decoding JSON
	"net/http"          // HTTP status codes
	"net/http/httptest" // HTTP test helpers
	"path/filepath"     // Temp paths for DB and public dir
	"testing"           // Go's testing package

	"cafesantander/auth"     // Account flows
	"cafesantander/cart"     // Cart service
	"cafesantander/catalog"  // Product service
	"cafesantander/config"   // Project config
	"cafesantander/database" // Database connection
	"cafesantander/models"   // User model
	"cafesantander/realtime" // Cart push hub
	"cafesantander/response" // Envelope decoding
	"cafesantander/uploads"  // File storage
	"cafesantander/users"    // Account admin

	"github.com/gin-gonic/gin"            // Gin web framework
	"github.com/stretchr/testify/assert"  // For assertions
	"github.com/stretchr/testify/require" // For fatal assertions
)

func init() {
	gin.SetMode(gin.TestMode) // Quiet router output
}

// setupRouter creates a fresh database and a router with every route mounted
func setupRouter(t *testing.T) (*gin.Engine, *Services) {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Open(&config.Config{DBDriver: "sqlite", DBPath: filepath.Join(dir, "test.db")}) // Connect and migrate
	require.NoError(t, err)

	tokens := auth.NewTokens("test-secret", 0)
	hub := realtime.NewHub(nil)
	t.Cleanup(hub.Close)
	s := &Services{
		DB:      db,
		Tokens:  tokens,
		Auth:    auth.NewService(db, tokens, nil),
		Cart:    cart.NewService(db, hub),
		Catalog: catalog.NewService(db),
		Users:   users.NewService(db),
		Uploads: uploads.New(filepath.Join(dir, "public"), 0),
		Hub:     hub,
	}
	r := gin.New()
	require.NoError(t, Setup(r, s, filepath.Join(dir, "public")))
	return r, s
}

// doJSON sends a JSON request with an optional bearer token
func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body) // Encode input as JSON
	}
	req := httptest.NewRequest(method, path, &buf)     // Build request
	req.Header.Set("Content-Type", "application/json") // Set header
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token) // Set auth header
	}
	w := httptest.NewRecorder() // Record HTTP response
	r.ServeHTTP(w, req)         // Serve request
	return w
}

// decode parses an envelope with a typed payload
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) response.Envelope[T] {
	t.Helper()
	var env response.Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// registerAndLogin creates an account and returns its token
func registerAndLogin(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w := doJSON(r, "POST", "/auth/register", "", map[string]string{"name": "Test", "email": email, "password": password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, "POST", "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[auth.Session](t, w).Data.Token
}

// TestRegisterAndLogin tests user registration and login
func TestRegisterAndLogin(t *testing.T) {
	router, _ := setupRouter(t) // Prepare router and DB

	// --- Test registration ---
	w := doJSON(router, "POST", "/auth/register", "", map[string]string{"name": "Ana", "email": "test@example.com", "password": "testpass"})
	assert.Equal(t, http.StatusCreated, w.Code) // Assert success
	assert.NotContains(t, w.Body.String(), "testpass")

	// --- Test duplicate registration ---
	w = doJSON(router, "POST", "/auth/register", "", map[string]string{"name": "Ana", "email": "test@example.com", "password": "other"})
	assert.Equal(t, http.StatusConflict, w.Code)
	env := decode[any](t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "email already registered", env.Error.Message)

	// --- Test login ---
	w = doJSON(router, "POST", "/auth/login", "", map[string]string{"email": "test@example.com", "password": "testpass"})
	assert.Equal(t, http.StatusOK, w.Code) // Assert success
	session := decode[auth.Session](t, w)
	assert.True(t, session.Success)
	assert.NotEmpty(t, session.Data.Token)
	assert.Equal(t, "test@example.com", session.Data.User.Email)

	// --- Test login with wrong password ---
	w = doJSON(router, "POST", "/auth/login", "", map[string]string{"email": "test@example.com", "password": "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code) // Should be unauthorized
}

func TestRegisterValidation(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, "POST", "/auth/register", "", map[string]string{"email": "test@example.com", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[any](t, w).Error.Message, "name is required")

	w = doJSON(router, "POST", "/auth/register", "", map[string]string{"name": "Ana", "email": "no-at-sign", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid email format", decode[any](t, w).Error.Message)

	w = doJSON(router, "POST", "/auth/login", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForgotPassword(t *testing.T) {
	router, _ := setupRouter(t)
	registerAndLogin(t, router, "u1@example.com", "secret")

	w := doJSON(router, "POST", "/auth/forgot-password", "", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "POST", "/auth/forgot-password", "", map[string]string{"email": "u1@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)

	// The old password no longer works
	w = doJSON(router, "POST", "/auth/login", "", map[string]string{"email": "u1@example.com", "password": "secret"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfile(t *testing.T) {
	router, _ := setupRouter(t)
	token := registerAndLogin(t, router, "u1@example.com", "secret")

	w := doJSON(router, "GET", "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "PUT", "/auth/me", token, map[string]string{"phone": "555-0101", "address": "Calle Mayor 1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, "GET", "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[models.User](t, w).Data
	assert.Equal(t, "555-0101", me.Phone)
	assert.Equal(t, "Calle Mayor 1", me.Address)
	assert.Equal(t, models.RoleUser, me.Role)

	w = doJSON(router, "POST", "/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInvalidTokens(t *testing.T) {
	router, s := setupRouter(t)

	w := doJSON(router, "GET", "/cart", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid token", decode[any](t, w).Error.Message)

	foreign, err := auth.NewTokens("other-secret", 0).Issue(1, "u1@example.com", models.RoleUser)
	require.NoError(t, err)
	w = doJSON(router, "GET", "/cart", foreign, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	valid, err := s.Tokens.Issue(1, "u1@example.com", models.RoleUser)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set("Authorization", "Token "+valid) // Wrong scheme
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	router, _ := setupRouter(t)
	w := doJSON(router, "GET", "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decode[any](t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "not_found", string(env.Error.Kind))
}
