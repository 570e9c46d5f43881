package auth

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cafesantander/apperr"
	"cafesantander/config"
	"cafesantander/database"
	"cafesantander/mailer"
	"cafesantander/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingSender captures reset mails instead of sending them.
type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	done chan struct{}
}

func (r *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	r.sent = append(r.sent, msg)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	return db
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", 0)
	tok, err := tokens.Issue(7, "u1@example.com", models.RoleUser)
	require.NoError(t, err)

	claims, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "u1@example.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokensRejectExpiredAndForeign(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	tok, err := tokens.Issue(1, "a@example.com", models.RoleUser)
	require.NoError(t, err)

	later := NewTokens("secret", time.Hour)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Verify(tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.Equal(t, "token expired", apperr.MessageOf(err))

	_, err = NewTokens("other-secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = tokens.Verify("")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	// alg=none must never be accepted
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(unsigned)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret"))
	assert.False(t, CheckPassword(hash, "Secret"))

	temp, err := TemporaryPassword()
	require.NoError(t, err)
	assert.Len(t, temp, 10)
	assert.Regexp(t, `^[a-z0-9]{8}[A-Z]{2}$`, temp)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(setupTestDB(t), NewTokens("secret", 0), nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "U1@Example.com ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", user.Email)
	assert.Equal(t, "Ana", user.LastName) // defaults to the first name
	assert.Equal(t, models.RoleUser, user.Role)

	_, err = svc.Register(ctx, RegisterInput{Name: "Ana", Email: "u1@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	session, err := svc.Login(ctx, LoginInput{Email: "u1@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.User.ID)

	_, err = svc.Login(ctx, LoginInput{Email: "u1@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret"})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(setupTestDB(t), NewTokens("secret", 0), nil)
	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestForgotPasswordRotatesCredential(t *testing.T) {
	sender := &recordingSender{done: make(chan struct{}, 1)}
	svc := NewService(setupTestDB(t), NewTokens("secret", 0), sender)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "u1@example.com", Password: "secret"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ForgotPassword(ctx, "nobody@example.com"), apperr.ErrNotFound)
	require.NoError(t, svc.ForgotPassword(ctx, "u1@example.com"))

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("reset mail was not dispatched")
	}

	// The old password stops working
	_, err = svc.Login(ctx, LoginInput{Email: "u1@example.com", Password: "secret"})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "u1@example.com", sender.sent[0].To)
}

func TestUpdateProfile(t *testing.T) {
	svc := NewService(setupTestDB(t), NewTokens("secret", 0), nil)
	ctx := context.Background()
	user, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "u1@example.com", Password: "secret"})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileInput{Phone: "555-0101", Password: "newpass"})
	require.NoError(t, err)
	assert.Equal(t, "555-0101", updated.Phone)
	assert.Equal(t, "Ana", updated.Name)

	_, err = svc.Login(ctx, LoginInput{Email: "u1@example.com", Password: "newpass"})
	assert.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, 9999, ProfileInput{Name: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestValidEmail(t *testing.T) {
	for _, ok := range []string{"u1@example.com", "ana.perez+cafe@mail.co"} {
		assert.True(t, ValidEmail(ok), ok)
	}
	for _, bad := range []string{"", "plain", "a@b", "a b@example.com", "a@exa mple.com", "<a>@example.com", "a@example.com;", `"a"@example.com`, "a/b@example.com"} {
		assert.False(t, ValidEmail(bad), bad)
	}
	long := make([]byte, MaxEmailLength)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, ValidEmail(string(long)+"@example.com"))
}

func TestRegisterRejectsMalformedEmail(t *testing.T) {
	svc := NewService(setupTestDB(t), NewTokens("secret", 0), nil)
	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "not-an-email", Password: "secret"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
