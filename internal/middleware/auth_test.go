package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foxxcyber/grocery-assistant/internal/config"
	"github.com/foxxcyber/grocery-assistant/internal/models"
)

const testSecret = "test-secret"

type recordingEnsurer struct {
	mu    sync.Mutex
	users []models.AuthUser
	err   error
}

func (r *recordingEnsurer) EnsureUser(ctx context.Context, user models.AuthUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, user)
	return r.err
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(subject string) JWTClaims {
	return JWTClaims{
		Email: "cook@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newAuthApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/me", handler, func(c *fiber.Ctx) error {
		return c.JSON(GetUser(c))
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, headers map[string]string) (int, models.AuthUser, string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/me", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var user models.AuthUser
	if resp.StatusCode == fiber.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	}
	return resp.StatusCode, user, resp.Header.Get(AnonymousIDHeader)
}

func TestAuthOptional_ValidToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	users := &recordingEnsurer{}
	app := newAuthApp(AuthOptional(cfg, users, zap.NewNop()))

	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("user-123"))
	status, user, anonHeader := doRequest(t, app, map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user-123", user.ID)
	assert.False(t, user.IsAnonymous)
	require.NotNil(t, user.Email)
	assert.Equal(t, "cook@example.com", *user.Email)
	assert.Empty(t, anonHeader)
	require.Len(t, users.users, 1)
	assert.Equal(t, "user-123", users.users[0].ID)
}

func TestAuthOptional_AnonymousHeaderReused(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := newAuthApp(AuthOptional(cfg, nil, zap.NewNop()))

	id := uuid.New().String()
	status, user, anonHeader := doRequest(t, app, map[string]string{AnonymousIDHeader: id})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, id, user.ID)
	assert.True(t, user.IsAnonymous)
	assert.Equal(t, id, anonHeader)
}

func TestAuthOptional_GeneratesAnonymousID(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := newAuthApp(AuthOptional(cfg, nil, zap.NewNop()))

	for _, headers := range []map[string]string{
		nil,
		{AnonymousIDHeader: "not-a-uuid"},
		{AnonymousIDHeader: uuid.Nil.String()},
	} {
		status, user, anonHeader := doRequest(t, app, headers)
		assert.Equal(t, fiber.StatusOK, status)
		assert.True(t, user.IsAnonymous)
		_, err := uuid.Parse(user.ID)
		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil.String(), user.ID)
		assert.Equal(t, user.ID, anonHeader)
	}
}

func TestAuthOptional_BadTokenFallsBackToAnonymous(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := newAuthApp(AuthOptional(cfg, nil, zap.NewNop()))

	token := signToken(t, jwt.SigningMethodHS256, []byte("other-secret"), validClaims("user-123"))
	status, user, _ := doRequest(t, app, map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, user.IsAnonymous)
	assert.NotEqual(t, "user-123", user.ID)
}

func TestAuthRequired_RejectsBadTokens(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := newAuthApp(AuthRequired(cfg, nil, zap.NewNop()))

	expired := validClaims("user-123")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, jwt.SigningMethodHS256, []byte("other-secret"), validClaims("user-123"))},
		{"expired", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired)},
		{"wrong algorithm", signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims("user-123"))},
		{"missing subject", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(""))},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _, _ := doRequest(t, app, map[string]string{"Authorization": "Bearer " + tt.token})
			assert.Equal(t, fiber.StatusUnauthorized, status)
		})
	}
}

func TestAuthRequired_AllowsAnonymousWithoutToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := newAuthApp(AuthRequired(cfg, nil, zap.NewNop()))

	status, user, _ := doRequest(t, app, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, user.IsAnonymous)
}

func TestAuth_EnsureFailureIsNotFatal(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	users := &recordingEnsurer{err: errors.New("db down")}
	app := newAuthApp(AuthOptional(cfg, users, zap.NewNop()))

	status, user, _ := doRequest(t, app, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, user.IsAnonymous)
	assert.Len(t, users.users, 1)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.token, token, tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
	}
}
