package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foxxcyber/grocery-assistant/internal/config"
	"github.com/foxxcyber/grocery-assistant/internal/models"
)

// AnonymousIDHeader carries a client-held anonymous user ID. Responses echo
// it so a client without one can keep the ID it was given.
const AnonymousIDHeader = "X-Anonymous-User-ID"

const userLocalsKey = "auth_user"

var errInvalidToken = errors.New("invalid or expired token")

// JWTClaims are the claims of tokens issued by the identity provider
type JWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserEnsurer persists the user row for a resolved identity
type UserEnsurer interface {
	EnsureUser(ctx context.Context, user models.AuthUser) error
}

// AuthOptional resolves the caller from a bearer token, falling back to an
// anonymous identity when the token is missing or invalid
func AuthOptional(cfg *config.Config, users UserEnsurer, logger *zap.Logger) fiber.Handler {
	return authenticate(cfg, users, logger, false)
}

// AuthRequired is like AuthOptional but rejects a bad token with 401. Callers
// without any token still get an anonymous identity.
func AuthRequired(cfg *config.Config, users UserEnsurer, logger *zap.Logger) fiber.Handler {
	return authenticate(cfg, users, logger, true)
}

func authenticate(cfg *config.Config, users UserEnsurer, logger *zap.Logger, strict bool) fiber.Handler {
	secret := []byte(cfg.JWTSecret)

	return func(c *fiber.Ctx) error {
		var user models.AuthUser

		token, hasToken := bearerToken(c.Get(fiber.HeaderAuthorization))
		if hasToken {
			u, err := parseToken(token, secret)
			switch {
			case err == nil:
				user = u
			case strict:
				return fiber.NewError(fiber.StatusUnauthorized, errInvalidToken.Error())
			default:
				logger.Debug("token rejected, continuing anonymously", zap.Error(err))
				hasToken = false
			}
		}

		if !hasToken {
			user = anonymousUser(c.Get(AnonymousIDHeader))
			c.Set(AnonymousIDHeader, user.ID)
		}

		if users != nil {
			if err := users.EnsureUser(c.UserContext(), user); err != nil {
				logger.Warn("failed to ensure user row",
					zap.String("user_id", user.ID),
					zap.Bool("anonymous", user.IsAnonymous),
					zap.Error(err),
				)
			}
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func parseToken(tokenString string, secret []byte) (models.AuthUser, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.AuthUser{}, err
	}
	if !token.Valid || claims.Subject == "" {
		return models.AuthUser{}, errInvalidToken
	}

	user := models.AuthUser{ID: claims.Subject}
	if claims.Email != "" {
		email := claims.Email
		user.Email = &email
	}
	return user, nil
}

// anonymousUser reuses a well-formed client ID or mints a new one
func anonymousUser(headerID string) models.AuthUser {
	id, err := uuid.Parse(strings.TrimSpace(headerID))
	if err != nil || id == uuid.Nil {
		id = uuid.New()
	}
	return models.AuthUser{ID: id.String(), IsAnonymous: true}
}

// GetUser returns the identity resolved by the auth middleware
func GetUser(c *fiber.Ctx) models.AuthUser {
	if user, ok := c.Locals(userLocalsKey).(models.AuthUser); ok {
		return user
	}
	return models.AuthUser{}
}

// GetUserID returns the resolved user ID, or "" outside the auth middleware
func GetUserID(c *fiber.Ctx) string {
	return GetUser(c).ID
}
