package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"relay/internal/config"
	"relay/internal/models"
)

var cfg *config.Config

// InitMiddleware stores a reference to the loaded config for middleware that
// needs it (JWT secret, environment checks).
func InitMiddleware(c *config.Config) {
	cfg = c
}

const (
	issuer         = "relay-api"
	audience       = "relay-clients"
	accessTokenTTL = 7 * 24 * time.Hour
)

// GenerateToken creates a signed JWT for the given user.
func GenerateToken(userID uuid.UUID, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID.String(),
		"username": username,
		"iss":      issuer,
		"aud":      audience,
		"exp":      now.Add(accessTokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func parseBearerToken(c *fiber.Ctx) (uuid.UUID, string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return uuid.Nil, "", models.NewUnauthorizedError("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return uuid.Nil, "", models.NewUnauthorizedError("invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.NewUnauthorizedError("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(audience))
	if err != nil || !token.Valid {
		return uuid.Nil, "", models.NewUnauthorizedError("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", models.NewUnauthorizedError("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, "", models.NewUnauthorizedError("missing subject claim")
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", models.NewUnauthorizedError("invalid subject claim")
	}

	username, _ := claims["username"].(string)
	return userID, username, nil
}

// AuthRequired rejects requests without a valid bearer token and stores the
// authenticated user's ID in c.Locals("userID").
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, username, err := parseBearerToken(c)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}

		c.Locals("userID", userID)
		c.Locals("username", username)
		return c.Next()
	}
}

// OptionalAuth sets the viewer identity when a valid bearer token is present
// but lets anonymous requests through. Handlers see uuid.Nil for anonymous
// viewers.
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Next()
		}

		userID, username, err := parseBearerToken(c)
		if err != nil {
			// A malformed token on an optional route is treated as anonymous
			// rather than a hard failure.
			return c.Next()
		}

		c.Locals("userID", userID)
		c.Locals("username", username)
		return c.Next()
	}
}
