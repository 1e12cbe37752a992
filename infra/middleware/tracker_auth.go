package middleware

import (
	"strings"

	"tracker_server/core/port/out"
	"tracker_server/pkg/apperr"
	"tracker_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the auth middleware.
const (
	LocalUserID    = "user_id"
	LocalUserEmail = "user_email"
)

// JWTAuth rejects requests without a valid bearer token.
func JWTAuth(parser out.TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return apperr.Unauthorized("missing or malformed authorization header")
		}
		identity, err := parser.Parse(token)
		if err != nil {
			return apperr.InvalidToken("invalid or expired token")
		}
		setIdentity(c, identity)
		return c.Next()
	}
}

// OptionalJWTAuth attaches the caller when a valid token is present and lets
// anonymous requests through.
func OptionalJWTAuth(parser out.TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}
		identity, err := parser.Parse(token)
		if err != nil {
			logger.WithContext(c.UserContext()).Debug("ignoring invalid bearer token")
			return c.Next()
		}
		setIdentity(c, identity)
		return c.Next()
	}
}

// Auth picks the strict or optional variant.
func Auth(parser out.TokenParser, required bool) fiber.Handler {
	if required {
		return JWTAuth(parser)
	}
	return OptionalJWTAuth(parser)
}

// CallerID returns the token user id, or 0 for anonymous requests.
func CallerID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(LocalUserID).(int64)
	return id
}

// CallerEmail returns the token email, or "" for anonymous requests.
func CallerEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalUserEmail).(string)
	return email
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func setIdentity(c *fiber.Ctx, identity *out.Identity) {
	c.Locals(LocalUserID, identity.UserID)
	c.Locals(LocalUserEmail, identity.Email)
	c.SetUserContext(logger.ContextWithUserID(c.UserContext(), identity.UserID))
}
