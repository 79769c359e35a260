package middleware

import (
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/config"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const userLocalsKey = "user"

// JWTProtected validates an HS256 bearer token. With no secret configured it
// lets every request through and OwnsUser accepts any user id.
func JWTProtected(cfg *config.Config) fiber.Handler {
	if !cfg.AuthEnabled() {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwt.SigningMethodHS256.Alg(), Key: []byte(cfg.JWTSecret)},
		ContextKey: userLocalsKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// OwnsUser reports whether the request may act on userID: true when auth is
// off, otherwise only when the token subject is userID.
func OwnsUser(c *fiber.Ctx, userID string) bool {
	raw := c.Locals(userLocalsKey)
	if raw == nil {
		return true
	}
	token, ok := raw.(*jwt.Token)
	if !ok || token == nil {
		return false
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return false
	}
	return sub != "" && sub == userID
}
