package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/om-chauahan/eventhub/internal/models"
	jwtPkg "github.com/om-chauahan/eventhub/pkg/jwt"
	"go.uber.org/zap"
)

const requesterKey = "requester"

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the resolved caller for CurrentRequester.
func AuthMiddleware(auth Authenticator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "No token, authorization denied")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Invalid authorization header format")
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		user, err := auth.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			if errors.Is(err, jwtPkg.ErrInvalidToken) {
				return unauthorized(c, "Token is not valid")
			}
			logger.Error("authentication lookup failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Server error"))
		}

		c.Locals(requesterKey, user.AsRequester())
		return c.Next()
	}
}

// CurrentRequester returns the caller stored by AuthMiddleware.
func CurrentRequester(c *fiber.Ctx) (models.Requester, bool) {
	r, ok := c.Locals(requesterKey).(models.Requester)
	return r, ok
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(msg))
}
