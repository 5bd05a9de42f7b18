package middleware

import (
	"context"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// TokenParser verifies a bearer token and returns the user id it names.
type TokenParser interface {
	Parse(token string) (string, error)
}

// UserLookup resolves a user id to its record.
type UserLookup func(ctx context.Context, id string) (*models.User, error)

// AuthOptions tunes Authenticate.
type AuthOptions struct {
	// AllowQueryToken accepts ?token= when no Authorization header is sent.
	// Browsers cannot set headers on websocket upgrades.
	AllowQueryToken bool
}

// BearerToken extracts the token from an `Authorization: Bearer <token>` header.
func BearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate rejects requests without a valid bearer token for an existing
// user. On success it stores the id under Locals("userID") and the record
// under Locals("user"), and copies the id into the user context for logging.
func Authenticate(tokens TokenParser, lookup UserLookup, opts ...AuthOptions) fiber.Handler {
	var opt AuthOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	return func(c *fiber.Ctx) error {
		tokenString := BearerToken(c)
		if tokenString == "" && opt.AllowQueryToken {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			observability.AuthFailures.WithLabelValues("missing_token").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Not authorized, no token"))
		}

		userID, err := tokens.Parse(tokenString)
		if err != nil {
			observability.AuthFailures.WithLabelValues("invalid_token").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Not authorized, token failed"))
		}

		user, err := lookup(c.UserContext(), userID)
		if err != nil {
			if models.IsNotFound(err) {
				observability.AuthFailures.WithLabelValues("unknown_user").Inc()
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Not authorized, user not found"))
			}
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, user.ID))

		return c.Next()
	}
}
