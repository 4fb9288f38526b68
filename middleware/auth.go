package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"pharma-supply/apperror"
	"pharma-supply/models/user"
	"pharma-supply/utils"
)

// UserKey is the fiber.Ctx local holding the authenticated *user.User.
const UserKey = "user"

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

// RequireAuthentication rejects requests without a valid login token and
// stores the resolved user for the handler.
func RequireAuthentication(auth Authenticator, exposeErrors bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := utils.ExtractBearerToken(c)
		if errors.Is(err, utils.ErrMissingToken) {
			return utils.SendError(c, apperror.Unauthorized("Not authenticated"), exposeErrors)
		}
		if err != nil {
			return utils.SendError(c, apperror.Unauthorized("Invalid authorization header format"), exposeErrors)
		}

		u, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return utils.SendError(c, err, exposeErrors)
		}

		c.Locals(UserKey, u)
		return c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuthentication, or nil.
func CurrentUser(c *fiber.Ctx) *user.User {
	u, _ := c.Locals(UserKey).(*user.User)
	return u
}
