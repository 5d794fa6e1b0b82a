package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/cubedb/internal/config"
	"github.com/localnerve/cubedb/internal/services"
	"github.com/localnerve/cubedb/internal/types"
)

const (
	sessionCookie = "cookie_session"
	localsUser    = "user"
	localsAuthor  = "author"
)

// SessionValidator resolves a session cookie into the user holding one of roles.
type SessionValidator func(c *fiber.Ctx, cookie string, roles []string) (*services.SessionUser, error)

// AuthorizerSessions validates sessions against the Authorizer service, initializing the
// client on the first authenticated request.
func AuthorizerSessions(cfg *config.Config) SessionValidator {
	return func(c *fiber.Ctx, cookie string, roles []string) (*services.SessionUser, error) {
		if !services.IsAuthorizerInitialized() {
			if err := services.InitAuthorizer(cfg, c.Protocol(), c.Hostname()); err != nil {
				return nil, err
			}
		}
		return services.ValidateSession(cookie, roles)
	}
}

// AuthAdmin validates that the request has admin role authorization
func AuthAdmin(validate SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, validate, []string{"admin"}, "cube.authorization.admin")
	}
}

// AuthUser validates that the request has user role authorization
func AuthUser(validate SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, validate, []string{"user", "admin"}, "cube.authorization.user")
	}
}

func authorize(c *fiber.Ctx, validate SessionValidator, roles []string, errorType string) error {
	session := c.Cookies(sessionCookie)
	if session == "" {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("Authorizer cookie %q not found", sessionCookie),
			Type:    errorType,
		}
	}

	user, err := validate(c, session, roles)
	if err != nil {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("Invalid session: %v", err),
			Type:    errorType,
		}
	}

	c.Locals(localsUser, user)
	c.Locals(localsAuthor, user.Author())
	return c.Next()
}

// Author returns the identity revisions written by this request are attributed to.
func Author(c *fiber.Ctx) string {
	if author, ok := c.Locals(localsAuthor).(string); ok {
		return author
	}
	return ""
}

// User returns the authenticated session user, or nil.
func User(c *fiber.Ctx) *services.SessionUser {
	user, _ := c.Locals(localsUser).(*services.SessionUser)
	return user
}
