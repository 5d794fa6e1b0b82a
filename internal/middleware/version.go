package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/cubedb/internal/types"
)

const (
	versionHeader = "X-Api-Version"

	// APIVersion is the only API contract currently served.
	APIVersion = "1.0.0"
)

// VersionMiddleware parses the X-Api-Version header, rejects unsupported major versions,
// and echoes the served version back.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := strings.TrimPrefix(strings.TrimSpace(c.Get(versionHeader, APIVersion)), "v")

		// Support version aliases
		switch version {
		case "1", "1.0":
			version = APIVersion
		}

		if major, _, _ := strings.Cut(version, "."); major != "1" {
			return &types.CustomError{
				Code:    fiber.StatusBadRequest,
				Message: fmt.Sprintf("unsupported API version %q", version),
				Type:    "version",
			}
		}

		c.Locals("apiVersion", version)
		c.Set(versionHeader, APIVersion)
		return c.Next()
	}
}
