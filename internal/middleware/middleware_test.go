package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/cubedb/internal/services"
	"github.com/localnerve/cubedb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorHandler(c *fiber.Ctx, err error) error {
	ce := types.FromError(err)
	return c.Status(ce.Code).SendString(ce.Type)
}

func fakeSessions(c *fiber.Ctx, cookie string, roles []string) (*services.SessionUser, error) {
	if cookie != "good" {
		return nil, errors.New("expired")
	}
	return &services.SessionUser{ID: "u1", Email: "admin@example.com"}, nil
}

func TestAuthAdmin(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Post("/cubes", AuthAdmin(fakeSessions), func(c *fiber.Ctx) error {
		return c.SendString(Author(c))
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/cubes", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req := httptest.NewRequest("POST", "/cubes", nil)
	req.Header.Set("Cookie", "cookie_session=stale")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("POST", "/cubes", nil)
	req.Header.Set("Cookie", "cookie_session=good")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := make([]byte, 64)
	n, _ := resp.Body.Read(body)
	assert.Equal(t, "admin@example.com", string(body[:n]))
}

func TestVersionMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("apiVersion").(string))
	})

	for _, v := range []string{"", "1.0", "v1", "1.2.0"} {
		req := httptest.NewRequest("GET", "/", nil)
		if v != "" {
			req.Header.Set("X-Api-Version", v)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, v)
		assert.Equal(t, APIVersion, resp.Header.Get("X-Api-Version"))
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Api-Version", "2.0.0")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
