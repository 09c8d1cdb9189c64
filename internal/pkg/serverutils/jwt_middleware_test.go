package serverutils

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const middlewareTestSecret = "middleware-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newGuardedApp(secret string) *fiber.App {
	app := fiber.New()
	app.Get("/private", JwtMiddleware(secret), func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Locals("user_id").(string))
	})
	return app
}

func TestJwtMiddleware(t *testing.T) {
	validClaims := jwt.MapClaims{
		"user_id": "user-123",
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}

	t.Run("valid token reaches handler with user id", func(t *testing.T) {
		app := newGuardedApp(middlewareTestSecret)

		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, middlewareTestSecret, validClaims))

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "user-123", string(body))
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		app := newGuardedApp(middlewareTestSecret)

		resp, err := app.Test(httptest.NewRequest("GET", "/private", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("non-bearer header is rejected", func(t *testing.T) {
		app := newGuardedApp(middlewareTestSecret)

		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		app := newGuardedApp(middlewareTestSecret)

		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "some-other-secret", validClaims))

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token without user_id claim is rejected", func(t *testing.T) {
		app := newGuardedApp(middlewareTestSecret)

		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, middlewareTestSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}))

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
