package serverutils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"esperit-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlerMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantErrorCode string
	}{
		{"guest limit", service.ErrGuestLimitReached, 403, "GUEST_LIMIT_REACHED"},
		{"invalid credential", service.ErrInvalidCredential, 401, "INVALID_CREDENTIAL"},
		{"ledger read outage", service.ErrLedgerQuery, 503, "SERVICE_UNAVAILABLE"},
		{"ledger write outage", service.ErrLedgerUpdate, 503, "SERVICE_UNAVAILABLE"},
		{"identity provider outage", service.ErrIdentityProviderUnavailable, 503, "SERVICE_UNAVAILABLE"},
		{"moderation flagged", service.ErrModerationFlagged, 400, "CONTENT_FLAGGED"},
		{"persona conflict", service.ErrPersonaExists, 409, "PERSONA_EXISTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(ErrorHandlerMiddleware())
			app.Get("/boom", func(ctx *fiber.Ctx) error {
				return tt.err
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body struct {
				ErrorCode string `json:"error_code"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantErrorCode, body.ErrorCode)
		})
	}

	t.Run("guest limit requires auth flag", func(t *testing.T) {
		app := fiber.New()
		app.Use(ErrorHandlerMiddleware())
		app.Get("/boom", func(ctx *fiber.Ctx) error {
			return service.ErrGuestLimitReached
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
		require.NoError(t, err)

		var body struct {
			RequiresAuth bool   `json:"requires_auth"`
			Message      string `json:"message"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.RequiresAuth)
		assert.Equal(t, "Sign up to continue chatting", body.Message)
	})

	t.Run("unknown errors become opaque 500", func(t *testing.T) {
		app := fiber.New()
		app.Use(ErrorHandlerMiddleware())
		app.Get("/boom", func(ctx *fiber.Ctx) error {
			return assert.AnError
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)

		var body struct {
			Message string `json:"message"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Internal server error", body.Message)
	})
}
