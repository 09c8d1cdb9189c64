package serverutils

import (
	"errors"

	"esperit-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type errorBody struct {
	Code         int    `json:"code"`
	ErrorCode    string `json:"error_code"`
	Message      string `json:"message"`
	RequiresAuth bool   `json:"requires_auth,omitempty"`
	Retryable    bool   `json:"retryable,omitempty"`
}

// ErrorHandlerMiddleware converts service sentinel errors into stable HTTP
// shapes. Anything unrecognized becomes an opaque 500 so internals never
// leak to clients.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		switch {
		case errors.Is(err, service.ErrGuestLimitReached):
			return ctx.Status(fiber.StatusForbidden).JSON(errorBody{
				Code:         fiber.StatusForbidden,
				ErrorCode:    "GUEST_LIMIT_REACHED",
				Message:      "Sign up to continue chatting",
				RequiresAuth: true,
			})
		case errors.Is(err, service.ErrInvalidCredential):
			return ctx.Status(fiber.StatusUnauthorized).JSON(errorBody{
				Code:      fiber.StatusUnauthorized,
				ErrorCode: "INVALID_CREDENTIAL",
				Message:   "Authentication required or credentials invalid",
			})
		case errors.Is(err, service.ErrIdentityProviderUnavailable),
			errors.Is(err, service.ErrLedgerQuery),
			errors.Is(err, service.ErrLedgerUpdate):
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(errorBody{
				Code:      fiber.StatusServiceUnavailable,
				ErrorCode: "SERVICE_UNAVAILABLE",
				Message:   "Temporarily unavailable, please retry",
				Retryable: true,
			})
		case errors.Is(err, service.ErrPersonaNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(404, "Persona not found"))
		case errors.Is(err, service.ErrPersonaExists):
			return ctx.Status(fiber.StatusConflict).JSON(errorBody{
				Code:      fiber.StatusConflict,
				ErrorCode: "PERSONA_EXISTS",
				Message:   "A persona with that name already exists",
			})
		case errors.Is(err, service.ErrPersonaInvalid):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(400, "Invalid persona"))
		case errors.Is(err, service.ErrConversationNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(404, "Conversation not found"))
		case errors.Is(err, service.ErrModerationFlagged):
			return ctx.Status(fiber.StatusBadRequest).JSON(errorBody{
				Code:      fiber.StatusBadRequest,
				ErrorCode: "CONTENT_FLAGGED",
				Message:   "Message rejected by content policy",
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "Internal server error"))
	}
}
