package controller

import (
	"esperit-be/internal/pkg/serverutils"
	"esperit-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IGuestController interface {
	RegisterRoutes(r fiber.Router)
	Status(ctx *fiber.Ctx) error
}

type guestController struct {
	ledger          service.IGuestLedgerService
	identityService service.IIdentityService
}

func NewGuestController(ledger service.IGuestLedgerService, identityService service.IIdentityService) IGuestController {
	return &guestController{
		ledger:          ledger,
		identityService: identityService,
	}
}

func (c *guestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/guest/v1")
	h.Get("status", c.Status)
}

// Status reports how many guest messages the session has used and how many
// remain. Authenticated callers get the unlimited shape.
func (c *guestController) Status(ctx *fiber.Ctx) error {
	sessionKey := ctx.Query("session_key")

	identity, err := c.identityService.Classify(ctx.Context(), ctx.Get("Authorization"), sessionKey)
	if err != nil {
		return err
	}

	res, err := c.ledger.StatusFor(ctx.Context(), identity)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Guest session status", res))
}
