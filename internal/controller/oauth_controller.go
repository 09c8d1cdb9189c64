package controller

import (
	"fmt"

	"esperit-be/internal/pkg/logger"
	"esperit-be/internal/pkg/serverutils"
	"esperit-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type oauthController struct {
	service   service.IOAuthService
	clientURL string
	log       logger.ILogger
}

func NewOAuthController(service service.IOAuthService, clientURL string, log logger.ILogger) IOAuthController {
	return &oauthController{service: service, clientURL: clientURL, log: log}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Get("/:provider", c.Login)
	h.Get("/:provider/callback", c.Callback)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")

	url, err := c.service.GetLoginURL(provider)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	// The guest session key rides along as state context via a cookie so the
	// callback can migrate the visitor's conversations after sign-in.
	if sessionKey := ctx.Query("session_key"); sessionKey != "" {
		ctx.Cookie(&fiber.Cookie{
			Name:     "guest_session_key",
			Value:    sessionKey,
			HTTPOnly: true,
			MaxAge:   600,
		})
	}

	return ctx.Redirect(url)
}

func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")
	code := ctx.Query("code")

	if code == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing code"))
	}

	guestSessionKey := ctx.Cookies("guest_session_key")

	res, err := c.service.HandleCallback(ctx.Context(), provider, code, guestSessionKey)
	if err != nil {
		c.log.Error("oauth", "callback failed", map[string]interface{}{"error": err.Error()})
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	ctx.ClearCookie("guest_session_key")

	redirectURL := fmt.Sprintf("%s/app?token=%s&migrated=%d", c.clientURL, res.AccessToken, res.MigratedConversations)
	return ctx.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}
