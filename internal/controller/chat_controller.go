package controller

import (
	"esperit-be/internal/dto"
	"esperit-be/internal/entity"
	"esperit-be/internal/pkg/logger"
	"esperit-be/internal/pkg/serverutils"
	"esperit-be/internal/service"
	"esperit-be/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService     service.IChatService
	identityService service.IIdentityService
	limiter         *ratelimit.Limiter // nil when redis is not configured
	log             logger.ILogger
}

func NewChatController(
	chatService service.IChatService,
	identityService service.IIdentityService,
	limiter *ratelimit.Limiter,
	log logger.ILogger,
) IChatController {
	return &chatController{
		chatService:     chatService,
		identityService: identityService,
		limiter:         limiter,
		log:             log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("", c.Send)
	h.Get(":id/history", c.History)
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	identity, err := c.identityService.Classify(ctx.Context(), ctx.Get("Authorization"), req.SessionKey)
	if err != nil {
		return err
	}

	if err := c.applyRateLimit(ctx, identity); err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.Context(), identity, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Message sent", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid conversation id"))
	}

	identity, err := c.identityService.Classify(ctx.Context(), ctx.Get("Authorization"), ctx.Query("session_key"))
	if err != nil {
		return err
	}

	res, err := c.chatService.GetHistory(ctx.Context(), identity, conversationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Conversation history", res))
}

// applyRateLimit is a volume guard keyed on the caller, separate from the
// guest message ledger. It fails open: a redis outage must not take the
// chat endpoint down with it.
func (c *chatController) applyRateLimit(ctx *fiber.Ctx, identity entity.Identity) error {
	if c.limiter == nil {
		return nil
	}

	key := identity.SessionKey
	if !identity.IsGuest() {
		key = identity.Auth.UserId.String()
	}

	result, err := c.limiter.Allow(ctx.Context(), key)
	if err != nil {
		c.log.Warn("chat", "rate limiter unavailable", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if !result.Allowed {
		return ctx.Status(fiber.StatusTooManyRequests).JSON(serverutils.ErrorResponse(429, "Too many requests"))
	}
	return nil
}
