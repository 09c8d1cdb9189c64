package controller

import (
	"esperit-be/internal/dto"
	"esperit-be/internal/pkg/serverutils"
	"esperit-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type conversationController struct {
	conversationService service.IConversationService
	identityService     service.IIdentityService
}

func NewConversationController(conversationService service.IConversationService, identityService service.IIdentityService) IConversationController {
	return &conversationController{
		conversationService: conversationService,
		identityService:     identityService,
	}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversation/v1")
	h.Get("", c.List)
	h.Delete(":id", c.Delete)
}

func (c *conversationController) List(ctx *fiber.Ctx) error {
	identity, err := c.identityService.Classify(ctx.Context(), ctx.Get("Authorization"), ctx.Query("session_key"))
	if err != nil {
		return err
	}

	res, err := c.conversationService.List(ctx.Context(), identity)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Conversations", dto.ConversationListResponse{
		Conversations: res,
		Total:         len(res),
	}))
}

func (c *conversationController) Delete(ctx *fiber.Ctx) error {
	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid conversation id"))
	}

	identity, err := c.identityService.Classify(ctx.Context(), ctx.Get("Authorization"), ctx.Query("session_key"))
	if err != nil {
		return err
	}

	if err := c.conversationService.Delete(ctx.Context(), identity, conversationId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Conversation deleted", nil))
}
