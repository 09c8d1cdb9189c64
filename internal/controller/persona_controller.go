package controller

import (
	"esperit-be/internal/dto"
	"esperit-be/internal/pkg/serverutils"
	"esperit-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPersonaController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
}

type personaController struct {
	personaService service.IPersonaService
	jwtSecret      string
}

func NewPersonaController(personaService service.IPersonaService, jwtSecret string) IPersonaController {
	return &personaController{
		personaService: personaService,
		jwtSecret:      jwtSecret,
	}
}

func (c *personaController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/persona/v1")
	h.Get("", c.List)
	// Creating personas requires a signed-in user; browsing stays open to
	// guests.
	h.Post("", serverutils.JwtMiddleware(c.jwtSecret), c.Create)
	h.Get(":slug", c.Show)
}

func (c *personaController) List(ctx *fiber.Ctx) error {
	res, err := c.personaService.List(ctx.Context(), ctx.Query("category"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Personas", res))
}

func (c *personaController) Show(ctx *fiber.Ctx) error {
	persona, err := c.personaService.GetBySlug(ctx.Context(), ctx.Params("slug"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Persona", dto.ToPersonaResponse(persona)))
}

func (c *personaController) Create(ctx *fiber.Ctx) error {
	req := new(dto.CreatePersonaRequest)
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	persona, err := c.personaService.Create(ctx.Context(), req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Persona created", dto.ToPersonaResponse(persona)))
}
