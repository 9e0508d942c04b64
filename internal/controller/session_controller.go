package controller

import (
	"github.com/Ntrakiyski/rag-chat-api/internal/dto"
	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/serverutils"
	"github.com/Ntrakiyski/rag-chat-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{sessionService: sessionService}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session")
	h.Get("/:session_id", c.Show)
	h.Put("/:session_id", c.Update)
}

// Show returns the full session document, chat history included.
func (c *sessionController) Show(ctx *fiber.Ctx) error {
	rec, err := c.sessionService.Get(ctx.Context(), ctx.Params("session_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(rec)
}

// Update merges the provided fields into the session and returns the result.
func (c *sessionController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse("Invalid request body"))
	}

	rec, err := c.sessionService.Update(ctx.Context(), ctx.Params("session_id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(rec)
}
