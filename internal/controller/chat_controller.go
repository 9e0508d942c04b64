package controller

import (
	"github.com/Ntrakiyski/rag-chat-api/internal/dto"
	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/serverutils"
	"github.com/Ntrakiyski/rag-chat-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{chatService: chatService}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("/:session_id", c.Chat)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse("Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	resp, err := c.chatService.Chat(ctx.Context(), ctx.Params("session_id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(resp)
}
