package controller

import (
	"errors"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/serverutils"
	"github.com/Ntrakiyski/rag-chat-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFaqController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
}

type faqController struct {
	faqService service.IFaqService
}

func NewFaqController(faqService service.IFaqService) IFaqController {
	return &faqController{faqService: faqService}
}

func (c *faqController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/faq")
	h.Post("/generate/:session_id", c.Generate)
}

func (c *faqController) Generate(ctx *fiber.Ctx) error {
	resp, err := c.faqService.RequestGeneration(ctx.Context(), ctx.Params("session_id"))
	if err != nil {
		if errors.Is(err, service.ErrContentNotReady) {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse("Content is not ready. Cannot generate FAQs."))
		}
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(resp)
}
