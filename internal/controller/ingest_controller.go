package controller

import (
	"io"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/serverutils"
	"github.com/Ntrakiyski/rag-chat-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIngestController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type ingestController struct {
	ingestionService service.IIngestionService
}

func NewIngestController(ingestionService service.IIngestionService) IIngestController {
	return &ingestController{ingestionService: ingestionService}
}

func (c *ingestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ingest")
	h.Post("/", c.Ingest)
	h.Get("/status/:session_id", c.Status)
}

// Ingest accepts either an uploaded PDF or a website URL as multipart form
// data and queues it for background processing.
func (c *ingestController) Ingest(ctx *fiber.Ctx) error {
	pdfHeader, pdfErr := ctx.FormFile("pdf_file")
	webURL := ctx.FormValue("web_url")
	hasPdf := pdfErr == nil && pdfHeader != nil

	if !hasPdf && webURL == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse("Either a PDF file or a web URL must be provided."))
	}
	if hasPdf && webURL != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse("Provide either a PDF file or a web URL, not both."))
	}

	var (
		inputType  string
		inputValue string
		pdfContent []byte
	)
	if hasPdf {
		file, err := pdfHeader.Open()
		if err != nil {
			return err
		}
		defer file.Close()
		pdfContent, err = io.ReadAll(file)
		if err != nil {
			return err
		}
		inputType = "pdf"
		inputValue = pdfHeader.Filename
	} else {
		inputType = "website"
		inputValue = webURL
	}

	resp, err := c.ingestionService.Submit(ctx.Context(), inputType, inputValue, pdfContent)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(resp)
}

func (c *ingestController) Status(ctx *fiber.Ctx) error {
	resp, err := c.ingestionService.Status(ctx.Context(), ctx.Params("session_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(resp)
}
