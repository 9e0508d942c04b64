package serverutils

import (
	"errors"
	"fmt"

	"github.com/Ntrakiyski/rag-chat-api/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const genericErrorDetail = "An unexpected error occurred while processing your request."

// ErrorHandlerMiddleware translates errors returned by handlers into JSON
// error responses. Controllers return domain errors as-is; anything not
// recognized here becomes a generic 500 so internal details never leak.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			detail := fmt.Sprintf("Field '%s' failed validation on the '%s' rule.", vErrs[0].Field(), vErrs[0].Tag())
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse(detail))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		if errors.Is(err, session.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse("Session not found."))
		}

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(genericErrorDetail))
	}
}
