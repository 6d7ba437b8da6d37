package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"support-assistant-be/pkg/rag/response"
	"support-assistant-be/pkg/store"
	"support-assistant-be/pkg/tabular"
)

// ErrorHandlerMiddleware maps domain errors to HTTP statuses so controllers
// can just `return err`. Unknown errors become 500s without leaking
// internals.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			return errorJSON(ctx, appErr.Code, appErr.Message)
		}

		if errors.Is(err, store.ErrSessionNotFound) {
			return errorJSON(ctx, fiber.StatusNotFound, "Session not found")
		}

		var formatErr *tabular.DataFormatError
		if errors.As(err, &formatErr) {
			return errorJSON(ctx, fiber.StatusBadRequest, formatErr.Error())
		}

		var genErr *response.GenerationError
		if errors.As(err, &genErr) {
			return errorJSON(ctx, fiber.StatusInternalServerError, genErr.Message)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return errorJSON(ctx, fiberErr.Code, fiberErr.Message)
		}

		return errorJSON(ctx, fiber.StatusInternalServerError, "Internal server error")
	}
}

func errorJSON(ctx *fiber.Ctx, code int, message string) error {
	return ctx.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
