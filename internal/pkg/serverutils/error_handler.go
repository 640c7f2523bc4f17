package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps the app error taxonomy onto HTTP statuses.
// Unknown errors become 500 without leaking internals to the client.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var notFound *NotFoundError
		var permission *PermissionError
		var validation *ValidationError
		var malformed *MalformedMessageError

		switch {
		case errors.As(err, &notFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(notFound.Error()))
		case errors.As(err, &permission):
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(permission.Error()))
		case errors.As(err, &validation):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(validation.Error()))
		case errors.As(err, &malformed):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(malformed.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
	}
}
