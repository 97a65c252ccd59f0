package serverutils

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"notes-app-be/pkg/blobstore"
)

// ErrorHandlerMiddleware converts the error taxonomy into HTTP statuses.
// Handlers return errors upward and never write error JSON themselves.
func ErrorHandlerMiddleware(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				_ = c.Status(fiber.StatusInternalServerError).JSON(
					ErrorResponse(fmt.Sprintf("%v", r)),
				)
			}
		}()

		err := c.Next()
		if err == nil {
			return nil
		}

		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse(err.Error()))
		}
		if errors.Is(err, ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(err.Error()))
		}
		if errors.Is(err, ErrBadRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse(err.Error()))
		}
		if errors.Is(err, blobstore.ErrUnsupportedMediaType) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(ErrorResponse(err.Error()))
		}
		if errors.Is(err, blobstore.ErrPayloadTooLarge) {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(ErrorResponse(err.Error()))
		}
		if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, blobstore.ErrUnavailable) {
			log.Error().Err(err).Msg("storage backend unavailable")
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse(ErrStoreUnavailable.Error()))
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			return c.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse(ve.ToErrorDetails()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		log.Error().Err(err).Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(err.Error()))
	}
}
