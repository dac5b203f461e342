package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/apperr"
)

// ErrorHandler maps the error taxonomy to HTTP responses. In development
// mode internal error detail is passed through; otherwise it is suppressed.
func ErrorHandler(development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := apperr.As(err); ok {
			switch e.Kind {
			case apperr.KindValidation:
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": e.Message,
				})
			case apperr.KindNotFound:
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": e.Message,
				})
			case apperr.KindInsufficientBudget:
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error":     "INSUFFICIENT_BUDGET",
					"required":  e.Required,
					"available": e.Available,
				})
			case apperr.KindInternal:
				log.Error().Err(e).Str("path", c.Path()).Msg("internal error")
				msg := "internal server error"
				if development {
					msg = e.Error()
				}
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": msg,
				})
			}
		}

		code := fiber.StatusInternalServerError
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
		}

		if code >= 500 {
			log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			if !development {
				return c.Status(code).JSON(fiber.Map{"error": "internal server error"})
			}
		}

		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}
