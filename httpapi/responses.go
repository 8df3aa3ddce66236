package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// respond writes the success envelope: {status:true, ...payload}.
func respond(c *fiber.Ctx, payload fiber.Map) error {
	body := fiber.Map{"status": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(body)
}

// respondMessage writes a success envelope with only a message.
func respondMessage(c *fiber.Ctx, message string) error {
	return respond(c, fiber.Map{"message": message})
}

// fail maps an error to the failure envelope {status:false, message}.
// Categorized errors keep their code and public message; anything else is a
// generic 500 so internals never leak to the client.
func fail(c *fiber.Ctx, err error, logger Logger) error {
	status := fiber.StatusInternalServerError
	message := "an unexpected error occurred"

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		switch richErr.Category {
		case errors.CategoryInternal, errors.CategoryOperation:
			// log detail below, keep the generic message
			status = fiber.StatusInternalServerError
		default:
			status = statusFor(richErr)
			message = richErr.Message
		}
	}

	if status >= fiber.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  false,
		"message": message,
	})
}

// statusFor resolves the HTTP status for a categorized error, falling back
// to the category when no explicit code was attached.
func statusFor(err *errors.Error) int {
	if err.Code > 0 {
		return err.Code
	}

	switch err.Category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
