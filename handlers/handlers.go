// handlers/handlers.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"fithub/common"
	"fithub/services"
)

var svc *services.Services

// Init hands the use cases to the HTTP layer.
func Init(s *services.Services) {
	svc = s
}

// ErrorHandler renders every error returned by a handler as
// {"success": false, "error": msg}, picking the status from the error type.
func ErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			code, message = fe.Code, fe.Message
		case common.IsValidation(err), common.IsConflict(err):
			code, message = fiber.StatusBadRequest, err.Error()
		case common.IsNotFound(err):
			code, message = fiber.StatusNotFound, err.Error()
		case errors.Is(err, common.ErrUnauthorized):
			code, message = fiber.StatusUnauthorized, "Invalid credentials"
		case errors.Is(err, common.ErrForbidden):
			code, message = fiber.StatusForbidden, err.Error()
		default:
			log.WithError(err).WithFields(log.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("request failed")
			message = err.Error()
		}

		// Don't expose internal errors in production
		if production && code == fiber.StatusInternalServerError {
			message = "An error occurred. Please try again later."
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func badBody() error {
	return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
}
