package exts

import (
	"errors"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Envelope wraps every response body.
type Envelope struct {
	StatusCode int    `json:"status_code"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
}

func Respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
	})
}

func OK(c *fiber.Ctx, data any, message string) error {
	return Respond(c, fiber.StatusOK, data, message)
}

func Created(c *fiber.Ctx, data any, message string) error {
	return Respond(c, fiber.StatusCreated, data, message)
}

// ErrorHandler turns any error returned by a handler into an envelope with data set to null.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "something went wrong"

	var domain *services.Error
	var ferr *fiber.Error
	switch {
	case errors.As(err, &domain):
		status = domain.Kind.StatusCode()
		message = domain.Message
	case errors.As(err, &ferr):
		status = ferr.Code
		message = ferr.Message
	}

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("An error occurred when handling request...")
	}

	return Respond(c, status, nil, message)
}
