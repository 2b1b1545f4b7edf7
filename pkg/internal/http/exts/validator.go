package exts

import (
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validation = validator.New(validator.WithRequiredStructEnabled())

func BindAndValidate(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return services.ValidationError("invalid request body: %v", err)
	} else if err := validation.Struct(out); err != nil {
		return services.ValidationError("%v", err)
	}
	return nil
}
