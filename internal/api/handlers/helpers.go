package handlers

import (
	"errors"

	"github.com/contenthub/api/internal/service"
	"github.com/gofiber/fiber/v2"
)

func GetUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

// respondError maps the service error taxonomy onto HTTP statuses the same
// way for every handler.
func respondError(c *fiber.Ctx, err error) error {
	var policyErr *service.PolicyViolationError
	var validationErr *service.ValidationError

	switch {
	case errors.Is(err, service.ErrPostNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	case errors.As(err, &policyErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": policyErr.Message})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Message})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
