package handlers

import (
	"github.com/contenthub/api/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// AccountHandler covers the read side of connected accounts. Connecting an
// account (the OAuth dance) happens in the identity service.
type AccountHandler struct {
	ac repository.SocialAccountRepository
}

func NewAccountHandler(ac repository.SocialAccountRepository) *AccountHandler {
	return &AccountHandler{ac: ac}
}

func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accounts, err := h.ac.ListByUserID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list social accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accounts)
}

func (h *AccountHandler) RemoveAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := c.Params("id")

	exists, err := h.ac.CheckByUserID(c.Context(), accountID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove social account",
		})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	if err := h.ac.Remove(c.Context(), accountID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove social account",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Account removed"})
}
