package inventory

import (
	"time"

	"bizadmin-backend/internal/auth"
	"bizadmin-backend/internal/database"
	"bizadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Yardımcı: Audit log için kullanıcı bilgilerini al
func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "User information is missing")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "User not found")
	}

	return userID, user.Name, nil
}

func parseExpiry(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
