package inventory

import (
	"fmt"
	"strings"

	"bizadmin-backend/internal/audit"
	"bizadmin-backend/internal/database"
	"bizadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SupplierResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	IsInternal    bool   `json:"is_internal"`
	CreatedAt     string `json:"created_at"`
}

type CreateSupplierRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

func supplierResponse(s models.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		IsInternal:    s.IsInternal,
		CreatedAt:     s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/suppliers
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var suppliers []models.Supplier
		if err := database.DB.Order("name asc").Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		res := make([]SupplierResponse, 0, len(suppliers))
		for _, s := range suppliers {
			res = append(res, supplierResponse(s))
		}
		return c.JSON(fiber.Map{"success": true, "data": res})
	}
}

// POST /api/admin/suppliers (sadece admin)
// Dahili "Opening Stock" kaydı buradan değil, ingestion akışından oluşur.
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}
		if body.Name == models.OpeningStockSupplierName {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%q is reserved for the system", models.OpeningStockSupplierName))
		}

		s := models.Supplier{
			Name:          body.Name,
			ContactPerson: strings.TrimSpace(body.ContactPerson),
			Phone:         strings.TrimSpace(body.Phone),
			Email:         strings.TrimSpace(body.Email),
			Address:       strings.TrimSpace(body.Address),
		}

		if err := database.DB.Create(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		if userID, userName, uerr := getUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "supplier",
				EntityID:    s.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Supplier created: %s", s.Name),
				After:       s,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": supplierResponse(s)})
	}
}
