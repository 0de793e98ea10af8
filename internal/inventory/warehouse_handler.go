package inventory

import (
	"fmt"
	"strings"

	"bizadmin-backend/internal/audit"
	"bizadmin-backend/internal/database"
	"bizadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type WarehouseResponse struct {
	ID        uint   `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

type CreateWarehouseRequest struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type UpdateWarehouseRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

func warehouseResponse(w models.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/warehouses
func ListWarehousesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var warehouses []models.Warehouse
		if err := database.DB.Order("code asc").Find(&warehouses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		res := make([]WarehouseResponse, 0, len(warehouses))
		for _, w := range warehouses {
			res = append(res, warehouseResponse(w))
		}
		return c.JSON(fiber.Map{"success": true, "data": res})
	}
}

// POST /api/admin/warehouses (sadece admin)
func CreateWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWarehouseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Code = strings.TrimSpace(body.Code)
		body.Name = strings.TrimSpace(body.Name)

		if body.Code == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Code and name are required")
		}

		var existing models.Warehouse
		if err := database.DB.Where("code = ?", body.Code).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Warehouse code %s is already in use", body.Code))
		}

		w := models.Warehouse{
			Code:    body.Code,
			Name:    body.Name,
			Address: strings.TrimSpace(body.Address),
		}

		if err := database.DB.Create(&w).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		if userID, userName, uerr := getUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "warehouse",
				EntityID:    w.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Warehouse created: %s (%s)", w.Name, w.Code),
				After:       w,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": warehouseResponse(w)})
	}
}

// PUT /api/admin/warehouses/:id
func UpdateWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var w models.Warehouse
		if err := database.DB.First(&w, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Warehouse not found")
		}
		before := w

		var body UpdateWarehouseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			w.Name = name
		}
		if body.Address != nil {
			w.Address = strings.TrimSpace(*body.Address)
		}

		if err := database.DB.Save(&w).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		if userID, userName, uerr := getUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "warehouse",
				EntityID:    w.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Warehouse updated: %s (%s)", w.Name, w.Code),
				Before:      before,
				After:       w,
			})
		}

		return c.JSON(fiber.Map{"success": true, "data": warehouseResponse(w)})
	}
}
