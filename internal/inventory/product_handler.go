package inventory

import (
	"fmt"
	"strings"

	"bizadmin-backend/internal/audit"
	"bizadmin-backend/internal/database"
	"bizadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProductResponse struct {
	ID   uint   `json:"id"`
	SKU  string `json:"sku"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type CreateProductRequest struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type UpdateProductRequest struct {
	Name *string `json:"name"`
	Unit *string `json:"unit"`
}

// GET /api/products (tüm authenticated kullanıcılar görebilir)
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{})

		// SKU veya isim ile arama
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + search + "%"
			dbq = dbq.Where("sku LIKE ? OR name LIKE ?", like, like)
		}

		var products []models.Product
		if err := dbq.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, ProductResponse{
				ID:   p.ID,
				SKU:  p.SKU,
				Name: p.Name,
				Unit: p.Unit,
			})
		}
		return c.JSON(fiber.Map{"success": true, "data": res})
	}
}

// POST /api/admin/products (sadece admin)
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.SKU = strings.TrimSpace(body.SKU)
		body.Name = strings.TrimSpace(body.Name)
		body.Unit = strings.TrimSpace(body.Unit)

		if body.SKU == "" || body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "SKU, name and unit are required")
		}

		var existing models.Product
		if err := database.DB.Where("sku = ?", body.SKU).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("SKU %s is already in use", body.SKU))
		}

		p := models.Product{
			SKU:  body.SKU,
			Name: body.Name,
			Unit: body.Unit,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		if userID, userName, uerr := getUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product",
				EntityID:    p.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Product created: %s (%s)", p.Name, p.SKU),
				After:       p,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"data": ProductResponse{
				ID:   p.ID,
				SKU:  p.SKU,
				Name: p.Name,
				Unit: p.Unit,
			},
		})
	}
}

// PUT /api/admin/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		before := p

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			p.Name = name
		}
		if body.Unit != nil {
			unit := strings.TrimSpace(*body.Unit)
			if unit == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Unit cannot be empty")
			}
			p.Unit = unit
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		if userID, userName, uerr := getUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product",
				EntityID:    p.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Product updated: %s (%s)", p.Name, p.SKU),
				Before:      before,
				After:       p,
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data": ProductResponse{
				ID:   p.ID,
				SKU:  p.SKU,
				Name: p.Name,
				Unit: p.Unit,
			},
		})
	}
}
