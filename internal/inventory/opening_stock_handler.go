package inventory

import (
	"fmt"
	"math"
	"time"

	"bizadmin-backend/internal/audit"
	"bizadmin-backend/internal/database"
	"bizadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OpeningStockItemRequest struct {
	ProductID   uint    `json:"product_id"`
	Quantity    float64 `json:"quantity"`
	BatchNumber string  `json:"batch_number"`
	UnitCost    float64 `json:"unit_cost"`
	ExpiryDate  string  `json:"expiry_date"` // "2025-12-09"
}

type CreateOpeningStockRequest struct {
	WarehouseID uint                      `json:"warehouse_id"`
	Items       []OpeningStockItemRequest `json:"items"`
	Notes       string                    `json:"notes"`
	CreatedByID *uint                     `json:"created_by_id"`
}

type BulkOpeningStockRow struct {
	ProductID   uint    `json:"product_id"`
	WarehouseID uint    `json:"warehouse_id"`
	Quantity    float64 `json:"quantity"`
	BatchNumber string  `json:"batch_number"`
	UnitCost    float64 `json:"unit_cost"`
	ExpiryDate  string  `json:"expiry_date"`
	Notes       string  `json:"notes"`
}

type BulkOpeningStockRequest struct {
	Items       []BulkOpeningStockRow `json:"items"`
	CreatedByID *uint                 `json:"created_by_id"`
}

type BulkRowResult struct {
	Row       int    `json:"row"` // 1 tabanlı
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	GRNID     uint   `json:"grn_id,omitempty"`
	GRNNumber string `json:"grn_number,omitempty"`
}

// POST /api/inventory/opening-stock
// Tek depo + ürün listesi ile taslak opening stock GRN oluşturur.
func CreateOpeningStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOpeningStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		// Validasyon sırası sabit: depo, satır listesi, satır alanları, çakışma
		if body.WarehouseID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Warehouse is required")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "At least one item is required")
		}

		items := make([]openingStockItem, 0, len(body.Items))
		for i, item := range body.Items {
			if item.ProductID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Item %d: product_id is required", i+1))
			}
			if item.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Item %d: quantity must be greater than zero", i+1))
			}
			expiry, err := parseExpiry(item.ExpiryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Item %d: expiry_date must be 'YYYY-MM-DD'", i+1))
			}
			items = append(items, openingStockItem{
				ProductID:   item.ProductID,
				Quantity:    item.Quantity,
				BatchNumber: item.BatchNumber,
				UnitCost:    item.UnitCost,
				ExpiryDate:  expiry,
			})
		}

		// Mutasyondan önce çakışma kontrolü; transaction içinde tekrarlanır
		for _, item := range items {
			exists, err := openingStockExists(database.DB, body.WarehouseID, item.ProductID)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
			if exists {
				return fiber.NewError(fiber.StatusConflict, duplicateMessage(database.DB, item.ProductID))
			}
		}

		grn, err := createOpeningStockGRN(openingStockInput{
			WarehouseID: body.WarehouseID,
			Notes:       body.Notes,
			CreatedByID: body.CreatedByID,
			Items:       items,
		})
		if err != nil {
			return mapCreateError(err)
		}

		// Audit log
		if userID, userName, uerr := getUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "goods_received_note",
				EntityID:    grn.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Opening stock GRN created: %s (%d items)", grn.GRNNumber, len(items)),
				After:       grn,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"id":         grn.ID,
				"grn_number": grn.GRNNumber,
				"status":     grn.Status,
				"item_count": len(items),
				"message":    "Opening stock GRN created in draft status. Approve it to finalize the quantities.",
			},
		})
	}
}

// processOpeningStockRow: tek bir bulk satırını işler. Her satır kendi
// transaction'ında koşar, satır hatası batch'i durdurmaz.
func processOpeningStockRow(rowNum int, row BulkOpeningStockRow, createdByID *uint) BulkRowResult {
	fail := func(msg string) BulkRowResult {
		return BulkRowResult{Row: rowNum, Success: false, Message: msg}
	}

	if row.ProductID == 0 {
		return fail("product_id is required")
	}
	if row.WarehouseID == 0 {
		return fail("warehouse_id is required")
	}
	if row.Quantity == 0 {
		return fail("quantity is required")
	}
	if row.Quantity < 0 {
		return fail("quantity must be greater than zero")
	}

	expiry, err := parseExpiry(row.ExpiryDate)
	if err != nil {
		return fail("expiry_date must be 'YYYY-MM-DD'")
	}

	grn, err := createOpeningStockGRN(openingStockInput{
		WarehouseID: row.WarehouseID,
		Notes:       row.Notes,
		CreatedByID: createdByID,
		Items: []openingStockItem{{
			ProductID:   row.ProductID,
			Quantity:    row.Quantity,
			BatchNumber: row.BatchNumber,
			UnitCost:    row.UnitCost,
			ExpiryDate:  expiry,
		}},
	})
	if err != nil {
		// validation/conflict hataları mesajlarını taşır, kalanı ham DB mesajı
		return fail(err.Error())
	}

	return BulkRowResult{
		Row:       rowNum,
		Success:   true,
		Message:   "Created",
		GRNID:     grn.ID,
		GRNNumber: grn.GRNNumber,
	}
}

// PUT /api/inventory/opening-stock
// Her satır için ayrı bir GRN oluşturur; hatalı satırlar atlanır ve satır
// bazında raporlanır (CSV/Excel yüklemeleri tek bozuk satırla ölmesin diye).
func BulkCreateOpeningStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BulkOpeningStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "At least one item is required")
		}

		batchID := uuid.NewString()
		userID, userName, uerr := getUserInfo(c)

		results := make([]BulkRowResult, 0, len(body.Items))
		successful, failed := 0, 0

		for idx, row := range body.Items {
			res := processOpeningStockRow(idx+1, row, body.CreatedByID)
			if res.Success {
				successful++
				if uerr == nil {
					_ = audit.WriteLog(audit.LogOptions{
						UserID:      userID,
						UserName:    userName,
						EntityType:  "goods_received_note",
						EntityID:    res.GRNID,
						Action:      models.AuditActionCreate,
						Description: fmt.Sprintf("Opening stock GRN created (bulk): %s", res.GRNNumber),
						BatchID:     batchID,
					})
				}
			} else {
				failed++
			}
			results = append(results, res)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"batch_id":   batchID,
				"total":      len(body.Items),
				"successful": successful,
				"failed":     failed,
				"results":    results,
			},
		})
	}
}

type OpeningStockListRow struct {
	ID            uint      `gorm:"column:id" json:"id"`
	GRNNumber     string    `gorm:"column:grn_number" json:"grn_number"`
	Status        string    `gorm:"column:status" json:"status"`
	Notes         string    `gorm:"column:notes" json:"notes"`
	WarehouseID   uint      `gorm:"column:warehouse_id" json:"warehouse_id"`
	WarehouseName string    `gorm:"column:warehouse_name" json:"warehouse_name"`
	SupplierID    uint      `gorm:"column:supplier_id" json:"supplier_id"`
	SupplierName  string    `gorm:"column:supplier_name" json:"supplier_name"`
	ItemCount     int64     `gorm:"column:item_count" json:"item_count"`
	TotalQuantity float64   `gorm:"column:total_quantity" json:"total_quantity"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"-"`
}

type OpeningStockListResponse struct {
	OpeningStockListRow
	CreatedAtFormatted string `json:"created_at"`
}

// queryOpeningStockRows: listeleme ve export'un ortak sorgusu.
// limit <= 0 ise sayfalama uygulanmaz.
func queryOpeningStockRows(page, limit int) ([]OpeningStockListRow, error) {
	dbq := database.DB.Model(&models.GoodsReceivedNote{}).
		Select(`goods_received_notes.id,
			goods_received_notes.grn_number,
			goods_received_notes.status,
			goods_received_notes.notes,
			goods_received_notes.created_at,
			goods_received_notes.warehouse_id,
			warehouses.name AS warehouse_name,
			goods_received_notes.supplier_id,
			suppliers.name AS supplier_name,
			COUNT(items.id) AS item_count,
			COALESCE(SUM(items.quantity_received), 0) AS total_quantity`).
		Joins("JOIN warehouses ON warehouses.id = goods_received_notes.warehouse_id").
		Joins("JOIN suppliers ON suppliers.id = goods_received_notes.supplier_id").
		Joins("LEFT JOIN goods_received_note_items items ON items.goods_received_note_id = goods_received_notes.id").
		Where("goods_received_notes.grn_type = ?", models.GRNTypeOpeningStock).
		Group(`goods_received_notes.id, goods_received_notes.grn_number, goods_received_notes.status,
			goods_received_notes.notes, goods_received_notes.created_at, goods_received_notes.warehouse_id,
			warehouses.name, goods_received_notes.supplier_id, suppliers.name`).
		Order("goods_received_notes.created_at DESC, goods_received_notes.id DESC")

	if limit > 0 {
		dbq = dbq.Limit(limit).Offset((page - 1) * limit)
	}

	var rows []OpeningStockListRow
	if err := dbq.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GET /api/inventory/opening-stock?page=&limit=
func ListOpeningStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		limit := c.QueryInt("limit", 50)
		if limit < 1 || limit > 500 {
			limit = 50
		}

		var total int64
		if err := database.DB.Model(&models.GoodsReceivedNote{}).
			Where("grn_type = ?", models.GRNTypeOpeningStock).
			Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		rows, err := queryOpeningStockRows(page, limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		resp := make([]OpeningStockListResponse, 0, len(rows))
		for _, row := range rows {
			resp = append(resp, OpeningStockListResponse{
				OpeningStockListRow: row,
				CreatedAtFormatted:  row.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		pages := int(math.Ceil(float64(total) / float64(limit)))

		return c.JSON(fiber.Map{
			"success": true,
			"data":    resp,
			"pagination": fiber.Map{
				"page":  page,
				"limit": limit,
				"total": total,
				"pages": pages,
			},
		})
	}
}
