package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bizadmin-backend/internal/database"
	"bizadmin-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Testler gerçek bir veritabanına (in-memory SQLite) karşı koşar;
// global database.DB her testte taze bir bağlantıyla değiştirilir.
func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}

	// :memory: bağlantı başına ayrı veritabanı verir; pool tek bağlantıda tutulmalı
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB alınamadı: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Warehouse{},
		&models.Product{},
		&models.Supplier{},
		&models.NumberSequence{},
		&models.GoodsReceivedNote{},
		&models.GoodsReceivedNoteItem{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("AutoMigrate hatası: %v", err)
	}

	database.DB = db

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"success": false,
					"error":   e.Message,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		},
	})

	app.Get("/api/inventory/opening-stock", ListOpeningStockHandler())
	app.Post("/api/inventory/opening-stock", CreateOpeningStockHandler())
	app.Put("/api/inventory/opening-stock", BulkCreateOpeningStockHandler())
	app.Post("/api/inventory/opening-stock/import", ImportOpeningStockHandler())
	app.Get("/api/inventory/opening-stock/export", ExportOpeningStockHandler())

	return app
}

func seedWarehouse(t *testing.T, code string) models.Warehouse {
	t.Helper()
	w := models.Warehouse{Code: code, Name: "Warehouse " + code}
	if err := database.DB.Create(&w).Error; err != nil {
		t.Fatalf("depo oluşturulamadı: %v", err)
	}
	return w
}

func seedProduct(t *testing.T, sku string) models.Product {
	t.Helper()
	p := models.Product{SKU: sku, Name: "Product " + sku, Unit: "adet"}
	if err := database.DB.Create(&p).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}
	return p
}

// seedApprovedOpeningStock: (warehouse, product) için onaylanmış bir opening
// stock GRN'i doğrudan veritabanına yazar (onay akışı bu serviste değil).
func seedApprovedOpeningStock(t *testing.T, w models.Warehouse, p models.Product) models.GoodsReceivedNote {
	t.Helper()

	supplier := models.Supplier{Name: "Seed Supplier " + fmt.Sprint(w.ID), IsInternal: false}
	if err := database.DB.Create(&supplier).Error; err != nil {
		t.Fatalf("tedarikçi oluşturulamadı: %v", err)
	}

	grn := models.GoodsReceivedNote{
		GRNNumber:   fmt.Sprintf("OPEN-1-%d%d", w.ID, p.ID),
		GRNType:     models.GRNTypeOpeningStock,
		SupplierID:  supplier.ID,
		WarehouseID: w.ID,
		Status:      models.GRNStatusApproved,
	}
	if err := database.DB.Create(&grn).Error; err != nil {
		t.Fatalf("GRN oluşturulamadı: %v", err)
	}

	item := models.GoodsReceivedNoteItem{
		GoodsReceivedNoteID: grn.ID,
		WarehouseID:         w.ID,
		ProductID:           p.ID,
		Status:              models.GRNStatusApproved,
		QuantityReceived:    10,
	}
	if err := database.DB.Create(&item).Error; err != nil {
		t.Fatalf("GRN satırı oluşturulamadı: %v", err)
	}

	return grn
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("istek gövdesi marshal edilemedi: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("istek başarısız: %v", err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("yanıt okunamadı: %v", err)
	}

	var parsed map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("yanıt JSON değil: %v (%s)", err, raw)
		}
	}

	return resp, parsed
}

func dataField(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("data alanı bekleniyordu, gelen: %v", body)
	}
	return data
}
