package inventory

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"bizadmin-backend/internal/database"
	"bizadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

var grnNumberPattern = regexp.MustCompile(`^OPEN-\d+-\d+$`)

func TestCreateOpeningStockRequiresWarehouse(t *testing.T) {
	app := setupTestApp(t)

	// Depo eksikken satır hataları raporlanmamalı; ilk hata depo olmalı.
	resp, body := doJSON(t, app, "POST", "/api/inventory/opening-stock", fiber.Map{
		"items": []fiber.Map{{"product_id": 0, "quantity": 0}},
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("beklenen 400, gelen %d", resp.StatusCode)
	}
	if body["error"] != "Warehouse is required" {
		t.Errorf("beklenen 'Warehouse is required', gelen %v", body["error"])
	}
}

func TestCreateOpeningStockRequiresItems(t *testing.T) {
	app := setupTestApp(t)
	w := seedWarehouse(t, "WH-01")

	resp, body := doJSON(t, app, "POST", "/api/inventory/opening-stock", fiber.Map{
		"warehouse_id": w.ID,
		"items":        []fiber.Map{},
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("beklenen 400, gelen %d", resp.StatusCode)
	}
	if body["error"] != "At least one item is required" {
		t.Errorf("beklenen 'At least one item is required', gelen %v", body["error"])
	}
}

func TestCreateOpeningStockRejectsZeroQuantity(t *testing.T) {
	app := setupTestApp(t)
	w := seedWarehouse(t, "WH-01")
	p := seedProduct(t, "SKU-001")

	resp, body := doJSON(t, app, "POST", "/api/inventory/opening-stock", fiber.Map{
		"warehouse_id": w.ID,
		"items":        []fiber.Map{{"product_id": p.ID, "quantity": 0}},
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("beklenen 400, gelen %d", resp.StatusCode)
	}
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "quantity") {
		t.Errorf("hata mesajı quantity içermeli, gelen: %q", msg)
	}
}

func TestCreateOpeningStockDuplicateGuard(t *testing.T) {
	app := setupTestApp(t)
	w := seedWarehouse(t, "WH-01")
	p := seedProduct(t, "SKU-001")
	seedApprovedOpeningStock(t, w, p)

	var before int64
	database.DB.Model(&models.GoodsReceivedNote{}).Count(&before)

	resp, body := doJSON(t, app, "POST", "/api/inventory/opening-stock", fiber.Map{
		"warehouse_id": w.ID,
		"items":        []fiber.Map{{"product_id": p.ID, "quantity": 5}},
	})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("beklenen 409, gelen %d (%v)", resp.StatusCode, body)
	}
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "SKU-001") {
		t.Errorf("hata mesajı ürün SKU'sunu içermeli, gelen: %q", msg)
	}

	var after int64
	database.DB.Model(&models.GoodsReceivedNote{}).Count(&after)
	if after != before {
		t.Errorf("çakışan istek GRN yaratmamalı: önce %d, sonra %d", before, after)
	}
}

func TestCreateOpeningStockDuplicateGuardIgnoresDrafts(t *testing.T) {
	app := setupTestApp(t)
	w := seedWarehouse(t, "WH-01")
	p := seedProduct(t, "SKU-001")

	// Taslak kayıt engel olmamalı; aynı (depo, ürün) için ikinci taslak serbest.
	for i := 0; i < 2; i++ {
		resp, body := doJSON(t, app, "POST", "/api/inventory/opening-stock", fiber.Map{
			"warehouse_id": w.ID,
			"items":        []fiber.Map{{"product_id": p.ID, "quantity": 3}},
		})
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("deneme %d: beklenen 201, gelen %d (%v)", i+1, resp.StatusCode, body)
		}
	}
}

func TestCreateOpeningStockSuccess(t *testing.T) {
	app := setupTestApp(t)
	w := seedWarehouse(t, "WH-01")
	p1 := seedProduct(t, "SKU-001")
	p2 := seedProduct(t, "SKU-002")

	resp, body := doJSON(t, app, "POST", "/api/inventory/opening-stock", fiber.Map{
		"warehouse_id": w.ID,
		"notes":        "ilk sayım",
		"items": []fiber.Map{
			{"product_id": p1.ID, "quantity": 12.5, "batch_number": "B-1", "expiry_date": "2027-01-31"},
			{"product_id": p2.ID, "quantity": 4},
		},
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("beklenen 201, gelen %d (%v)", resp.StatusCode, body)
	}

	data := dataField(t, body)
	number, _ := data["grn_number"].(string)
	if !grnNumberPattern.MatchString(number) {
		t.Errorf("grn_number OPEN-<ts>-<seq> biçiminde olmalı, gelen: %q", number)
	}
	if data["status"] != string(models.GRNStatusDraft) {
		t.Errorf("yeni GRN taslak olmalı, gelen: %v", data["status"])
	}
	if int(data["item_count"].(float64)) != 2 {
		t.Errorf("item_count 2 olmalı, gelen: %v", data["item_count"])
	}

	var grn models.GoodsReceivedNote
	if err := database.DB.Preload("Items").Where("grn_number = ?", number).First(&grn).Error; err != nil {
		t.Fatalf("GRN veritabanında bulunamadı: %v", err)
	}
	if len(grn.Items) != 2 {
		t.Errorf("2 satır bekleniyordu, gelen %d", len(grn.Items))
	}
	if grn.Items[0].WarehouseID != w.ID || grn.Items[0].Status != models.GRNStatusDraft {
		t.Errorf("satırlar başlıktaki depo ve durumu taşımalı: %+v", grn.Items[0])
	}
	if grn.Items[0].ExpiryDate == nil {
		t.Errorf("expiry_date satıra yazılmalıydı")
	}
}

func TestCreateOpeningStockInvalidExpiry(t *testing.T) {
	app := setupTestApp(t)
	w := seedWarehouse(t, "WH-01")
	p := seedProduct(t, "SKU-001")

	resp, body := doJSON(t, app, "POST", "/api/inventory/opening-stock", fiber.Map{
		"warehouse_id": w.ID,
		"items":        []fiber.Map{{"product_id": p.ID, "quantity": 1, "expiry_date": "31/01/2027"}},
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("beklenen 400, gelen %d (%v)", resp.StatusCode, body)
	}
}

func TestBulkOpeningStockPartialFailure(t *testing.T) {
	app := setupTestApp(t)
	w := seedWarehouse(t, "WH-01")
	p1 := seedProduct(t, "SKU-001")
	p2 := seedProduct(t, "SKU-002")
	p3 := seedProduct(t, "SKU-003")

	resp, body := doJSON(t, app, "PUT", "/api/inventory/opening-stock", fiber.Map{
		"items": []fiber.Map{
			{"warehouse_id": w.ID, "product_id": p1.ID, "quantity": 5},
			{"warehouse_id": w.ID, "product_id": p2.ID, "quantity": -1},
			{"warehouse_id": w.ID, "product_id": p3.ID, "quantity": 7, "batch_number": "B-7"},
		},
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("beklenen 200, gelen %d (%v)", resp.StatusCode, body)
	}

	data := dataField(t, body)
	results, ok := data["results"].([]any)
	if !ok || len(results) != 3 {
		t.Fatalf("3 satır sonucu bekleniyordu, gelen: %v", data["results"])
	}

	second := results[1].(map[string]any)
	if second["success"] != false {
		t.Errorf("2. satır başarısız olmalı: %v", second)
	}
	if second["row"].(float64) != 2 {
		t.Errorf("satır numarası 1 tabanlı olmalı, gelen: %v", second["row"])
	}

	total := data["total"].(float64)
	successful := data["successful"].(float64)
	failed := data["failed"].(float64)
	if successful+failed != total {
		t.Errorf("successful+failed total'a eşit olmalı: %v + %v != %v", successful, failed, total)
	}
	if successful != 2 || failed != 1 {
		t.Errorf("2 başarılı 1 başarısız bekleniyordu: %v/%v", successful, failed)
	}

	first := results[0].(map[string]any)
	number, _ := first["grn_number"].(string)
	if !grnNumberPattern.MatchString(number) {
		t.Errorf("başarılı satır grn_number dönmeli, gelen: %v", first)
	}

	if data["batch_id"] == "" || data["batch_id"] == nil {
		t.Errorf("bulk yanıtı batch_id içermeli")
	}

	// Başarısız satır hiçbir kayıt bırakmamalı.
	var grnCount int64
	database.DB.Model(&models.GoodsReceivedNote{}).Count(&grnCount)
	if grnCount != 2 {
		t.Errorf("2 GRN bekleniyordu, gelen %d", grnCount)
	}
}

func TestBulkOpeningStockDuplicateRow(t *testing.T) {
	app := setupTestApp(t)
	w := seedWarehouse(t, "WH-01")
	p := seedProduct(t, "SKU-001")
	seedApprovedOpeningStock(t, w, p)

	resp, body := doJSON(t, app, "PUT", "/api/inventory/opening-stock", fiber.Map{
		"items": []fiber.Map{
			{"warehouse_id": w.ID, "product_id": p.ID, "quantity": 5},
		},
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("beklenen 200, gelen %d (%v)", resp.StatusCode, body)
	}

	data := dataField(t, body)
	results := data["results"].([]any)
	row := results[0].(map[string]any)
	if row["success"] != false {
		t.Errorf("onaylı kayıt varken satır reddedilmeli: %v", row)
	}
	msg, _ := row["message"].(string)
	if !strings.Contains(msg, "SKU-001") {
		t.Errorf("satır mesajı SKU içermeli, gelen: %q", msg)
	}
}

func TestOpeningStockSupplierResolvedOnce(t *testing.T) {
	app := setupTestApp(t)
	w := seedWarehouse(t, "WH-01")
	p1 := seedProduct(t, "SKU-001")
	p2 := seedProduct(t, "SKU-002")

	for _, p := range []models.Product{p1, p2} {
		resp, body := doJSON(t, app, "POST", "/api/inventory/opening-stock", fiber.Map{
			"warehouse_id": w.ID,
			"items":        []fiber.Map{{"product_id": p.ID, "quantity": 1}},
		})
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("beklenen 201, gelen %d (%v)", resp.StatusCode, body)
		}
	}

	var suppliers []models.Supplier
	if err := database.DB.Where("name = ?", models.OpeningStockSupplierName).Find(&suppliers).Error; err != nil {
		t.Fatalf("tedarikçi sorgusu başarısız: %v", err)
	}
	if len(suppliers) != 1 {
		t.Fatalf("tek bir dahili tedarikçi bekleniyordu, gelen %d", len(suppliers))
	}
	if !suppliers[0].IsInternal {
		t.Errorf("opening stock tedarikçisi dahili işaretlenmeli")
	}

	var grns []models.GoodsReceivedNote
	database.DB.Find(&grns)
	for _, g := range grns {
		if g.SupplierID != suppliers[0].ID {
			t.Errorf("tüm GRN'ler aynı dahili tedarikçiye bağlanmalı")
		}
	}
}

func TestGRNNumbersAreUnique(t *testing.T) {
	app := setupTestApp(t)
	w := seedWarehouse(t, "WH-01")
	p := seedProduct(t, "SKU-001")

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		resp, body := doJSON(t, app, "POST", "/api/inventory/opening-stock", fiber.Map{
			"warehouse_id": w.ID,
			"items":        []fiber.Map{{"product_id": p.ID, "quantity": 1}},
		})
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("beklenen 201, gelen %d (%v)", resp.StatusCode, body)
		}
		number := dataField(t, body)["grn_number"].(string)
		if seen[number] {
			t.Fatalf("GRN numarası tekrarlandı: %s", number)
		}
		seen[number] = true
	}
}

func TestListOpeningStockPagination(t *testing.T) {
	app := setupTestApp(t)
	w := seedWarehouse(t, "WH-01")
	p := seedProduct(t, "SKU-001")

	for i := 0; i < 25; i++ {
		resp, body := doJSON(t, app, "POST", "/api/inventory/opening-stock", fiber.Map{
			"warehouse_id": w.ID,
			"items":        []fiber.Map{{"product_id": p.ID, "quantity": float64(i + 1)}},
		})
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("kayıt %d: beklenen 201, gelen %d (%v)", i, resp.StatusCode, body)
		}
	}

	resp, body := doJSON(t, app, "GET", "/api/inventory/opening-stock?page=2&limit=10", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("beklenen 200, gelen %d (%v)", resp.StatusCode, body)
	}

	pagination, ok := body["pagination"].(map[string]any)
	if !ok {
		t.Fatalf("pagination alanı bekleniyordu: %v", body)
	}
	if pagination["total"].(float64) != 25 {
		t.Errorf("total 25 olmalı, gelen %v", pagination["total"])
	}
	if pagination["pages"].(float64) != 3 {
		t.Errorf("pages 3 olmalı, gelen %v", pagination["pages"])
	}
	if pagination["page"].(float64) != 2 {
		t.Errorf("page 2 olmalı, gelen %v", pagination["page"])
	}

	rows, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("data dizi olmalı: %v", body)
	}
	if len(rows) != 10 {
		t.Errorf("2. sayfada 10 satır bekleniyordu, gelen %d", len(rows))
	}

	resp, body = doJSON(t, app, "GET", "/api/inventory/opening-stock?page=3&limit=10", nil)
	rows = body["data"].([]any)
	if len(rows) != 5 {
		t.Errorf("3. sayfada 5 satır bekleniyordu, gelen %d", len(rows))
	}

	row := rows[0].(map[string]any)
	for _, field := range []string{"grn_number", "status", "supplier_name", "warehouse_name", "item_count", "total_quantity", "created_at"} {
		if _, ok := row[field]; !ok {
			t.Errorf("liste satırında %q alanı eksik: %v", field, row)
		}
	}
}

func TestListOpeningStockDefaults(t *testing.T) {
	app := setupTestApp(t)

	resp, body := doJSON(t, app, "GET", "/api/inventory/opening-stock", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("beklenen 200, gelen %d (%v)", resp.StatusCode, body)
	}

	pagination := body["pagination"].(map[string]any)
	if pagination["page"].(float64) != 1 || pagination["limit"].(float64) != 50 {
		t.Errorf("varsayılan sayfalama 1/50 olmalı, gelen: %v", pagination)
	}
	if pagination["total"].(float64) != 0 {
		t.Errorf("boş tabloda total 0 olmalı")
	}

	rows, ok := body["data"].([]any)
	if !ok || len(rows) != 0 {
		t.Errorf("boş tabloda data boş dizi olmalı, gelen: %v", body["data"])
	}
}

func TestListOpeningStockExcludesOtherGRNTypes(t *testing.T) {
	app := setupTestApp(t)
	w := seedWarehouse(t, "WH-01")
	p := seedProduct(t, "SKU-001")

	supplier := models.Supplier{Name: "Dış Tedarikçi"}
	database.DB.Create(&supplier)

	other := models.GoodsReceivedNote{
		GRNNumber:   "GRN-1000",
		GRNType:     "purchase",
		SupplierID:  supplier.ID,
		WarehouseID: w.ID,
		Status:      models.GRNStatusApproved,
	}
	database.DB.Create(&other)
	database.DB.Create(&models.GoodsReceivedNoteItem{
		GoodsReceivedNoteID: other.ID,
		WarehouseID:         w.ID,
		ProductID:           p.ID,
		Status:              models.GRNStatusApproved,
		QuantityReceived:    3,
	})

	resp, body := doJSON(t, app, "GET", "/api/inventory/opening-stock", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("beklenen 200, gelen %d", resp.StatusCode)
	}
	if body["pagination"].(map[string]any)["total"].(float64) != 0 {
		t.Errorf("satın alma GRN'leri listede görünmemeli: %v", body)
	}

	// Aynı şekilde duplicate guard da purchase kayıtlarını saymamalı.
	resp, body = doJSON(t, app, "POST", "/api/inventory/opening-stock", fiber.Map{
		"warehouse_id": w.ID,
		"items":        []fiber.Map{{"product_id": p.ID, "quantity": 2}},
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Errorf("purchase GRN'i opening stock girişini engellememeli: %d (%v)", resp.StatusCode, body)
	}
}

func TestCreateOpeningStockUnknownWarehouse(t *testing.T) {
	app := setupTestApp(t)
	p := seedProduct(t, "SKU-001")

	resp, body := doJSON(t, app, "POST", "/api/inventory/opening-stock", fiber.Map{
		"warehouse_id": 999,
		"items":        []fiber.Map{{"product_id": p.ID, "quantity": 1}},
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bilinmeyen depo için 400 bekleniyordu, gelen %d (%v)", resp.StatusCode, body)
	}
}

func TestCreateOpeningStockUnknownProduct(t *testing.T) {
	app := setupTestApp(t)
	w := seedWarehouse(t, "WH-01")

	resp, body := doJSON(t, app, "POST", "/api/inventory/opening-stock", fiber.Map{
		"warehouse_id": w.ID,
		"items":        []fiber.Map{{"product_id": 999, "quantity": 1}},
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bilinmeyen ürün için 400 bekleniyordu, gelen %d (%v)", resp.StatusCode, body)
	}
	msg := fmt.Sprint(body["error"])
	if !strings.Contains(msg, "999") && !strings.Contains(strings.ToLower(msg), "product") {
		t.Errorf("hata mesajı ürünü işaret etmeli, gelen: %q", msg)
	}
}
