package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"bizadmin-backend/internal/audit"
	"bizadmin-backend/internal/database"
	"bizadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Beklenen kolon başlıkları (büyük/küçük harf duyarsız).
// product_sku, warehouse_code ve quantity zorunlu; kalanlar opsiyonel.
var importColumns = []string{"product_sku", "warehouse_code", "quantity", "batch_number", "unit_cost", "expiry_date", "notes"}

func mapImportColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"product_sku", "warehouse_code", "quantity"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}
	return cols, nil
}

func cellValue(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// importRowToBulkRow: SKU ve depo kodunu ID'lere çözüp bulk satırına çevirir.
func importRowToBulkRow(row []string, cols map[string]int) (BulkOpeningStockRow, error) {
	var out BulkOpeningStockRow

	sku := cellValue(row, cols, "product_sku")
	if sku == "" {
		return out, fmt.Errorf("product_sku is required")
	}
	var product models.Product
	if err := database.DB.First(&product, "sku = ?", sku).Error; err != nil {
		return out, fmt.Errorf("product not found for SKU %s", sku)
	}

	code := cellValue(row, cols, "warehouse_code")
	if code == "" {
		return out, fmt.Errorf("warehouse_code is required")
	}
	var warehouse models.Warehouse
	if err := database.DB.First(&warehouse, "code = ?", code).Error; err != nil {
		return out, fmt.Errorf("warehouse not found for code %s", code)
	}

	qtyStr := cellValue(row, cols, "quantity")
	if qtyStr == "" {
		return out, fmt.Errorf("quantity is required")
	}
	qty, err := strconv.ParseFloat(qtyStr, 64)
	if err != nil {
		return out, fmt.Errorf("quantity is not a number: %s", qtyStr)
	}

	out.ProductID = product.ID
	out.WarehouseID = warehouse.ID
	out.Quantity = qty
	out.BatchNumber = cellValue(row, cols, "batch_number")
	out.ExpiryDate = cellValue(row, cols, "expiry_date")
	out.Notes = cellValue(row, cols, "notes")

	if costStr := cellValue(row, cols, "unit_cost"); costStr != "" {
		cost, err := strconv.ParseFloat(costStr, 64)
		if err != nil {
			return out, fmt.Errorf("unit_cost is not a number: %s", costStr)
		}
		out.UnitCost = cost
	}

	return out, nil
}

// POST /api/inventory/opening-stock/import
// Multipart .xlsx yüklemesi; ilk sayfanın ilk satırı başlık kabul edilir.
// Her veri satırı bulk akışındaki satır işlemeden aynen geçer.
func ImportOpeningStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "An .xlsx file is required in the 'file' field")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not open the uploaded file")
		}
		defer file.Close()

		wb, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read the spreadsheet: "+err.Error())
		}
		defer wb.Close()

		sheet := wb.GetSheetName(0)
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read the spreadsheet: "+err.Error())
		}
		if len(rows) < 2 {
			return fiber.NewError(fiber.StatusBadRequest, "The spreadsheet has no data rows")
		}

		cols, err := mapImportColumns(rows[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		batchID := uuid.NewString()
		userID, userName, uerr := getUserInfo(c)

		results := make([]BulkRowResult, 0, len(rows)-1)
		successful, failed := 0, 0

		for i, row := range rows[1:] {
			rowNum := i + 1 // başlık satırı sayılmaz

			bulkRow, convErr := importRowToBulkRow(row, cols)
			if convErr != nil {
				failed++
				results = append(results, BulkRowResult{Row: rowNum, Success: false, Message: convErr.Error()})
				continue
			}

			res := processOpeningStockRow(rowNum, bulkRow, nil)
			if res.Success {
				successful++
				if uerr == nil {
					_ = audit.WriteLog(audit.LogOptions{
						UserID:      userID,
						UserName:    userName,
						EntityType:  "goods_received_note",
						EntityID:    res.GRNID,
						Action:      models.AuditActionCreate,
						Description: fmt.Sprintf("Opening stock GRN created (import): %s", res.GRNNumber),
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
				"total":      len(rows) - 1,
				"successful": successful,
				"failed":     failed,
				"results":    results,
			},
		})
	}
}

// GET /api/inventory/opening-stock/export
// Listeleme sorgusunun tamamını .xlsx olarak indirir.
func ExportOpeningStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := queryOpeningStockRows(0, 0)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)

		header := []interface{}{"GRN Number", "Status", "Warehouse", "Supplier", "Item Count", "Total Quantity", "Notes", "Created At"}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			values := []interface{}{
				row.GRNNumber,
				row.Status,
				row.WarehouseName,
				row.SupplierName,
				row.ItemCount,
				row.TotalQuantity,
				row.Notes,
				row.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="opening-stock.xlsx"`)
		return c.Send(buf.Bytes())
	}
}
