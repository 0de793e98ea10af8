package inventory

import (
	"errors"
	"fmt"
	"time"

	"bizadmin-backend/internal/database"
	"bizadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// validationError / conflictError: handler'lar bunları 400/409'a çevirir,
// diğer her şey 500 olarak yüzeye çıkar.
type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

type conflictError struct{ msg string }

func (e *conflictError) Error() string { return e.msg }

type openingStockItem struct {
	ProductID   uint
	Quantity    float64
	BatchNumber string
	UnitCost    float64
	ExpiryDate  *time.Time
}

type openingStockInput struct {
	WarehouseID uint
	Notes       string
	CreatedByID *uint
	Items       []openingStockItem
}

// createOpeningStockGRN: başlık + satırları TEK transaction içinde oluşturur;
// satır insert'i başarısız olursa başlık da geri alınır. Çakışma kontrolü
// transaction içinde tekrarlanır, iki eşzamanlı istek aynı ikili için geçse
// bile onay aşamasındaki partial unique index son settir.
func createOpeningStockGRN(in openingStockInput) (*models.GoodsReceivedNote, error) {
	var created models.GoodsReceivedNote

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var warehouse models.Warehouse
		if err := tx.First(&warehouse, "id = ?", in.WarehouseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &validationError{msg: fmt.Sprintf("Warehouse not found (ID: %d)", in.WarehouseID)}
			}
			return err
		}

		for _, item := range in.Items {
			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &validationError{msg: fmt.Sprintf("Product not found (ID: %d)", item.ProductID)}
				}
				return err
			}

			exists, err := openingStockExists(tx, in.WarehouseID, item.ProductID)
			if err != nil {
				return err
			}
			if exists {
				return &conflictError{msg: duplicateMessage(tx, item.ProductID)}
			}
		}

		supplier, err := resolveOpeningStockSupplier(tx)
		if err != nil {
			return err
		}

		number, err := nextGRNNumber(tx, time.Now())
		if err != nil {
			return err
		}

		header := models.GoodsReceivedNote{
			GRNNumber:   number,
			GRNType:     models.GRNTypeOpeningStock,
			SupplierID:  supplier.ID,
			WarehouseID: in.WarehouseID,
			Status:      models.GRNStatusDraft,
			Notes:       in.Notes,
			CreatedByID: in.CreatedByID,
		}
		if err := tx.Create(&header).Error; err != nil {
			return err
		}

		rows := make([]models.GoodsReceivedNoteItem, 0, len(in.Items))
		for _, item := range in.Items {
			rows = append(rows, models.GoodsReceivedNoteItem{
				GoodsReceivedNoteID: header.ID,
				WarehouseID:         in.WarehouseID,
				ProductID:           item.ProductID,
				Status:              models.GRNStatusDraft,
				QuantityReceived:    item.Quantity,
				BatchNumber:         item.BatchNumber,
				UnitCost:            item.UnitCost,
				ExpiryDate:          item.ExpiryDate,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		created = header
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// mapCreateError: servis hatalarını HTTP hatalarına çevirir. Bilinmeyen
// hatalar ham mesajla 500 olarak döner.
func mapCreateError(err error) error {
	var ve *validationError
	if errors.As(err, &ve) {
		return fiber.NewError(fiber.StatusBadRequest, ve.msg)
	}
	var ce *conflictError
	if errors.As(err, &ce) {
		return fiber.NewError(fiber.StatusConflict, ce.msg)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fiber.NewError(fiber.StatusConflict, "A record with the same unique value already exists")
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
