package inventory

import (
	"fmt"
	"time"

	"bizadmin-backend/internal/models"

	"gorm.io/gorm"
)

const openingStockSequence = "opening_stock_grn"

// nextGRNNumber: "OPEN-<epoch_millis>-<sıra>" formatında numara üretir.
// Sıra değeri, GRN'i oluşturan transaction içinde sayaç satırının atomik
// UPDATE'i ile alınır; transaction geri alınırsa numara da yanmaz.
// grn_number üzerindeki unique index son güvencedir.
func nextGRNNumber(tx *gorm.DB, now time.Time) (string, error) {
	seq := models.NumberSequence{Name: openingStockSequence}
	if err := tx.Where(models.NumberSequence{Name: openingStockSequence}).
		FirstOrCreate(&seq).Error; err != nil {
		return "", err
	}

	// UPDATE satır kilidini alır; eşzamanlı transaction'lar burada sıralanır
	if err := tx.Model(&models.NumberSequence{}).
		Where("name = ?", openingStockSequence).
		Update("value", gorm.Expr("value + 1")).Error; err != nil {
		return "", err
	}

	if err := tx.First(&seq, "name = ?", openingStockSequence).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("OPEN-%d-%d", now.UnixMilli(), seq.Value), nil
}
