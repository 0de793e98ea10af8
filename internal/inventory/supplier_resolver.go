package inventory

import (
	"errors"

	"bizadmin-backend/internal/models"

	"gorm.io/gorm"
)

// resolveOpeningStockSupplier: dahili "Opening Stock" tedarikçisini döndürür,
// yoksa placeholder iletişim bilgileriyle oluşturur. İsim üzerindeki unique
// index sayesinde eşzamanlı ilk çağrılar ikinci bir kayıt üretemez;
// çakışmada mevcut kayıt tekrar okunur.
func resolveOpeningStockSupplier(tx *gorm.DB) (*models.Supplier, error) {
	var supplier models.Supplier
	err := tx.Where(models.Supplier{Name: models.OpeningStockSupplierName}).
		Attrs(models.Supplier{
			ContactPerson: "System",
			Email:         "system@internal",
			IsInternal:    true,
		}).
		FirstOrCreate(&supplier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = tx.Where("name = ?", models.OpeningStockSupplierName).First(&supplier).Error
		}
		if err != nil {
			return nil, err
		}
	}
	return &supplier, nil
}
