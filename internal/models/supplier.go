package models

import "time"

// OpeningStockSupplierName: opening stock GRN'lerinin bağlandığı dahili
// tedarikçi kaydının adı. Tekil kayıt, isim üzerindeki unique index ile korunur.
const OpeningStockSupplierName = "Opening Stock"

type Supplier struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:200;not null;uniqueIndex"`
	ContactPerson string `gorm:"size:100"`
	Phone         string `gorm:"size:50"`
	Email         string `gorm:"size:100"`
	Address       string `gorm:"size:255"`
	IsInternal    bool   `gorm:"not null;default:false"` // sistem tarafından oluşturulan kayıtlar
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
