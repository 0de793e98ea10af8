package models

import (
	"time"

	"gorm.io/gorm"
)

type GRNStatus string

const (
	GRNStatusDraft    GRNStatus = "draft"
	GRNStatusApproved GRNStatus = "approved"
)

const GRNTypeOpeningStock = "opening_stock"

// GoodsReceivedNote: mal kabul fişi başlığı. Opening stock girişleri de
// supplier olarak dahili "Opening Stock" kaydını kullanan birer GRN'dir.
type GoodsReceivedNote struct {
	ID          uint   `gorm:"primaryKey"`
	GRNNumber   string `gorm:"column:grn_number;size:50;uniqueIndex;not null"`
	GRNType     string `gorm:"column:grn_type;size:30;index;not null"`
	SupplierID  uint   `gorm:"index;not null"`
	Supplier    Supplier
	WarehouseID uint `gorm:"index;not null"`
	Warehouse   Warehouse
	Status      GRNStatus `gorm:"size:20;index;not null;default:'draft'"`
	Notes       string    `gorm:"size:500"`
	CreatedByID *uint
	CreatedBy   *User `gorm:"foreignKey:CreatedByID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Items []GoodsReceivedNoteItem `gorm:"foreignKey:GoodsReceivedNoteID;constraint:OnDelete:CASCADE"`
}

// GoodsReceivedNoteItem: fişteki her ürün satırı.
// WarehouseID ve Status başlıktan kopyalanır; approved opening stock için
// (warehouse_id, product_id) unique partial index bu tablo üzerinde kurulabilsin diye.
// Onay akışı başlığı ve satırları birlikte günceller.
type GoodsReceivedNoteItem struct {
	ID                  uint `gorm:"primaryKey"`
	GoodsReceivedNoteID uint `gorm:"index;not null"`
	WarehouseID         uint `gorm:"index;not null"`
	ProductID           uint `gorm:"index;not null"`
	Product             Product
	Status              GRNStatus `gorm:"size:20;index;not null;default:'draft'"`
	QuantityReceived    float64   `gorm:"not null"`
	BatchNumber         string    `gorm:"size:100"`
	UnitCost            float64   `gorm:"not null;default:0"`
	ExpiryDate          *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
