package models

import "time"

type Product struct {
	ID        uint   `gorm:"primaryKey"`
	SKU       string `gorm:"column:sku;size:50;uniqueIndex;not null"` // stok kodu, çakışma mesajlarında gösterilir
	Name      string `gorm:"size:150;not null;unique"`
	Unit      string `gorm:"size:20;not null"` // kg, adet, koli vs.
	CreatedAt time.Time
	UpdatedAt time.Time
}
