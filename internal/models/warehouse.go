package models

import "time"

type Warehouse struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"size:50;uniqueIndex;not null"`
	Name      string `gorm:"size:100;not null"`
	Address   string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
