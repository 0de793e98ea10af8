package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Hangi kullanıcı? (sistem işlemlerinde 0)
	UserID   uint   `json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"` // Kullanıcı adı (denormalize)

	// Hangi entity? (ör: "goods_received_note", "supplier", "warehouse", "product")
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`

	// İşlem tipi: create/update/delete
	Action AuditAction `gorm:"size:20" json:"action"`

	// Opsiyonel açıklama (küçük bir özet)
	Description string `gorm:"size:255" json:"description"`

	// Toplu import işlemlerinde aynı yüklemeden gelen kayıtları gruplar
	BatchID string `gorm:"size:36;index" json:"batch_id"`

	// Önceki ve sonraki hal (JSON)
	BeforeData string `gorm:"type:jsonb" json:"before_data"`
	AfterData  string `gorm:"type:jsonb" json:"after_data"`
}
