package database

import (
	"log"

	"bizadmin-backend/internal/config"
	"bizadmin-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true, // unique ihlallerini gorm.ErrDuplicatedKey olarak almak için
	})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Warehouse{},
		&models.Product{},
		&models.Supplier{},
		&models.NumberSequence{},
		&models.GoodsReceivedNote{},
		&models.GoodsReceivedNoteItem{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	// Approved opening stock için (warehouse, product) tekilliği.
	// AutoMigrate partial index üretemediği için manuel ekleniyor.
	// Satırlardaki status kolonu başlıktan kopyalandığı için index bu tabloda kurulabiliyor;
	// onay akışı başlık ve satır status'lerini birlikte günceller.
	if err := DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_opening_stock_approved
		ON goods_received_note_items (warehouse_id, product_id)
		WHERE status = 'approved'
	`).Error; err != nil {
		log.Printf("Partial unique index eklenirken hata (zaten var olabilir): %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
