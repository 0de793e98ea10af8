package inventory

import (
	"fmt"

	"bizadmin-backend/internal/models"

	"gorm.io/gorm"
)

// openingStockExists: (warehouse, product) ikilisi için onaylanmış, silinmemiş
// bir opening stock GRN satırı var mı? Taslak GRN'ler engellemez; onay
// aşamasındaki tekillik uq_opening_stock_approved index'i ile garanti edilir.
func openingStockExists(db *gorm.DB, warehouseID, productID uint) (bool, error) {
	var count int64
	err := db.Model(&models.GoodsReceivedNoteItem{}).
		Joins("JOIN goods_received_notes grn ON grn.id = goods_received_note_items.goods_received_note_id").
		Where("goods_received_note_items.warehouse_id = ? AND goods_received_note_items.product_id = ?",
			warehouseID, productID).
		Where("grn.grn_type = ? AND grn.status = ? AND grn.deleted_at IS NULL",
			models.GRNTypeOpeningStock, models.GRNStatusApproved).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Çakışma mesajında ürünü stok koduyla göster
func duplicateMessage(db *gorm.DB, productID uint) string {
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err == nil {
		return fmt.Sprintf("Opening stock already exists for product %s in this warehouse", product.SKU)
	}
	return fmt.Sprintf("Opening stock already exists for product #%d in this warehouse", productID)
}
