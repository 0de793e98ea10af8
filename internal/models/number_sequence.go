package models

// NumberSequence: belge numarası üretimi için sayaç satırı.
// Değer, belgeyi oluşturan transaction içinde atomik UPDATE ile artırılır;
// COUNT(*) tabanlı üretimdeki yarış bu şekilde kapatılır.
type NumberSequence struct {
	Name  string `gorm:"primaryKey;size:50"`
	Value int64  `gorm:"not null;default:0"`
}
