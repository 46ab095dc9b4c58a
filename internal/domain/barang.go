package domain

import "time"

// Barang Model
type Barang struct {
	ID        uint      `gorm:"primaryKey" json:"id"`              // Primary key
	Nama      string    `gorm:"not null" json:"nama"`              // Item name
	Harga     float64   `gorm:"not null" json:"harga"`             // Item price
	Deskripsi string    `json:"deskripsi"`                         // Optional description
	Stok      int       `gorm:"not null;default:0" json:"stok"`    // Stock quantity, defaults to 0
	ImageURL  *string   `gorm:"column:image_url" json:"image_url"` // Public path of the uploaded image, if any
	CreatedAt time.Time `json:"created_at"`                        // Timestamp of creation, set once
}

// TableName keeps the table name singular to match the existing schema
func (Barang) TableName() string {
	return "barang"
}
