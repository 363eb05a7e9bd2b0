package model

import (
	"time"
)

// Product represents a catalog item with its current unit price. The
// Price field always mirrors the newest entry in the product's price
// history; the catalog repository keeps the two in step.
type Product struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Code      string    `json:"code" gorm:"type:varchar(20);uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Unit      string    `json:"unit" gorm:"type:varchar(50)"`
	Category  string    `json:"category" gorm:"type:varchar(100);index"`
	Quantity  int       `json:"quantity" gorm:"default:0"`
	Price     float64   `json:"price" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
