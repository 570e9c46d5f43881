// product.go - Defines the catalog Product model

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as plain JSON numbers, matching what the SPA expects.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:150;not null;index" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Available bool            `gorm:"not null;default:true" json:"available"`
	Image     string          `gorm:"size:255" json:"image"` // Path under /public or absolute URL
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
