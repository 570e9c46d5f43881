// cart.go - Defines the Cart and CartItem models

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartStatus is the lifecycle state of a cart. Only one cart per user may be active.
type CartStatus string

const (
	CartActive    CartStatus = "active"
	CartCompleted CartStatus = "completed"
	CartAbandoned CartStatus = "abandoned"
)

type Cart struct {
	ID     uint       `gorm:"primaryKey" json:"id"`
	UserID uint       `gorm:"not null;index" json:"userId"`
	Status CartStatus `gorm:"size:20;not null;default:'active';index" json:"status"`
	// ActiveOwnerID mirrors UserID while the cart is active and is NULL otherwise.
	// Its unique index is what keeps a user down to one active cart.
	ActiveOwnerID *uint     `gorm:"uniqueIndex" json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BeforeSave keeps ActiveOwnerID in step with Status.
func (c *Cart) BeforeSave(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = CartActive
	}
	if c.Status == CartActive {
		owner := c.UserID
		c.ActiveOwnerID = &owner
	} else {
		c.ActiveOwnerID = nil
	}
	return nil
}

type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CartID    uint            `gorm:"not null;uniqueIndex:idx_cart_product" json:"cartId"`
	ProductID uint            `gorm:"not null;uniqueIndex:idx_cart_product;index" json:"productId"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitPrice"` // Price captured when the item was first added
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
