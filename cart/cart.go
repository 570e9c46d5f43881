// cart.go - Read models and change notifications for the cart service

package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line is one cart item joined with its product.
type Line struct {
	ID        uint            `json:"id"` // Cart item id, the handle used by update/remove
	ProductID uint            `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"price"` // Snapshot taken when the product was first added
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"-"`
}

// Contents is the caller's active cart as returned by GET /cart.
type Contents struct {
	CartID uint            `json:"cartId"`
	Items  []Line          `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

// Count is the sum of all quantities.
func (c Contents) Count() int {
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

// Summary is one row of the admin cart listing.
type Summary struct {
	ID        uint            `json:"id"`
	UserID    uint            `json:"userId"`
	Status    string          `json:"status"`
	UserName  string          `json:"userName"`
	UserEmail string          `json:"userEmail"`
	ItemCount int64           `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Detail is a single cart with its lines, regardless of owner.
type Detail struct {
	Summary
	Items []Line `json:"items"`
}

// Notifier is told about the new contents of a user's cart after every change.
type Notifier interface {
	CartChanged(userID uint, contents Contents)
}

// Notifiers fans a change out to several notifiers.
type Notifiers []Notifier

func (ns Notifiers) CartChanged(userID uint, contents Contents) {
	for _, n := range ns {
		if n != nil {
			n.CartChanged(userID, contents)
		}
	}
}

// total recomputes line subtotals and the cart total from the rows just read.
func total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for i := range lines {
		lines[i].Subtotal = lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity))).Round(2)
		sum = sum.Add(lines[i].Subtotal)
	}
	return sum
}
