// admin.go - Cart inspection and deletion for administrators

package cart

import (
	"context"
	"errors"

	"cafesantander/apperr"
	"cafesantander/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// summaries selects carts with owner, item count and total. Left joins keep empty carts at 0.
func summaries(tx *gorm.DB) *gorm.DB {
	return tx.Table("carts AS c").
		Select(`c.id, c.user_id, c.status, c.created_at, c.updated_at,
			COALESCE(u.name, '') AS user_name, COALESCE(u.email, '') AS user_email,
			COUNT(ci.id) AS item_count,
			COALESCE(SUM(ci.unit_price * ci.quantity), 0) AS total`).
		Joins("LEFT JOIN users u ON u.id = c.user_id").
		Joins("LEFT JOIN cart_items ci ON ci.cart_id = c.id").
		Group("c.id, c.user_id, c.status, c.created_at, c.updated_at, u.name, u.email")
}

// ListAllCarts returns every cart, newest first.
func (s *Service) ListAllCarts(ctx context.Context) ([]Summary, error) {
	out := []Summary{}
	if err := summaries(s.db.WithContext(ctx)).Order("c.created_at DESC, c.id DESC").Scan(&out).Error; err != nil {
		return nil, apperr.Unexpected("failed to list carts", err)
	}
	for i := range out {
		out[i].Total = out[i].Total.Round(2)
	}
	return out, nil
}

// GetCartByID returns one cart with its lines, whoever owns it.
func (s *Service) GetCartByID(ctx context.Context, cartID uint) (Detail, error) {
	if cartID == 0 {
		return Detail{}, apperr.Validation("cart id is required")
	}
	var out Detail
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []Summary
		if err := summaries(tx).Where("c.id = ?", cartID).Scan(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperr.NotFound("cart not found")
		}
		lines, err := cartLines(tx, cartID)
		if err != nil {
			return err
		}
		out = Detail{Summary: rows[0], Items: lines}
		out.Total = total(lines)
		return nil
	})
	if err != nil {
		return Detail{}, wrap(err, "failed to load cart")
	}
	return out, nil
}

// DeleteCart removes a cart's lines and then the cart itself.
func (s *Service) DeleteCart(ctx context.Context, cartID uint) error {
	if cartID == 0 {
		return apperr.Validation("cart id is required")
	}
	var deleted models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&deleted, cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("cart not found")
			}
			return err
		}
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Cart{}, cartID).Error
	})
	if err != nil {
		return wrap(err, "failed to delete cart")
	}
	if deleted.Status == models.CartActive {
		// The owner's next read lazily creates a fresh cart
		s.changed(deleted.UserID, Contents{Items: []Line{}, Total: decimal.Zero})
	}
	return nil
}
