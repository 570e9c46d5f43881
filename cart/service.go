// service.go - Per-user cart operations: resolve-or-create, add, update, remove, clear

package cart

import (
	"context"
	"errors"
	"time"

	"cafesantander/apperr"
	"cafesantander/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service owns the carts and cart_items tables.
type Service struct {
	db     *gorm.DB
	notify Notifier
}

// NewService returns a cart service. notify may be nil.
func NewService(db *gorm.DB, notify Notifier) *Service {
	return &Service{db: db, notify: notify}
}

// GetOrCreateActiveCart returns the id of the user's active cart, creating it on first use.
// The unique index on carts.active_owner_id makes concurrent first calls converge on one row.
func (s *Service) GetOrCreateActiveCart(ctx context.Context, userID uint) (uint, error) {
	if userID == 0 {
		return 0, apperr.Validation("user is required")
	}
	var cartID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cartID, err = activeCart(tx, userID)
		return err
	})
	if err != nil {
		return 0, apperr.Unexpected("failed to resolve cart", err)
	}
	return cartID, nil
}

// activeCart resolves or creates the active cart inside tx.
func activeCart(tx *gorm.DB, userID uint) (uint, error) {
	var c models.Cart
	err := tx.Where("user_id = ? AND status = ?", userID, models.CartActive).Take(&c).Error
	if err == nil {
		return c.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	// STEP 1: Insert, letting a concurrent winner keep its row
	fresh := models.Cart{UserID: userID, Status: models.CartActive}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "active_owner_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return 0, err
	}

	// STEP 2: Reselect with a locking read so the committed winner is visible
	c = models.Cart{}
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND status = ?", userID, models.CartActive).Take(&c).Error
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

// GetCartContents returns the active cart with its lines and a freshly computed total.
func (s *Service) GetCartContents(ctx context.Context, userID uint) (Contents, error) {
	if userID == 0 {
		return Contents{}, apperr.Validation("user is required")
	}
	var out Contents
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = contents(tx, userID)
		return err
	})
	if err != nil {
		return Contents{}, apperr.Unexpected("failed to load cart", err)
	}
	return out, nil
}

func contents(tx *gorm.DB, userID uint) (Contents, error) {
	cartID, err := activeCart(tx, userID)
	if err != nil {
		return Contents{}, err
	}
	lines, err := cartLines(tx, cartID)
	if err != nil {
		return Contents{}, err
	}
	return Contents{CartID: cartID, Items: lines, Total: total(lines)}, nil
}

func cartLines(tx *gorm.DB, cartID uint) ([]Line, error) {
	lines := []Line{}
	err := tx.Table("cart_items AS ci").
		Select("ci.id, ci.product_id, p.name, p.image, ci.unit_price, ci.quantity").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("ci.cart_id = ?", cartID).
		Order("ci.id").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].UnitPrice = lines[i].UnitPrice.Round(2)
	}
	return lines, nil
}

// AddItem adds quantity units of productID to the active cart. An existing line for the
// product is incremented and keeps its original unit price.
func (s *Service) AddItem(ctx context.Context, userID, productID uint, quantity int) (Contents, error) {
	if userID == 0 {
		return Contents{}, apperr.Validation("user is required")
	}
	if productID == 0 {
		return Contents{}, apperr.Validation("productId is required")
	}
	if quantity <= 0 {
		return Contents{}, apperr.Validation("quantity must be a positive number")
	}

	var out Contents
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Select("id", "price").Take(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product not found")
			}
			return err
		}

		cartID, err := activeCart(tx, userID)
		if err != nil {
			return err
		}

		item := models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity, UnitPrice: product.Price}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + ?", quantity),
				"updated_at": time.Now(),
			}),
		}).Create(&item).Error
		if err != nil {
			return err
		}

		out, err = contents(tx, userID)
		return err
	})
	if err != nil {
		return Contents{}, wrap(err, "failed to add item")
	}
	s.changed(userID, out)
	return out, nil
}

// UpdateItemQuantity sets the quantity of one of the caller's lines.
// A quantity of zero or less removes the line.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID uint, quantity int) (Contents, error) {
	if userID == 0 || itemID == 0 {
		return Contents{}, apperr.Validation("item is required")
	}

	var out Contents
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownItem(tx, userID, itemID); err != nil {
			return err
		}
		var err error
		if quantity <= 0 {
			err = tx.Delete(&models.CartItem{}, itemID).Error
		} else {
			err = tx.Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity).Error
		}
		if err != nil {
			return err
		}
		out, err = contents(tx, userID)
		return err
	})
	if err != nil {
		return Contents{}, wrap(err, "failed to update item")
	}
	s.changed(userID, out)
	return out, nil
}

// RemoveItem deletes one of the caller's lines. Removing it twice yields NotFound.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID uint) (Contents, error) {
	if userID == 0 || itemID == 0 {
		return Contents{}, apperr.Validation("item is required")
	}

	var out Contents
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownItem(tx, userID, itemID); err != nil {
			return err
		}
		if err := tx.Delete(&models.CartItem{}, itemID).Error; err != nil {
			return err
		}
		var err error
		out, err = contents(tx, userID)
		return err
	})
	if err != nil {
		return Contents{}, wrap(err, "failed to remove item")
	}
	s.changed(userID, out)
	return out, nil
}

// ownItem fails with NotFound if itemID is not in an active cart and Forbidden if it
// sits in an active cart that belongs to someone else.
func ownItem(tx *gorm.DB, userID, itemID uint) error {
	var owners []uint
	err := tx.Table("cart_items AS ci").
		Joins("JOIN carts c ON c.id = ci.cart_id AND c.status = ?", models.CartActive).
		Where("ci.id = ?", itemID).
		Limit(1).
		Pluck("c.user_id", &owners).Error
	if err != nil {
		return err
	}
	if len(owners) == 0 {
		return apperr.NotFound("cart item not found")
	}
	if owners[0] != userID {
		return apperr.Forbidden("cart item belongs to another user")
	}
	return nil
}

// ClearCart empties the active cart. Without an active cart it does nothing.
func (s *Service) ClearCart(ctx context.Context, userID uint) error {
	if userID == 0 {
		return apperr.Validation("user is required")
	}
	var cleared bool
	var cartID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Cart
		err := tx.Where("user_id = ? AND status = ?", userID, models.CartActive).Take(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		cleared, cartID = true, c.ID
		return tx.Where("cart_id = ?", c.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return apperr.Unexpected("failed to clear cart", err)
	}
	if cleared {
		s.changed(userID, Contents{CartID: cartID, Items: []Line{}, Total: decimal.Zero})
	}
	return nil
}

func (s *Service) changed(userID uint, c Contents) {
	if s.notify != nil {
		s.notify.CartChanged(userID, c)
	}
}

// wrap keeps classified errors as they are and marks everything else unexpected.
func wrap(err error, msg string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Unexpected(msg, err)
}
