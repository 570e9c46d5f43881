// users.go - Admin management of customer accounts and dashboard counters

package users

import (
	"context"
	"errors"
	"strings"

	"cafesantander/apperr"
	"cafesantander/auth"
	"cafesantander/models"

	"gorm.io/gorm"
)

// UpdateInput is the admin payload for editing an account. Empty fields keep their value.
type UpdateInput struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

// Stats are the dashboard counters.
type Stats struct {
	Products    int64 `json:"products"`
	Users       int64 `json:"users"`
	ActiveCarts int64 `json:"activeCarts"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns every account, newest first.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, apperr.Unexpected("failed to list users", err)
	}
	return out, nil
}

// Search matches q against email, name and last name.
func (s *Service) Search(ctx context.Context, q string) ([]models.User, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.List(ctx)
	}
	like := "%" + strings.ToLower(q) + "%"
	out := []models.User{}
	err := s.db.WithContext(ctx).
		Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Unexpected("failed to search users", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, apperr.Unexpected("failed to load user", err)
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	updates := map[string]interface{}{}
	set := func(col, v string) {
		if v = strings.TrimSpace(v); v != "" {
			updates[col] = v
		}
	}
	set("name", in.Name)
	set("last_name", in.LastName)
	set("phone", in.Phone)
	set("address", in.Address)
	if v := strings.ToLower(strings.TrimSpace(in.Email)); v != "" {
		if !auth.ValidEmail(v) {
			return models.User{}, apperr.Validation("invalid email format")
		}
		updates["email"] = v
	}
	switch role := strings.TrimSpace(in.Role); role {
	case "":
	case models.RoleUser, models.RoleAdmin:
		updates["role"] = role
	default:
		return models.User{}, apperr.Validation("role must be user or admin")
	}
	if len(updates) == 0 {
		return u, nil
	}

	if err := s.db.WithContext(ctx).Model(&u).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, apperr.Conflict("email already registered")
		}
		return models.User{}, apperr.Unexpected("failed to update user", err)
	}
	return s.Get(ctx, id)
}

// Delete removes the account with all of its carts and their lines.
func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cartIDs []uint
		if err := tx.Model(&models.Cart{}).Where("user_id = ?", id).Pluck("id", &cartIDs).Error; err != nil {
			return err
		}
		if len(cartIDs) > 0 {
			if err := tx.Where("cart_id IN ?", cartIDs).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", id).Delete(&models.Cart{}).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("user not found")
		}
		return nil
	})
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if err != nil {
		return apperr.Unexpected("failed to delete user", err)
	}
	return nil
}

// Stats counts products, accounts and active carts.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Product{}).Count(&st.Products).Error; err != nil {
		return Stats{}, apperr.Unexpected("failed to load stats", err)
	}
	if err := db.Model(&models.User{}).Count(&st.Users).Error; err != nil {
		return Stats{}, apperr.Unexpected("failed to load stats", err)
	}
	if err := db.Model(&models.Cart{}).Where("status = ?", models.CartActive).Count(&st.ActiveCarts).Error; err != nil {
		return Stats{}, apperr.Unexpected("failed to load stats", err)
	}
	return st, nil
}
