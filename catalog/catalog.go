// catalog.go - Product catalog: public listing and admin CRUD

package catalog

import (
	"context"
	"errors"
	"strings"

	"cafesantander/apperr"
	"cafesantander/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductInput is the admin payload for creating or editing a product.
// Available is a pointer so an edit can leave it unchanged.
type ProductInput struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available *bool           `json:"available"`
	Image     string          `json:"image"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("name is required")
	}
	if !in.Price.IsPositive() {
		return apperr.Validation("price must be greater than zero")
	}
	return nil
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns the catalog ordered by name. onlyAvailable hides withdrawn products.
func (s *Service) List(ctx context.Context, onlyAvailable bool) ([]models.Product, error) {
	products := []models.Product{}
	q := s.db.WithContext(ctx).Order("name, id")
	if onlyAvailable {
		q = q.Where("available = ?", true)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, apperr.Unexpected("failed to list products", err)
	}
	return products, nil
}

// Search matches q against product names.
func (s *Service) Search(ctx context.Context, q string) ([]models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.List(ctx, false)
	}
	products := []models.Product{}
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%").
		Order("name, id").
		Find(&products).Error
	if err != nil {
		return nil, apperr.Unexpected("failed to search products", err)
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, apperr.NotFound("product not found")
	}
	if err != nil {
		return models.Product{}, apperr.Unexpected("failed to load product", err)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	if err := in.validate(); err != nil {
		return models.Product{}, err
	}
	p := models.Product{
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price.Round(2),
		Available: in.Available == nil || *in.Available,
		Image:     strings.TrimSpace(in.Image),
	}
	available := p.Available
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		if !available { // A zero bool is replaced by the column default on insert
			return tx.Model(&p).Update("available", false).Error
		}
		return nil
	})
	if err != nil {
		return models.Product{}, apperr.Unexpected("failed to create product", err)
	}
	p.Available = available
	return p, nil
}

// Update replaces name, price and image and optionally the availability flag.
// Existing cart lines keep the price they were added with.
func (s *Service) Update(ctx context.Context, id uint, in ProductInput) (models.Product, error) {
	if err := in.validate(); err != nil {
		return models.Product{}, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	updates := map[string]interface{}{
		"name":  strings.TrimSpace(in.Name),
		"price": in.Price.Round(2),
		"image": strings.TrimSpace(in.Image),
	}
	if in.Available != nil {
		updates["available"] = *in.Available
	}
	if err := s.db.WithContext(ctx).Model(&p).Updates(updates).Error; err != nil {
		return models.Product{}, apperr.Unexpected("failed to update product", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a product together with the cart lines that reference it.
func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("product not found")
		}
		return tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error
	})
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if err != nil {
		return apperr.Unexpected("failed to delete product", err)
	}
	return nil
}
