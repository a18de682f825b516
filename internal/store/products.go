package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Emma781227/Ble-dor/internal/models"
)

type ProductStore struct {
	db *gorm.DB
}

func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

// GetProductsByIDs returns the products that exist among ids, in no particular order.
func (s *ProductStore) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	return products, nil
}

func (s *ProductStore) List(ctx context.Context, onlyAvailable bool) ([]models.Product, error) {
	q := s.db.WithContext(ctx)
	if onlyAvailable {
		q = q.Where("is_available = ?", true)
	}
	var products []models.Product
	if err := q.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductStore) Get(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	// gorm skips zero-valued fields that carry a default, so false must be written explicitly
	available := p.IsAvailable
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	if !available {
		if err := s.db.WithContext(ctx).Model(p).Update("is_available", false).Error; err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		p.IsAvailable = false
	}
	return nil
}

// Update writes every editable column of p.
func (s *ProductStore) Update(ctx context.Context, p *models.Product) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", p.ID).
		Select("name", "price", "category", "description", "image_url", "is_available").
		Updates(p)
	if res.Error != nil {
		return fmt.Errorf("update product %s: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProductStore) SetAvailability(ctx context.Context, id string, available bool) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_available", available)
	if res.Error != nil {
		return fmt.Errorf("set product %s availability: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the product. Favorites cascade; order lines keep their snapshot.
func (s *ProductStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
