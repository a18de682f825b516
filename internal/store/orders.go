package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Emma781227/Ble-dor/internal/models"
)

// OrderFilter narrows List. Zero fields do not filter.
type OrderFilter struct {
	From       *time.Time
	To         *time.Time
	Status     *models.OrderStatus
	CustomerID string
}

type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create inserts the order and its items in one transaction. A clash on the
// ticket number comes back as ErrDuplicate and nothing is kept.
func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// items are inserted through the has-many association in the same transaction
		return tx.Create(order).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create order %s: %w", order.TicketNumber, ErrDuplicate)
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *OrderStore) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return &order, nil
}

// UpdateStatus overwrites the status and returns the one it replaced.
// Concurrent updates are last-write-wins.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (models.OrderStatus, error) {
	var previous models.OrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Order
		if err := tx.Select("id", "status").First(&current, "id = ?", id).Error; err != nil {
			return err
		}
		previous = current.Status
		return tx.Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error
	})
	if err != nil {
		if notFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("update order %s status: %w", id, err)
	}
	return previous, nil
}

// List returns matching orders newest first, items preloaded.
func (s *OrderStore) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
