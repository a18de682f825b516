package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Emma781227/Ble-dor/internal/models"
)

type FavoriteStore struct {
	db *gorm.DB
}

func NewFavoriteStore(db *gorm.DB) *FavoriteStore {
	return &FavoriteStore{db: db}
}

// Add is idempotent: an existing (user, product) pair is left untouched.
func (s *FavoriteStore) Add(ctx context.Context, userID, productID string) error {
	fav := models.Favorite{UserID: userID, ProductID: productID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&fav).Error
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// Remove reports whether a row was deleted.
func (s *FavoriteStore) Remove(ctx context.Context, userID, productID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return false, fmt.Errorf("remove favorite: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *FavoriteStore) Exists(ctx context.Context, userID, productID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return n > 0, nil
}

// List returns the user's favorites newest first with products preloaded.
func (s *FavoriteStore) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	var favs []models.Favorite
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favs).Error
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favs, nil
}
