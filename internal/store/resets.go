package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Emma781227/Ble-dor/internal/models"
)

type ResetTokenStore struct {
	db *gorm.DB
}

func NewResetTokenStore(db *gorm.DB) *ResetTokenStore {
	return &ResetTokenStore{db: db}
}

// Replace drops every token of t.UserID and inserts t, atomically.
func (s *ResetTokenStore) Replace(ctx context.Context, t *models.PasswordResetToken) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", t.UserID).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(t).Error
	})
	if err != nil {
		return fmt.Errorf("replace reset token: %w", err)
	}
	return nil
}

func (s *ResetTokenStore) Find(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	return &t, nil
}

func (s *ResetTokenStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.PasswordResetToken{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}

// Consume sets the new password hash and deletes the token in one transaction.
func (s *ResetTokenStore) Consume(ctx context.Context, t *models.PasswordResetToken, passwordHash string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", t.UserID).Update("password_hash", passwordHash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Delete(&models.PasswordResetToken{}, "id = ?", t.ID).Error
	})
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	return nil
}

// CountForUser is used by tests to check the one-live-token rule.
func (s *ResetTokenStore) CountForUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.PasswordResetToken{}).Where("user_id = ?", userID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count reset tokens: %w", err)
	}
	return n, nil
}
