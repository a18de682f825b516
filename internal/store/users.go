package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Emma781227/Ble-dor/internal/models"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

// GetByEmail normalizes email before the lookup.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&u).Error
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// RoleOf returns only the role column, for per-request authorization.
func (s *UserStore) RoleOf(ctx context.Context, id string) (models.Role, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Select("id", "role").First(&u, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get role of %s: %w", id, err)
	}
	return u.Role, nil
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", u.Email, ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update writes the given columns of u. Email is normalized first.
func (s *UserStore) Update(ctx context.Context, u *models.User, columns ...string) error {
	u.Email = models.NormalizeEmail(u.Email)
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).Select(columns).Updates(u)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return fmt.Errorf("update user %s: %w", u.ID, ErrDuplicate)
		}
		return fmt.Errorf("update user %s: %w", u.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Where("role = ?", role).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list %s users: %w", role, err)
	}
	return users, nil
}

// DeleteWithRole deletes id only if it currently holds role.
func (s *UserStore) DeleteWithRole(ctx context.Context, id string, role models.Role) error {
	res := s.db.WithContext(ctx).Where("id = ? AND role = ?", id, role).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists backs the session verifier.
func (s *UserStore) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check user %s: %w", id, err)
	}
	return n > 0, nil
}
