package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/store"
	"github.com/Emma781227/Ble-dor/validation"
)

const resetTokenBytes = 32

// PasswordService runs the forgot-password flow. There is no mail sender:
// the reset link is written to the log.
type PasswordService struct {
	users  UserRepository
	tokens ResetTokenRepository
	log    *zap.Logger
	cost   int
	now    func() time.Time
}

func NewPasswordService(users UserRepository, tokens ResetTokenRepository, log *zap.Logger) *PasswordService {
	return &PasswordService{users: users, tokens: tokens, log: log, cost: bcrypt.DefaultCost, now: time.Now}
}

// WithClock replaces the expiry clock, for tests.
func (s *PasswordService) WithClock(now func() time.Time) *PasswordService {
	s.now = now
	return s
}

func (s *PasswordService) WithBcryptCost(cost int) *PasswordService {
	s.cost = cost
	return s
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// RequestReset issues a fresh token for email, replacing older ones. An
// unknown address yields (nil, nil) so callers cannot enumerate accounts.
func (s *PasswordService) RequestReset(ctx context.Context, email string) (*models.PasswordResetToken, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Info("password reset requested for unknown email")
			return nil, nil
		}
		return nil, storageErr("load user", err)
	}

	value, err := newResetToken()
	if err != nil {
		return nil, err
	}
	t := &models.PasswordResetToken{
		Token:     value,
		UserID:    u.ID,
		ExpiresAt: s.now().Add(models.PasswordResetTTL),
	}
	if err := s.tokens.Replace(ctx, t); err != nil {
		return nil, storageErr("store reset token", err)
	}
	s.log.Info("password reset link issued",
		zap.String("user_id", u.ID),
		zap.String("link", "/reset-password?token="+value),
		zap.Time("expires_at", t.ExpiresAt))
	return t, nil
}

// Reset sets a new password and burns the token.
func (s *PasswordService) Reset(ctx context.Context, token, newPassword string) error {
	v := validation.Violations{}
	validation.Required("password", newPassword, v)
	if v.Empty() {
		checkPassword(newPassword, v)
	}
	if !v.Empty() {
		return invalid(v)
	}
	if token == "" {
		return ErrInvalidResetToken
	}

	t, err := s.tokens.Find(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return storageErr("load reset token", err)
	}
	if t.Expired(s.now()) {
		if err := s.tokens.Delete(ctx, t.ID); err != nil {
			s.log.Warn("expired reset token cleanup failed", zap.Error(err))
		}
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.tokens.Consume(ctx, t, string(hash)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return storageErr("reset password", err)
	}
	s.log.Info("password reset", zap.String("user_id", t.UserID))
	return nil
}
