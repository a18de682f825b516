package models

import (
	"time"

	"gorm.io/gorm"
)

// PasswordResetTTL is how long a reset link stays valid.
const PasswordResetTTL = time.Hour

// PasswordResetToken is a single-use credential for the forgot-password flow.
type PasswordResetToken struct {
	ID        string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
	Token     string    `gorm:"size:128;uniqueIndex;not null"`
	UserID    string    `gorm:"size:36;not null;index"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `gorm:"not null"`
}

func (t *PasswordResetToken) BeforeCreate(_ *gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// Expired reports whether the token is past its expiry at now.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
