package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role is the coarse access level of a user.
type Role string

const (
	RoleClient  Role = "CLIENT"
	RoleManager Role = "MANAGER"
	RoleOwner   Role = "OWNER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleManager, RoleOwner:
		return true
	}
	return false
}

// ParseRole is case-sensitive, like every other enum in this package.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User is an account of any role. Email is stored lowercase.
type User struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	Name           string    `gorm:"size:255" json:"name,omitempty"`
	Phone          string    `gorm:"size:50" json:"phone,omitempty"`
	Role           Role      `gorm:"size:20;not null;default:'CLIENT';index" json:"role"`
	MarketingOptIn bool      `gorm:"not null;default:false" json:"marketing_opt_in"`
}

// BeforeCreate assigns an id and normalizes the email.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	assignID(&u.ID)
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = RoleClient
	}
	return nil
}

// NormalizeEmail trims and lowercases an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
