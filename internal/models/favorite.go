package models

import (
	"time"

	"gorm.io/gorm"
)

// Favorite links a user to a product they bookmarked. The pair is unique.
type Favorite struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_favorites_user_product" json:"user_id"`
	ProductID string    `gorm:"size:36;not null;uniqueIndex:idx_favorites_user_product" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

func (f *Favorite) BeforeCreate(_ *gorm.DB) error {
	assignID(&f.ID)
	return nil
}

// GetUserID lets ownership policies check favorites.
func (f *Favorite) GetUserID() string {
	return f.UserID
}
