package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Conventional product categories. Category is free text; these are the
// values the storefront groups by.
const (
	CategoryBread  = "pain"
	CategoryPastry = "viennoiserie"
	CategoryDrink  = "boisson"
	CategorySnack  = "snack"
)

// Product is a catalog entry. Price is the current selling price; orders
// copy it at creation time and never read it again.
type Product struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Category    string          `gorm:"size:50;not null;index" json:"category"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string          `gorm:"size:500" json:"image_url,omitempty"`
	IsAvailable bool            `gorm:"not null;default:true;index" json:"is_available"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	assignID(&p.ID)
	return nil
}
