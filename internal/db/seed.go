package db

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Emma781227/Ble-dor/internal/models"
)

type seedUser struct {
	email, name, password string
	role                  models.Role
}

var seedUsers = []seedUser{
	{"owner@bledor.local", "Propriétaire", "admin123", models.RoleOwner},
	{"manager@bledor.local", "Gérant", "manager123", models.RoleManager},
	{"client@bledor.local", "Client", "client123", models.RoleClient},
}

var seedProducts = []models.Product{
	{Name: "Baguette tradition", Price: decimal.RequireFromString("1.20"), Category: models.CategoryBread},
	{Name: "Pain de campagne", Price: decimal.RequireFromString("3.50"), Category: models.CategoryBread},
	{Name: "Croissant", Price: decimal.RequireFromString("1.10"), Category: models.CategoryPastry},
	{Name: "Pain au chocolat", Price: decimal.RequireFromString("1.30"), Category: models.CategoryPastry},
	{Name: "Café", Price: decimal.RequireFromString("1.50"), Category: models.CategoryDrink},
	{Name: "Jus d'orange", Price: decimal.RequireFromString("2.80"), Category: models.CategoryDrink},
	{Name: "Sandwich jambon-beurre", Price: decimal.RequireFromString("4.90"), Category: models.CategorySnack},
}

// Seed inserts the demo accounts and a starter catalog. Existing rows are left alone.
func Seed(gdb *gorm.DB, log *zap.Logger) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		for _, su := range seedUsers {
			var existing models.User
			err := tx.Where("email = ?", su.email).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("lookup seed user %s: %w", su.email, err)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash seed password: %w", err)
			}
			u := models.User{Email: su.email, Name: su.name, PasswordHash: string(hash), Role: su.role}
			if err := tx.Create(&u).Error; err != nil {
				return fmt.Errorf("create seed user %s: %w", su.email, err)
			}
			log.Info("seeded user", zap.String("email", su.email), zap.String("role", string(su.role)))
		}

		for _, sp := range seedProducts {
			var count int64
			if err := tx.Model(&models.Product{}).Where("name = ?", sp.Name).Count(&count).Error; err != nil {
				return fmt.Errorf("lookup seed product %s: %w", sp.Name, err)
			}
			if count > 0 {
				continue
			}
			p := sp
			p.IsAvailable = true
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("create seed product %s: %w", sp.Name, err)
			}
		}
		return nil
	})
}
