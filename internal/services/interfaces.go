package services

import (
	"context"

	"github.com/Emma781227/Ble-dor/gate"
	"github.com/Emma781227/Ble-dor/internal/audit"
	"github.com/Emma781227/Ble-dor/internal/events"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/store"
)

// Authorizer is satisfied by *gate.Gate[models.Actor].
type Authorizer interface {
	Authorize(ctx context.Context, actor models.Actor, action gate.Action, resourceType string, resource any) error
	Allows(ctx context.Context, actor models.Actor, action gate.Action, resourceType string) bool
}

// ProductLookup returns only the products that exist among ids.
type ProductLookup interface {
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

// OrderRepository persists orders. Create must be atomic and report a ticket
// clash as store.ErrDuplicate.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (models.OrderStatus, error)
	List(ctx context.Context, filter store.OrderFilter) ([]models.Order, error)
}

type UserLookup interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type ProductRepository interface {
	ProductLookup
	List(ctx context.Context, onlyAvailable bool) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	SetAvailability(ctx context.Context, id string, available bool) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	UserLookup
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User, columns ...string) error
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	DeleteWithRole(ctx context.Context, id string, role models.Role) error
}

type FavoriteRepository interface {
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) (bool, error)
	Exists(ctx context.Context, userID, productID string) (bool, error)
	List(ctx context.Context, userID string) ([]models.Favorite, error)
}

type ResetTokenRepository interface {
	Replace(ctx context.Context, t *models.PasswordResetToken) error
	Find(ctx context.Context, token string) (*models.PasswordResetToken, error)
	Delete(ctx context.Context, id string) error
	Consume(ctx context.Context, t *models.PasswordResetToken, passwordHash string) error
}

// OrderCache is a read-through cache of single orders. A miss is (nil, false, nil).
type OrderCache interface {
	GetOrder(ctx context.Context, id string) (*models.Order, bool, error)
	SetOrder(ctx context.Context, order *models.Order) error
	InvalidateOrder(ctx context.Context, id string) error
}

// CatalogCache holds the public product list.
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]models.Product, bool, error)
	SetCatalog(ctx context.Context, products []models.Product) error
	InvalidateCatalog(ctx context.Context) error
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, evt events.OrderEvent) error
}

type AuditLog interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// SessionInvalidator drops cached authorization state of a user.
type SessionInvalidator interface {
	InvalidateUser(userID string)
}
