package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Emma781227/Ble-dor/internal/audit"
	"github.com/Emma781227/Ble-dor/internal/events"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/services"
	"github.com/Emma781227/Ble-dor/internal/store"
	"github.com/Emma781227/Ble-dor/internal/testutil"
)

var (
	owner   = models.Actor{UserID: "owner-1", Role: models.RoleOwner}
	manager = models.Actor{UserID: "manager-1", Role: models.RoleManager}
	client  = models.Actor{UserID: "client-1", Role: models.RoleClient}
	other   = models.Actor{UserID: "client-2", Role: models.RoleClient}
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type env struct {
	db       *gorm.DB
	orders   *store.OrderStore
	products *store.ProductStore
	users    *store.UserStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gdb := testutil.OpenDB(t)
	e := &env{
		db:       gdb,
		orders:   store.NewOrderStore(gdb),
		products: store.NewProductStore(gdb),
		users:    store.NewUserStore(gdb),
	}
	ctx := context.Background()
	for _, u := range []models.User{
		{ID: owner.UserID, Email: "owner@bledor.local", PasswordHash: "x", Role: models.RoleOwner, Name: "Owner"},
		{ID: manager.UserID, Email: "manager@bledor.local", PasswordHash: "x", Role: models.RoleManager, Name: "Manager"},
		{ID: client.UserID, Email: "client@bledor.local", PasswordHash: "x", Role: models.RoleClient, Name: "Awa Diallo"},
		{ID: other.UserID, Email: "other@bledor.local", PasswordHash: "x", Role: models.RoleClient},
	} {
		require.NoError(t, e.users.Create(ctx, &u))
	}
	e.addProduct(t, "bread-1", "Baguette", "1.20")
	e.addProduct(t, "croissant-1", "Croissant", "1.10")
	e.addProduct(t, "coffee-1", "Café", "1.50")
	return e
}

func (e *env) addProduct(t *testing.T, id, name, price string) {
	t.Helper()
	p := &models.Product{ID: id, Name: name, Price: dec(price), Category: models.CategoryBread, IsAvailable: true}
	require.NoError(t, e.products.Create(context.Background(), p))
}

func (e *env) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func (e *env) countItems(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.OrderItem{}).Count(&n).Error)
	return n
}

// sequence returns suffixes in order, repeating the last one.
func sequence(values ...int) func() int {
	var mu sync.Mutex
	i := 0
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

func fixedTickets(suffixes ...int) *services.TicketGenerator {
	return &services.TicketGenerator{
		Prefix: "BLE",
		Now:    func() time.Time { return fixedNow },
		Suffix: sequence(suffixes...),
	}
}

func (e *env) orderService(tickets *services.TicketGenerator, opts ...services.OrderOption) *services.OrderService {
	return services.NewOrderService(e.orders, e.products, e.users, tickets, zap.NewNop(), opts...)
}

type countingLookup struct {
	inner services.ProductLookup
	calls int
}

func (c *countingLookup) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	c.calls++
	return c.inner.GetProductsByIDs(ctx, ids)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, evt events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

type recordingAudit struct {
	entries []audit.Entry
	err     error
}

func (a *recordingAudit) Record(_ context.Context, e audit.Entry) error {
	a.entries = append(a.entries, e)
	return a.err
}

type memoryOrderCache struct {
	orders      map[string]models.Order
	invalidated []string
}

func newMemoryOrderCache() *memoryOrderCache {
	return &memoryOrderCache{orders: map[string]models.Order{}}
}

func (c *memoryOrderCache) GetOrder(_ context.Context, id string) (*models.Order, bool, error) {
	o, ok := c.orders[id]
	if !ok {
		return nil, false, nil
	}
	return &o, true, nil
}

func (c *memoryOrderCache) SetOrder(_ context.Context, o *models.Order) error {
	c.orders[o.ID] = *o
	return nil
}

func (c *memoryOrderCache) InvalidateOrder(_ context.Context, id string) error {
	delete(c.orders, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type memoryCatalogCache struct {
	products    []models.Product
	ok          bool
	invalidated int
}

func (c *memoryCatalogCache) GetCatalog(context.Context) ([]models.Product, bool, error) {
	return c.products, c.ok, nil
}

func (c *memoryCatalogCache) SetCatalog(_ context.Context, p []models.Product) error {
	c.products, c.ok = p, true
	return nil
}

func (c *memoryCatalogCache) InvalidateCatalog(context.Context) error {
	c.products, c.ok = nil, false
	c.invalidated++
	return nil
}

func cart(lines ...services.CartLine) services.CreateOrderInput {
	return services.CreateOrderInput{Items: lines, CustomerName: "Comptoir"}
}

func line(id string, qty int) services.CartLine {
	return services.CartLine{ProductID: id, Quantity: qty}
}
