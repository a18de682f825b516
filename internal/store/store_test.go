package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/store"
	"github.com/Emma781227/Ble-dor/internal/testutil"
)

func newProduct(t *testing.T, gdb *gorm.DB, id, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Category: models.CategoryBread, IsAvailable: true}
	require.NoError(t, store.NewProductStore(gdb).Create(context.Background(), p))
	return p
}

func newOrder(ticket string, status models.OrderStatus, lines ...models.OrderItem) *models.Order {
	o := &models.Order{TicketNumber: ticket, Status: status, Items: lines}
	o.Total = o.ItemsTotal()
	return o
}

func TestOrderStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	orders := store.NewOrderStore(gdb)

	o := newOrder("BLE-20250314-0930-1234", models.OrderStatusPending,
		models.OrderItem{ProductID: "bread-1", ProductName: "Baguette", Quantity: 2, UnitPrice: decimal.RequireFromString("1.20")})
	require.NoError(t, orders.Create(ctx, o))
	require.NotEmpty(t, o.ID)

	got, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, o.ID, got.Items[0].OrderID)
	assert.True(t, decimal.RequireFromString("2.40").Equal(got.Total))

	_, err = orders.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrderStore_DuplicateTicketKeepsNothing(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	orders := store.NewOrderStore(gdb)

	first := newOrder("BLE-20250314-0930-1234", models.OrderStatusPending,
		models.OrderItem{ProductID: "p", Quantity: 1, UnitPrice: decimal.NewFromInt(1)})
	require.NoError(t, orders.Create(ctx, first))

	clash := newOrder("BLE-20250314-0930-1234", models.OrderStatusPending,
		models.OrderItem{ProductID: "p", Quantity: 3, UnitPrice: decimal.NewFromInt(1)})
	err := orders.Create(ctx, clash)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrDuplicate), err.Error())

	var nOrders, nItems int64
	gdb.Model(&models.Order{}).Count(&nOrders)
	gdb.Model(&models.OrderItem{}).Count(&nItems)
	assert.EqualValues(t, 1, nOrders)
	assert.EqualValues(t, 1, nItems)
}

func TestOrderStore_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	orders := store.NewOrderStore(gdb)

	o := newOrder("T-1", models.OrderStatusDelivered)
	require.NoError(t, orders.Create(ctx, o))

	prev, err := orders.UpdateStatus(ctx, o.ID, models.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, prev)

	got, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)

	_, err = orders.UpdateStatus(ctx, "missing", models.OrderStatusReady)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrderStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	orders := store.NewOrderStore(gdb)

	client := "client-1"
	a := newOrder("T-A", models.OrderStatusReady)
	b := newOrder("T-B", models.OrderStatusPending)
	b.CustomerID = &client
	c := newOrder("T-C", models.OrderStatusReady)
	for _, o := range []*models.Order{a, b, c} {
		require.NoError(t, orders.Create(ctx, o))
	}
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, gdb.Model(&models.Order{}).Where("id = ?", c.ID).Update("created_at", old).Error)

	all, err := orders.List(ctx, store.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, c.ID, all[2].ID, "oldest last")

	ready := models.OrderStatusReady
	got, err := orders.List(ctx, store.OrderFilter{Status: &ready})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	since := time.Now().Add(-24 * time.Hour)
	got, err = orders.List(ctx, store.OrderFilter{From: &since, Status: &ready})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	got, err = orders.List(ctx, store.OrderFilter{CustomerID: client})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
}

func TestProductStore(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	products := store.NewProductStore(gdb)

	newProduct(t, gdb, "bread-1", "Baguette", "1.20")
	newProduct(t, gdb, "croissant-1", "Croissant", "1.10")
	hidden := &models.Product{Name: "Galette", Price: decimal.RequireFromString("12.00"), Category: models.CategoryPastry, IsAvailable: false}
	require.NoError(t, products.Create(ctx, hidden))

	found, err := products.GetProductsByIDs(ctx, []string{"bread-1", "nope", "croissant-1"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	available, err := products.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	all, err := products.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, products.SetAvailability(ctx, hidden.ID, true))
	got, err := products.Get(ctx, hidden.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)

	got.Price = decimal.RequireFromString("13.50")
	require.NoError(t, products.Update(ctx, got))
	got, err = products.Get(ctx, hidden.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("13.50").Equal(got.Price))

	assert.ErrorIs(t, products.Update(ctx, &models.Product{ID: "nope", Name: "x"}), store.ErrNotFound)
	assert.ErrorIs(t, products.SetAvailability(ctx, "nope", false), store.ErrNotFound)
	assert.ErrorIs(t, products.Delete(ctx, "nope"), store.ErrNotFound)
	_, err = products.Get(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	users := store.NewUserStore(gdb)

	u := &models.User{Email: "Gerant@BleDor.local", PasswordHash: "x", Role: models.RoleManager}
	require.NoError(t, users.Create(ctx, u))
	assert.Equal(t, "gerant@bledor.local", u.Email)

	err := users.Create(ctx, &models.User{Email: "gerant@bledor.local ", PasswordHash: "y"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	got, err := users.GetByEmail(ctx, "  GERANT@bledor.local")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	role, err := users.RoleOf(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, role)

	assert.ErrorIs(t, users.DeleteWithRole(ctx, u.ID, models.RoleClient), store.ErrNotFound)
	require.NoError(t, users.DeleteWithRole(ctx, u.ID, models.RoleManager))

	ok, err := users.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFavoriteStore(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	favs := store.NewFavoriteStore(gdb)
	newProduct(t, gdb, "bread-1", "Baguette", "1.20")

	require.NoError(t, favs.Add(ctx, "u1", "bread-1"))
	require.NoError(t, favs.Add(ctx, "u1", "bread-1"))

	list, err := favs.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Product)
	assert.Equal(t, "Baguette", list[0].Product.Name)

	removed, err := favs.Remove(ctx, "u1", "bread-1")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = favs.Remove(ctx, "u1", "bread-1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFavoriteStore_CascadeOnProductDelete(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	favs := store.NewFavoriteStore(gdb)
	newProduct(t, gdb, "bread-1", "Baguette", "1.20")

	require.NoError(t, favs.Add(ctx, "u1", "bread-1"))
	require.NoError(t, store.NewProductStore(gdb).Delete(ctx, "bread-1"))

	ok, err := favs.Exists(ctx, "u1", "bread-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResetTokenStore_ReplaceKeepsOneLiveToken(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	users := store.NewUserStore(gdb)
	tokens := store.NewResetTokenStore(gdb)

	u := &models.User{Email: "client@bledor.local", PasswordHash: "old"}
	require.NoError(t, users.Create(ctx, u))

	exp := time.Now().Add(models.PasswordResetTTL)
	require.NoError(t, tokens.Replace(ctx, &models.PasswordResetToken{Token: "aaa", UserID: u.ID, ExpiresAt: exp}))
	second := &models.PasswordResetToken{Token: "bbb", UserID: u.ID, ExpiresAt: exp}
	require.NoError(t, tokens.Replace(ctx, second))

	n, err := tokens.CountForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = tokens.Find(ctx, "aaa")
	assert.ErrorIs(t, err, store.ErrNotFound)

	found, err := tokens.Find(ctx, "bbb")
	require.NoError(t, err)
	require.NoError(t, tokens.Consume(ctx, found, "new-hash"))

	got, err := users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	n, _ = tokens.CountForUser(ctx, u.ID)
	assert.EqualValues(t, 0, n)
}
