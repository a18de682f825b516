package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/services"
	"github.com/Emma781227/Ble-dor/internal/store"
)

func TestFavoriteService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	svc := services.NewFavoriteService(store.NewFavoriteStore(e.db), e.products)

	require.NoError(t, svc.Add(ctx, client, "bread-1"))
	require.NoError(t, svc.Add(ctx, client, "bread-1"), "adding twice is a no-op")
	require.NoError(t, svc.Add(ctx, client, "coffee-1"))

	favs, err := svc.List(ctx, client)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	require.NotNil(t, favs[0].Product)

	otherFavs, err := svc.List(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, otherFavs)

	assert.ErrorIs(t, svc.Add(ctx, client, "ghost"), services.ErrProductNotFound)

	require.NoError(t, svc.Remove(ctx, client, "bread-1"))
	require.NoError(t, svc.Remove(ctx, client, "bread-1"))

	on, err := svc.Toggle(ctx, client, "croissant-1")
	require.NoError(t, err)
	assert.True(t, on)
	on, err = svc.Toggle(ctx, client, "croissant-1")
	require.NoError(t, err)
	assert.False(t, on)

	favs, err = svc.List(ctx, client)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "coffee-1", favs[0].ProductID)

	_, err = svc.List(ctx, models.Actor{})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}
