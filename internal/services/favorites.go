package services

import (
	"context"

	"github.com/Emma781227/Ble-dor/gate"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/policy"
)

// FavoriteService manages the bookmarks of the calling user.
type FavoriteService struct {
	favorites FavoriteRepository
	products  ProductLookup
	gate      Authorizer
}

func NewFavoriteService(favorites FavoriteRepository, products ProductLookup) *FavoriteService {
	return &FavoriteService{favorites: favorites, products: products, gate: policy.NewActorGate()}
}

func (s *FavoriteService) authorize(ctx context.Context, actor models.Actor, action gate.Action) error {
	return authzErr(s.gate.Authorize(ctx, actor, action, policy.ResourceFavorite, nil))
}

func (s *FavoriteService) ensureProduct(ctx context.Context, productID string) error {
	found, err := s.products.GetProductsByIDs(ctx, []string{productID})
	if err != nil {
		return storageErr("load product", err)
	}
	if len(found) == 0 {
		return &ProductNotFoundError{IDs: []string{productID}}
	}
	return nil
}

// Add bookmarks a product. Adding it twice is a no-op.
func (s *FavoriteService) Add(ctx context.Context, actor models.Actor, productID string) error {
	if err := s.authorize(ctx, actor, gate.ActionCreate); err != nil {
		return err
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.favorites.Add(ctx, actor.UserID, productID); err != nil {
		return storageErr("add favorite", err)
	}
	return nil
}

// Remove is idempotent.
func (s *FavoriteService) Remove(ctx context.Context, actor models.Actor, productID string) error {
	if err := s.authorize(ctx, actor, gate.ActionDelete); err != nil {
		return err
	}
	if _, err := s.favorites.Remove(ctx, actor.UserID, productID); err != nil {
		return storageErr("remove favorite", err)
	}
	return nil
}

func (s *FavoriteService) List(ctx context.Context, actor models.Actor) ([]models.Favorite, error) {
	if err := s.authorize(ctx, actor, gate.ActionList); err != nil {
		return nil, err
	}
	favs, err := s.favorites.List(ctx, actor.UserID)
	if err != nil {
		return nil, storageErr("list favorites", err)
	}
	return favs, nil
}

// Toggle flips the bookmark and returns whether the product is now a favorite.
func (s *FavoriteService) Toggle(ctx context.Context, actor models.Actor, productID string) (bool, error) {
	if err := s.authorize(ctx, actor, gate.ActionUpdate); err != nil {
		return false, err
	}
	removed, err := s.favorites.Remove(ctx, actor.UserID, productID)
	if err != nil {
		return false, storageErr("toggle favorite", err)
	}
	if removed {
		return false, nil
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return false, err
	}
	if err := s.favorites.Add(ctx, actor.UserID, productID); err != nil {
		return false, storageErr("toggle favorite", err)
	}
	return true, nil
}
