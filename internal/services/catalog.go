package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Emma781227/Ble-dor/gate"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/policy"
	"github.com/Emma781227/Ble-dor/internal/store"
	"github.com/Emma781227/Ble-dor/validation"
)

// ProductInput is the editable part of a product. Price is required.
type ProductInput struct {
	Name        string           `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url"`
	IsAvailable *bool            `json:"is_available"`
}

func (in ProductInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Required("category", in.Category, v)
	if in.Price == nil {
		v["price"] = "required"
	} else {
		validation.NonNegativeDecimal("price", *in.Price, v)
	}
	return v
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Price = in.Price.Round(2)
	p.Category = strings.TrimSpace(in.Category)
	p.Description = strings.TrimSpace(in.Description)
	p.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.IsAvailable != nil {
		p.IsAvailable = *in.IsAvailable
	}
}

type CatalogService struct {
	products ProductRepository
	gate     Authorizer
	cache    CatalogCache
	log      *zap.Logger
}

func NewCatalogService(products ProductRepository, cache CatalogCache, log *zap.Logger) *CatalogService {
	return &CatalogService{products: products, gate: policy.NewActorGate(), cache: cache, log: log}
}

// GetProductsByIDs returns the products that exist among ids.
func (s *CatalogService) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, storageErr("get products", err)
	}
	return products, nil
}

// ListProducts returns the catalog newest first. The available-only list is cached.
func (s *CatalogService) ListProducts(ctx context.Context, onlyAvailable bool) ([]models.Product, error) {
	if onlyAvailable && s.cache != nil {
		cached, ok, err := s.cache.GetCatalog(ctx)
		if err != nil {
			s.log.Warn("catalog cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}
	products, err := s.products.List(ctx, onlyAvailable)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	if onlyAvailable && s.cache != nil {
		if err := s.cache.SetCatalog(ctx, products); err != nil {
			s.log.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storageErr("get product", err)
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor models.Actor, in ProductInput) (*models.Product, error) {
	if err := authzErr(s.gate.Authorize(ctx, actor, gate.ActionCreate, policy.ResourceProduct, nil)); err != nil {
		return nil, err
	}
	if v := in.validate(); !v.Empty() {
		return nil, invalid(v)
	}
	p := models.Product{IsAvailable: true}
	in.apply(&p)
	if err := s.products.Create(ctx, &p); err != nil {
		return nil, storageErr("create product", err)
	}
	s.invalidate(ctx)
	s.log.Info("product created", zap.String("product_id", p.ID), zap.String("actor", actor.UserID))
	return &p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor models.Actor, id string, in ProductInput) (*models.Product, error) {
	if err := authzErr(s.gate.Authorize(ctx, actor, gate.ActionUpdate, policy.ResourceProduct, nil)); err != nil {
		return nil, err
	}
	if v := in.validate(); !v.Empty() {
		return nil, invalid(v)
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.products.Update(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storageErr("update product", err)
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *CatalogService) SetAvailability(ctx context.Context, actor models.Actor, id string, available bool) (*models.Product, error) {
	if err := authzErr(s.gate.Authorize(ctx, actor, gate.ActionUpdate, policy.ResourceProduct, nil)); err != nil {
		return nil, err
	}
	if err := s.products.SetAvailability(ctx, id, available); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storageErr("set availability", err)
	}
	s.invalidate(ctx)
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product. Past orders keep their line snapshot.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor models.Actor, id string) error {
	if err := authzErr(s.gate.Authorize(ctx, actor, gate.ActionDelete, policy.ResourceProduct, nil)); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		return storageErr("delete product", err)
	}
	s.invalidate(ctx)
	s.log.Info("product deleted", zap.String("product_id", id), zap.String("actor", actor.UserID))
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		s.log.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}
