package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/Emma781227/Ble-dor/auth"
	"github.com/Emma781227/Ble-dor/httpx"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/policy"
	"github.com/Emma781227/Ble-dor/internal/services"
)

// ActorResolver identifies the optional user behind a public request.
type ActorResolver interface {
	Actor(ctx context.Context) (models.Actor, error)
}

type ProductHandler struct {
	catalog *services.CatalogService
	actors  ActorResolver
	log     *zap.Logger
}

func NewProductHandler(catalog *services.CatalogService, actors ActorResolver, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, actors: actors, log: log}
}

// List shows available products. Staff may pass ?all=1 to include the
// unavailable ones.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	onlyAvailable := true
	if r.URL.Query().Get("all") == "1" && h.isStaff(r) {
		onlyAvailable = false
	}
	products, err := h.catalog.ListProducts(r.Context(), onlyAvailable)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": len(products)})
}

func (h *ProductHandler) isStaff(r *http.Request) bool {
	if _, ok := auth.UserIDFromContext(r.Context()); !ok || h.actors == nil {
		return false
	}
	actor, err := h.actors.Actor(r.Context())
	if err != nil {
		return false
	}
	return actor.Is(models.RoleManager, models.RoleOwner)
}

func (h *ProductHandler) View(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	p, err := h.catalog.CreateProduct(r.Context(), policy.ActorFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	p, err := h.catalog.UpdateProduct(r.Context(), policy.ActorFromContext(r.Context()), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// SetAvailability toggles a product on or off the storefront.
func (h *ProductHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IsAvailable *bool `json:"is_available"`
	}
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	if in.IsAvailable == nil {
		invalidFields(w, r, map[string]string{"is_available": "required"})
		return
	}
	p, err := h.catalog.SetAvailability(r.Context(), policy.ActorFromContext(r.Context()), r.PathValue("id"), *in.IsAvailable)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), policy.ActorFromContext(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
