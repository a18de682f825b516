package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Emma781227/Ble-dor/httpx"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/policy"
	"github.com/Emma781227/Ble-dor/internal/services"
)

type FavoriteHandler struct {
	favorites *services.FavoriteService
	log       *zap.Logger
}

func NewFavoriteHandler(favorites *services.FavoriteService, log *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, log: log}
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	favs, err := h.favorites.List(r.Context(), policy.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if favs == nil {
		favs = []models.Favorite{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": favs})
}

func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductID string `json:"product_id"`
	}
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	if in.ProductID == "" {
		invalidFields(w, r, map[string]string{"product_id": "required"})
		return
	}
	if err := h.favorites.Add(r.Context(), policy.ActorFromContext(r.Context()), in.ProductID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"product_id": in.ProductID, "favorite": true})
}

func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.favorites.Remove(r.Context(), policy.ActorFromContext(r.Context()), r.PathValue("productId")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("productId")
	on, err := h.favorites.Toggle(r.Context(), policy.ActorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product_id": id, "favorite": on})
}
