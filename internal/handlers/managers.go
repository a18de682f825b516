package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Emma781227/Ble-dor/httpx"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/policy"
	"github.com/Emma781227/Ble-dor/internal/services"
)

// ManagerHandler lets the owner administer manager accounts. Role caches are
// dropped by the user service whenever an account changes.
type ManagerHandler struct {
	users *services.UserService
	log   *zap.Logger
}

func NewManagerHandler(users *services.UserService, log *zap.Logger) *ManagerHandler {
	return &ManagerHandler{users: users, log: log}
}

func (h *ManagerHandler) List(w http.ResponseWriter, r *http.Request) {
	managers, err := h.users.ListManagers(r.Context(), policy.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if managers == nil {
		managers = []models.User{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": managers})
}

func (h *ManagerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	u, err := h.users.CreateManager(r.Context(), policy.ActorFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

func (h *ManagerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.ManagerUpdate
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	u, err := h.users.UpdateManager(r.Context(), policy.ActorFromContext(r.Context()), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *ManagerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteManager(r.Context(), policy.ActorFromContext(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
