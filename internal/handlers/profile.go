package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Emma781227/Ble-dor/httpx"
	"github.com/Emma781227/Ble-dor/internal/policy"
	"github.com/Emma781227/Ble-dor/internal/services"
)

type ProfileHandler struct {
	users *services.UserService
	log   *zap.Logger
}

func NewProfileHandler(users *services.UserService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{users: users, log: log}
}

// Update saves the client's contact details.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileUpdate
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	u, err := h.users.UpdateProfile(r.Context(), policy.ActorFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}
