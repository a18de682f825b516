package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Emma781227/Ble-dor/auth"
	"github.com/Emma781227/Ble-dor/httpx"
	"github.com/Emma781227/Ble-dor/internal/policy"
	"github.com/Emma781227/Ble-dor/internal/services"
)

type AuthHandler struct {
	users     *services.UserService
	passwords *services.PasswordService
	log       *zap.Logger
}

func NewAuthHandler(users *services.UserService, passwords *services.PasswordService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, passwords: passwords, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a client account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	u, err := h.users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	auth.CreateSession(w, u.ID)
	httpx.JSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	u, err := h.users.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	auth.CreateSession(w, u.ID)
	h.log.Info("user logged in", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	httpx.JSON(w, http.StatusOK, u)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// ForgotPassword always answers 202 so the endpoint does not reveal which
// emails are registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	if _, err := h.passwords.RequestReset(r.Context(), in.Email); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	if err := h.passwords.Reset(r.Context(), in.Token, in.Password); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := policy.ActorFromContext(r.Context())
	u, err := h.users.GetUser(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}
