package handler

import (
	"context"
	"net/http"

	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Accounts is the account behaviour the HTTP layer needs.
type Accounts interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	AdminUsers(ctx context.Context, id model.Identity) ([]model.User, error)
	ChangeRole(ctx context.Context, id model.Identity, userID, role string) error
	DeleteUser(ctx context.Context, id model.Identity, userID string) error
}

// AccountHandler serves registration, login and user administration.
type AccountHandler struct {
	svc Accounts
	log *zap.Logger
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(svc Accounts, log *zap.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, log: log}
}

// Register handles POST /auth/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Login handles POST /auth/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListUsers handles GET /admin/users
func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.AdminUsers(r.Context(), identity(r))
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(users))
}

// ChangeRole handles PUT /admin/users/{id}/role
func (h *AccountHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req model.ChangeRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	if err := h.svc.ChangeRole(r.Context(), identity(r), chi.URLParam(r, "id"), req.Role); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser handles DELETE /admin/users/{id}
func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
