package http

import (
	"log/slog"
	"net/http"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/httputil"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/middleware"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/service"
)

// AdminHandler handles login, credential rotation and seeding.
type AdminHandler struct {
	auth     *service.AuthService
	segments *service.SegmentService
	logger   *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(auth *service.AuthService, segments *service.SegmentService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{auth: auth, segments: segments, logger: logger}
}

// --- Request DTOs ---

// LoginRequest is the JSON request body for an admin login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CredentialsRequest is the JSON request body for rotating the admin login.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// SeedResponse reports how many segments were written.
type SeedResponse struct {
	Seeded int `json:"seeded"`
}

// Login handles POST /api/v1/admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: token})
}

// RotateCredentials handles POST /api/v1/admin/credentials.
func (h *AdminHandler) RotateCredentials(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.RotateCredentials(r.Context(), req.Username, req.Password); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Seed handles POST /api/v1/admin/seed.
func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	n, err := h.segments.Seed(r.Context(), middleware.SubjectFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: SeedResponse{Seeded: n}})
}
