package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/httputil"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/middleware"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/catalogue"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/contentstore"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/domain"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/service"
)

// persistWarning is shown when a change is live in this replica but the
// content service did not confirm the write.
const persistWarning = "changes are live but could not be saved to the content service; retry before leaving the page"

// AdminHandler handles catalogue and content administration.
type AdminHandler struct {
	products *service.ProductService
	logger   *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(products *service.ProductService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{products: products, logger: logger}
}

// --- Request / response DTOs ---

// ReorderRequest lists every product id in the new order.
type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// MutationResponse reports a segment write. Warning is set when the change
// was applied but not persisted.
type MutationResponse struct {
	Applied   bool   `json:"applied"`
	Persisted bool   `json:"persisted"`
	Warning   string `json:"warning,omitempty"`
	Result    any    `json:"result,omitempty"`
}

// ListProducts handles GET /api/v1/admin/products.
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	desc, _ := strconv.ParseBool(q.Get("desc"))

	products, err := h.products.List(catalogue.AdminQuery{
		Search:  q.Get("q"),
		SortKey: q.Get("sort"),
		Desc:    desc,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// CreateProduct handles POST /api/v1/admin/products.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if !httputil.DecodeJSON(w, r, &p) {
		return
	}

	created, res, err := h.products.Create(r.Context(), p, token(r))
	h.writeMutation(w, r, http.StatusCreated, res, err, created)
}

// UpdateProduct handles PUT /api/v1/admin/products/{id}.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if !httputil.DecodeJSON(w, r, &p) {
		return
	}

	updated, res, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), p, token(r))
	h.writeMutation(w, r, http.StatusOK, res, err, updated)
}

// DeleteProduct handles DELETE /api/v1/admin/products/{id}.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	res, err := h.products.Delete(r.Context(), chi.URLParam(r, "id"), token(r))
	h.writeMutation(w, r, http.StatusOK, res, err, nil)
}

// ReorderProducts handles POST /api/v1/admin/products/reorder.
func (h *AdminHandler) ReorderProducts(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	ordered, res, err := h.products.Reorder(r.Context(), req.IDs, token(r))
	h.writeMutation(w, r, http.StatusOK, res, err, ordered)
}

// ReplaceContent handles PUT /api/v1/admin/content/{key}. The body is the
// complete new value.
func (h *AdminHandler) ReplaceContent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, r, apperrors.InvalidInput("segment value is too large"), h.logger)
			return
		}
		httputil.WriteError(w, r, apperrors.InvalidInput("could not read request body"), h.logger)
		return
	}

	res, err := h.products.ReplaceContent(r.Context(), chi.URLParam(r, "key"), body, token(r))
	h.writeMutation(w, r, http.StatusOK, res, err, nil)
}

// ReloadContent handles POST /api/v1/admin/content/reload.
func (h *AdminHandler) ReloadContent(w http.ResponseWriter, r *http.Request) {
	report := h.products.Reload(r.Context())
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}

// ContentStatus handles GET /api/v1/admin/content/status.
func (h *AdminHandler) ContentStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.products.LoadReport()})
}

func (h *AdminHandler) writeMutation(w http.ResponseWriter, r *http.Request, status int, res contentstore.ReplaceResult, err error, result any) {
	if err != nil && !res.Applied {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp := MutationResponse{Applied: res.Applied, Persisted: res.Persisted, Result: result}
	if err != nil {
		resp.Warning = persistWarning
		h.logger.WarnContext(r.Context(), "admin change not persisted",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	httputil.WriteJSON(w, status, httputil.Response{Data: resp})
}

// token returns the caller's bearer token, forwarded to the content service.
func token(r *http.Request) string {
	t, _ := middleware.BearerToken(r)
	return t
}
