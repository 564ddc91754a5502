package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/httputil"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/catalogue"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/service"
)

// CatalogueHandler serves the public browse API.
type CatalogueHandler struct {
	service *service.CatalogueService
	logger  *slog.Logger
}

// NewCatalogueHandler creates a new catalogue HTTP handler.
func NewCatalogueHandler(svc *service.CatalogueService, logger *slog.Logger) *CatalogueHandler {
	return &CatalogueHandler{service: svc, logger: logger}
}

// Index handles GET /api/v1/catalogue/index.
func (h *CatalogueHandler) Index(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.service.Index()})
}

// ListProducts handles GET /api/v1/products.
func (h *CatalogueHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products := h.service.List(catalogue.Query{
		Group:    q.Get("group"),
		Category: q.Get("category"),
		Gender:   q.Get("gender"),
		Search:   q.Get("q"),
	})
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// GetProduct handles GET /api/v1/products/{id}.
func (h *CatalogueHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Detail(chi.URLParam(r, "id"), r.URL.Query().Get("color"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// ResolveBanner handles GET /api/v1/banners/resolve.
func (h *CatalogueHandler) ResolveBanner(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := h.service.Banner(service.BannerQuery{
		Page:       q.Get("page"),
		Collection: q.Get("collection"),
		Category:   q.Get("category"),
		Gender:     q.Get("gender"),
		ForceTitle: q.Get("title"),
		Fallback:   q.Get("fallback"),
	})
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// GetSegment handles GET /api/v1/content/{key}. The held value is the
// response body, without the envelope.
func (h *CatalogueHandler) GetSegment(w http.ResponseWriter, r *http.Request) {
	raw, err := h.service.Segment(chi.URLParam(r, "key"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteRaw(w, http.StatusOK, raw)
}
