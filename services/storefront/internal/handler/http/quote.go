package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/httputil"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/middleware"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/service"
)

type sessionKey struct{}

// Session assigns every quote request a session id. A missing header gets a
// fresh UUID; the id is always echoed back so the client can keep it.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get(middleware.SessionHeader)
		if sid == "" {
			sid = uuid.NewString()
			r.Header.Set(middleware.SessionHeader, sid)
		} else if _, err := uuid.Parse(sid); err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput(middleware.SessionHeader+" must be a UUID"), nil)
			return
		}

		w.Header().Set(middleware.SessionHeader, sid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sid)))
	})
}

// SessionFromContext returns the id assigned by Session.
func SessionFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionKey{}).(string)
	return sid
}

// QuoteHandler serves the quote draft API.
type QuoteHandler struct {
	service *service.QuoteService
	logger  *slog.Logger
}

// NewQuoteHandler creates a new quote HTTP handler.
func NewQuoteHandler(svc *service.QuoteService, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{service: svc, logger: logger}
}

// GetDraft handles GET /api/v1/quote.
func (h *QuoteHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), SessionFromContext(r.Context()))
	h.writeDraft(w, r, view, err)
}

// Configure handles POST /api/v1/quote/configure.
func (h *QuoteHandler) Configure(w http.ResponseWriter, r *http.Request) {
	var in service.ConfigureInput
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}

	view, err := h.service.Configure(r.Context(), SessionFromContext(r.Context()), in)
	h.writeDraft(w, r, view, err)
}

// AddItem handles POST /api/v1/quote/items.
func (h *QuoteHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var in service.AddItemInput
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}

	view, err := h.service.AddItem(r.Context(), SessionFromContext(r.Context()), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: view})
}

// RemoveItem handles DELETE /api/v1/quote/items/{index}.
func (h *QuoteHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidFields(map[string]string{"index": "must be an integer"}), h.logger)
		return
	}

	view, err := h.service.RemoveItem(r.Context(), SessionFromContext(r.Context()), index)
	h.writeDraft(w, r, view, err)
}

// ClearDraft handles DELETE /api/v1/quote.
func (h *QuoteHandler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), SessionFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Submit handles POST /api/v1/quote/submit.
func (h *QuoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in service.SubmitInput
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}

	receipt, err := h.service.Submit(r.Context(), SessionFromContext(r.Context()), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: receipt})
}

func (h *QuoteHandler) writeDraft(w http.ResponseWriter, r *http.Request, view *service.DraftView, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}
