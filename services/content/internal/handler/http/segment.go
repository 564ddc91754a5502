package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/httputil"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/middleware"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/content/internal/service"
)

// SegmentHandler serves the segment read/write API.
type SegmentHandler struct {
	service *service.SegmentService
	logger  *slog.Logger
}

// NewSegmentHandler creates a new segment HTTP handler.
func NewSegmentHandler(svc *service.SegmentService, logger *slog.Logger) *SegmentHandler {
	return &SegmentHandler{service: svc, logger: logger}
}

// SaveResponse acknowledges a segment write.
type SaveResponse struct {
	Key   string `json:"key"`
	Saved bool   `json:"saved"`
}

// GetSegment handles GET /api/v1/segments/{key}. The stored value is the
// response body, without the envelope.
func (h *SegmentHandler) GetSegment(w http.ResponseWriter, r *http.Request) {
	value, err := h.service.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteRaw(w, http.StatusOK, value)
}

// PutSegment handles POST /api/v1/segments/{key}. The body is the complete
// new value.
func (h *SegmentHandler) PutSegment(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

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

	seg, err := h.service.Put(r.Context(), key, body, middleware.SubjectFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: SaveResponse{Key: seg.Key, Saved: true}})
}

// ListKeys handles GET /api/v1/segments.
func (h *SegmentHandler) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.service.ListKeys(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: keys})
}
