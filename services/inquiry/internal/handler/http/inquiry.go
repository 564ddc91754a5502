package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/httputil"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/pagination"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/inquiry/internal/service"
)

// InquiryHandler handles HTTP requests for inquiries.
type InquiryHandler struct {
	service *service.InquiryService
	logger  *slog.Logger
}

// NewInquiryHandler creates a new inquiry HTTP handler.
func NewInquiryHandler(svc *service.InquiryService, logger *slog.Logger) *InquiryHandler {
	return &InquiryHandler{service: svc, logger: logger}
}

// --- Request / response DTOs ---

// UpdateStatusRequest is the body of PATCH /inquiries/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SubmitResponse acknowledges a submission.
type SubmitResponse struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	SubmissionDate time.Time `json:"submissionDate"`
}

// Submit handles POST /api/v1/inquiries.
func (h *InquiryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in service.SubmitInput
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}

	q, err := h.service.Submit(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: SubmitResponse{
		ID:             q.ID,
		Status:         q.Status,
		SubmissionDate: q.SubmissionDate,
	}})
}

// Track handles GET /api/v1/track/{id}.
func (h *InquiryHandler) Track(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Track(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// List handles GET /api/v1/inquiries.
func (h *InquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	q := r.URL.Query()

	list, total, err := h.service.List(r.Context(), service.ListInput{
		Kind:   q.Get("kind"),
		Sort:   q.Get("sort"),
		Params: params,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(list, total, params))
}

// Get handles GET /api/v1/inquiries/{id}.
func (h *InquiryHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: q})
}

// UpdateStatus handles PATCH /api/v1/inquiries/{id}/status.
func (h *InquiryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	q, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: q})
}

// Stats handles GET /api/v1/inquiries/stats.
func (h *InquiryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}
