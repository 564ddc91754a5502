package http

import (
	"log/slog"
	"net/http"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/httputil"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/assistant"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/catalogue"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/service"
)

// AssistantHandler exposes the generative helpers.
type AssistantHandler struct {
	assistant *assistant.Assistant
	catalogue *service.CatalogueService
	logger    *slog.Logger
}

// NewAssistantHandler creates a new assistant HTTP handler.
func NewAssistantHandler(a *assistant.Assistant, cat *service.CatalogueService, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: a, catalogue: cat, logger: logger}
}

// --- Request DTOs ---

// AdvisorRequest is the chat transcript so far, greeting first.
type AdvisorRequest struct {
	Messages []assistant.Message `json:"messages" validate:"required,min=1,max=50,dive"`
}

// DescriptionRequest names the product to describe.
type DescriptionRequest struct {
	ProductName string `json:"productName" validate:"required,max=200"`
	Category    string `json:"category" validate:"max=100"`
}

// ReviewRequest seeds a generated testimonial.
type ReviewRequest struct {
	Keywords string `json:"keywords" validate:"required,max=500"`
}

// TextResponse wraps a generated string.
type TextResponse struct {
	Text string `json:"text"`
}

// Advise handles POST /api/v1/assistant/advisor.
func (h *AssistantHandler) Advise(w http.ResponseWriter, r *http.Request) {
	var req AdvisorRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	text, err := h.assistant.Advise(r.Context(), req.Messages, h.catalogue.List(catalogue.Query{}))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: TextResponse{Text: text}})
}

// Describe handles POST /api/v1/admin/assistant/description.
func (h *AssistantHandler) Describe(w http.ResponseWriter, r *http.Request) {
	var req DescriptionRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	text, err := h.assistant.Describe(r.Context(), req.ProductName, req.Category)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: TextResponse{Text: text}})
}

// Review handles POST /api/v1/admin/assistant/review.
func (h *AssistantHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	review, err := h.assistant.GenerateReview(r.Context(), req.Keywords)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}
