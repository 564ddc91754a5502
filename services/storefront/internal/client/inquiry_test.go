package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/httpclient"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/quote"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *InquiryClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	hc := httpclient.New(httpclient.Config{
		Timeout:         time.Second,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    time.Millisecond,
		MaxConnsPerHost: 2,
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cb := httpclient.NewCircuitBreakerClient(hc, httpclient.DefaultCircuitBreakerConfig("inquiry-"+t.Name()), logger)
	return NewInquiryClient(srv.URL, cb)
}

func submission() quote.Submission {
	return quote.Submission{
		Kind:    quote.KindQuote,
		Contact: quote.Contact{Name: "Ana Cruz", Email: "ana@example.com"},
		Items: []quote.Item{{
			Product:        quote.ProductRef{ID: "JER-100", Name: "Pro Jersey"},
			Color:          "Black",
			SizeQuantities: map[string]int{"M": 12},
		}},
		SubmissionDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestInquiryClient_Submit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/inquiries", r.URL.Path)

		var got quote.Submission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "quote", got.Kind)
		assert.Equal(t, 12, got.Items[0].SizeQuantities["M"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"QT-1A2B3C4D","status":"New","submissionDate":"2026-03-01T00:00:00Z"}}`))
	})

	receipt, err := c.Submit(context.Background(), submission())
	require.NoError(t, err)
	assert.Equal(t, "QT-1A2B3C4D", receipt.ID)
	assert.Equal(t, "New", receipt.Status)
}

func TestInquiryClient_ValidationErrorKeepsFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"VALIDATION_ERROR","message":"request validation failed","fields":{"contact.email":"must be a valid email address"}}}`))
	})

	_, err := c.Submit(context.Background(), submission())
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Fields, "contact.email")
}

func TestInquiryClient_Unavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Submit(context.Background(), submission())
	assert.True(t, apperrors.IsUnavailable(err))
}
