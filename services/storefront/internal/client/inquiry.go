// Package client holds HTTP clients for the storefront's downstream services.
package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/httpclient"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/quote"
)

// Receipt is the inquiry service's answer to a submission.
type Receipt struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	SubmissionDate time.Time `json:"submissionDate"`
}

// InquiryClient submits quote drafts to the inquiry service.
type InquiryClient struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
}

// NewInquiryClient creates a client rooted at baseURL, e.g. http://inquiry:8103.
func NewInquiryClient(baseURL string, client *httpclient.CircuitBreakerClient) *InquiryClient {
	return &InquiryClient{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Submit posts sub and returns the assigned id and status.
func (c *InquiryClient) Submit(ctx context.Context, sub quote.Submission) (*Receipt, error) {
	var resp struct {
		Data Receipt `json:"data"`
	}
	if err := c.client.DoJSON(ctx, http.MethodPost, c.baseURL+"/api/v1/inquiries", sub, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
