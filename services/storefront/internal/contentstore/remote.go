package contentstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/httpclient"
)

// HTTPRemote talks to the content service's segment API.
type HTTPRemote struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
}

// NewHTTPRemote creates a remote rooted at baseURL, e.g. http://content:8101.
func NewHTTPRemote(baseURL string, client *httpclient.CircuitBreakerClient) *HTTPRemote {
	return &HTTPRemote{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (r *HTTPRemote) segmentURL(key string) string {
	return r.baseURL + "/api/v1/segments/" + url.PathEscape(key)
}

// Fetch implements Remote.
func (r *HTTPRemote) Fetch(ctx context.Context, key string) (json.RawMessage, error) {
	var value json.RawMessage
	if err := r.client.DoJSON(ctx, http.MethodGet, r.segmentURL(key), nil, nil, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// Save implements Remote.
func (r *HTTPRemote) Save(ctx context.Context, key string, value json.RawMessage, token string) error {
	return r.client.DoJSON(ctx, http.MethodPost, r.segmentURL(key), value, httpclient.BearerHeader(token), nil)
}
