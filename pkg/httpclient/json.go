package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
)

// DoJSON sends body (if non-nil) as JSON and decodes a 2xx response into out
// (if non-nil). Errors are classified for callers:
//
//   - transport failures, 5xx, an open breaker and undecodable 2xx bodies
//     are apperrors.Unavailable;
//   - 404 is apperrors.NotFound;
//   - other 4xx keep their meaning via ParseResponseError.
func (c *CircuitBreakerClient) DoJSON(ctx context.Context, method, url string, body any, header http.Header, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if raw, ok := body.(json.RawMessage); ok {
			payload = raw
		} else if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s request: %w", c.name, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", c.name, err)
	}
	if payload == nil {
		req.Body = http.NoBody
		req.GetBody = nil
		req.ContentLength = 0
	} else {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return apperrors.Unavailable(c.name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ParseResponseError(resp, c.name)
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Unavailable(c.name, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// BearerHeader returns a header set carrying an Authorization bearer token.
func BearerHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
