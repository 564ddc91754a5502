package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
)

// DownstreamErrorResponse mirrors the httputil error envelope returned by
// every service in this repository.
type DownstreamErrorResponse struct {
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

// ParseResponseError consumes and closes a non-2xx response and translates it
// into an AppError. 5xx responses become Unavailable; 4xx keep their meaning.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Unavailable(serviceName, fmt.Errorf("read %d response body: %w", resp.StatusCode, err))
	}

	var downstream DownstreamErrorResponse
	if json.Unmarshal(bodyBytes, &downstream) == nil && downstream.Error != nil {
		return mapDownstreamError(resp.StatusCode, downstream.Error.Code, downstream.Error.Message, downstream.Error.Fields, serviceName)
	}
	return mapDownstreamError(resp.StatusCode, "", string(bodyBytes), nil, serviceName)
}

func mapDownstreamError(status int, code, message string, fields map[string]string, serviceName string) error {
	qualified := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(serviceName+" resource", message)
	case status == http.StatusBadRequest:
		if len(fields) > 0 {
			return apperrors.InvalidFields(fields)
		}
		return apperrors.InvalidInput(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case status >= http.StatusInternalServerError:
		return apperrors.Unavailable(serviceName, fmt.Errorf("status %d %s: %s", status, code, message))
	default:
		if code == "" {
			code = "DOWNSTREAM_ERROR"
		}
		return &apperrors.AppError{Code: code, Message: qualified, Status: status}
	}
}

// IsClientError reports whether status is a 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
