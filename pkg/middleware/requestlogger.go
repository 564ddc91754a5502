package middleware

import (
	"log/slog"
	"net/http"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/logger"
)

// SessionHeader identifies an anonymous storefront session.
const SessionHeader = "X-Session-ID"

// RequestLogger stores a request-scoped logger in the context, enriched with
// correlation_id, admin, session_id and trace ids. Mount it after
// RequestLogging and Tracing; mount it again inside Auth-protected groups to
// pick up the admin subject.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if sid := r.Header.Get(SessionHeader); sid != "" && logger.SessionFromContext(ctx) == "" {
				ctx = logger.WithSession(ctx, sid)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
