// Package middleware provides HTTP middleware for request logging and panic
// recovery. It integrates with zerolog and carries the caller's request ID
// through the request context.
package middleware

import (
	"net/http"
	"time"

	"github.com/planroom/drawings/internal/common/logtrace"
	"github.com/planroom/drawings/internal/common/uuid"
)

// RequestIDHeader carries the request ID between client and server.
const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches the request ID to the context and the response
// headers and logs each request with its status and duration. The caller's
// X-Request-ID is reused; a new ID is generated when it is missing.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := logtrace.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		logger := logtrace.Logger(ctx)
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_ip", r.RemoteAddr).
			Msg("incoming request")

		rw := newResponseWriter(w)
		defer func() {
			logger.Debug().
				Int("status", rw.Status()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		}()

		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}
