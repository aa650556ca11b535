package middleware

import (
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/planroom/drawings/internal/common/logtrace"
)

const panicBody = `{"error":"unable to process request"}`

// PanicHandler recovers from panics in handlers, logs the stack trace and
// answers 500 with a JSON error if nothing was written yet.
func PanicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newResponseWriter(w)
		defer func() {
			if err := recover(); err != nil {
				logtrace.Logger(r.Context()).Error().
					Str("panic", fmt.Sprintf("%v", err)).
					Str("stack_trace", string(debug.Stack())).
					Msg("panic occurred")

				if !rw.Written() {
					rw.Header().Set("Content-Type", "application/json")
					rw.WriteHeader(http.StatusInternalServerError)
					io.WriteString(rw, panicBody)
				}
			}
		}()
		next.ServeHTTP(rw, r)
	})
}
