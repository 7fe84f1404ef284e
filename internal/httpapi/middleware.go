package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type requestIDKey struct{}

// RequestIDMiddleware assigns each request a UUID (reusing an inbound
// X-Request-Id if the caller already supplied one), stores it on the
// request context, and echoes it back on the response — the same shape as
// the teacher's trace-ID propagation in
// infrastructure/middleware/logging.go, renamed to the header §4.7 names.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// responseWriter wraps http.ResponseWriter to capture the status code for
// access logging, mirroring infrastructure/middleware/logging.go's
// responseWriter.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// AccessLogMiddleware logs one structured line per request via zap,
// grounded on the teacher's LoggingMiddleware (gorilla/mux +
// infrastructure/middleware/logging.go) but using zap instead of the
// teacher's own logging package, per the HTTP access-log stratum §4.7
// calls for.
func AccessLogMiddleware(access *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			access.Info("http request",
				zap.String("request_id", requestIDFrom(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// DeadlineMiddleware bounds every request to timeout (default 30s, §5),
// propagated through the request context to every downstream suspension
// point (warehouse queries, host calls made during a sync). Handlers
// surface the resulting context.DeadlineExceeded through the normal error
// path; classify() maps it to the deadline_exceeded kind (§7).
func DeadlineMiddleware(timeout time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RecoverMiddleware converts a handler panic into a 500 internal error
// envelope instead of taking down the listener, matching the discipline
// any long-lived server in the corpus applies at its outermost middleware.
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				writeError(w, r, nil, internalErr("internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
