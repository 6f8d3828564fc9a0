package middleware

import (
	"net/http"
	"time"

	"github.com/rpattn/fleetreg/internal/logging"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// LoggingMiddleware logs one line per HTTP request with status and duration.
// It expects chi's RequestID middleware to run first.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		// Process HTTP request
		next.ServeHTTP(rw, r)

		status := rw.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger := logging.FromContext(r.Context())
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", rw.BytesWritten(),
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("http request", attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn("http request", attrs...)
		default:
			logger.Info("http request", attrs...)
		}
	})
}
