package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpattn/fleetreg/internal/logging"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddlewareLogsStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(logging.New(&buf, "info", "text"))
	t.Cleanup(func() { slog.SetDefault(previous) })

	handler := chimiddleware.RequestID(LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ships", nil))

	out := buf.String()
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "path=/ships")
	assert.Contains(t, out, "request_id=")
	assert.Contains(t, out, "level=WARN")
}

func TestDataLoaderMiddlewareAttachesLoaders(t *testing.T) {
	called := false
	handler := DataLoaderMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		require.NotNil(t, ProfileLoadersFromContext(r.Context()))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ships", nil))
	assert.True(t, called)
	assert.Nil(t, ProfileLoadersFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
