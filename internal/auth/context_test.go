package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestUserIDRoundTrip(t *testing.T) {
	id := uuid.New()
	ctx := ContextWithUserID(context.Background(), id)

	got, ok := UserIDFromContext(ctx)
	if !ok || got != id {
		t.Fatalf("expected %s, got %s (ok=%v)", id, got, ok)
	}
	if ActingUser(context.Background()) != nil {
		t.Fatalf("expected nil acting user for empty context")
	}
	if _, ok := UserIDFromContext(ContextWithUserID(context.Background(), uuid.Nil)); ok {
		t.Fatalf("nil uuid must not count as authenticated")
	}
}

func TestMiddleware(t *testing.T) {
	id := uuid.New()
	var seen *uuid.UUID
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ActingUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, id.String())
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen == nil || *seen != id {
		t.Fatalf("expected acting user %s, got %v", id, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, "not-a-uuid")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != nil {
		t.Fatalf("malformed header should be ignored, got %v", seen)
	}
}
