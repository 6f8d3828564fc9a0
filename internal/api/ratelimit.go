package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"
)

// UploadLimiter throttles spreadsheet uploads per client address. A nil
// limiter lets every request through.
type UploadLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	clients  map[string]*rate.Limiter
	lastSeen map[string]time.Time
	idleTTL  time.Duration
}

// NewUploadLimiter allows perMinute uploads per client with the given burst.
// A non-positive perMinute disables limiting.
func NewUploadLimiter(perMinute, burst int) *UploadLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &UploadLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		clients:  make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		idleTTL:  10 * time.Minute,
	}
}

// Allow reports whether client may upload now.
func (l *UploadLimiter) Allow(client string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.evictIdle(now)
	lim, ok := l.clients[client]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.clients[client] = lim
	}
	l.lastSeen[client] = now
	return lim.AllowN(now, 1)
}

func (l *UploadLimiter) evictIdle(now time.Time) {
	for client, seen := range l.lastSeen {
		if now.Sub(seen) > l.idleTTL {
			delete(l.lastSeen, client)
			delete(l.clients, client)
		}
	}
}

// Middleware rejects requests over the limit with 429. Clients are keyed by
// the host part of RemoteAddr, which chi's RealIP middleware may rewrite.
func (l *UploadLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientKey(r.RemoteAddr)) {
			w.Header().Set("Retry-After", "60")
			_ = render.Render(w, r, &APIError{Status: http.StatusTooManyRequests, Message: "Too many uploads, try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
