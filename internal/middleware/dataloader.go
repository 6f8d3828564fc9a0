package middleware

import (
	"context"
	"net/http"

	"github.com/rpattn/fleetreg/internal/profileloader"
	"github.com/rpattn/fleetreg/internal/repository"
)

type ctxKey string

const profileLoaderKey ctxKey = "profileLoader"

// DataLoaderMiddleware attaches fresh profile loaders to every request context.
func DataLoaderMiddleware(repo repository.ProfileRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loaders := profileloader.NewLoaders(repo)
			ctx := context.WithValue(r.Context(), profileLoaderKey, loaders)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProfileLoadersFromContext retrieves the loaders from context.
func ProfileLoadersFromContext(ctx context.Context) *profileloader.Loaders {
	if l, ok := ctx.Value(profileLoaderKey).(*profileloader.Loaders); ok {
		return l
	}
	return nil
}
