package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rgstore/rgstore-pos/internal/platform/httpx"
	"github.com/rgstore/rgstore-pos/internal/shared"
)

type contextKey struct{}

// UserIDFromContext returns the authenticated user id, zero when absent.
func UserIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(contextKey{}).(int64)
	return id
}

// RequireAuth guards a subtree with bearer-token authentication.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}

		userID, err := s.ResolveToken(r.Context(), token)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
