package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

// AdminID returns the admin ID RequireAdmin stored in ctx.
func AdminID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok
}

func (s *service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			respond(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			return
		}

		id, err := s.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin", error="invalid_token"`)
			respond(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, id)))
	})
}
