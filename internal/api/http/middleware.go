package http

import (
	"context"
	"net/http"
	"strings"

	"gomate-backend/internal/security"

	"github.com/gorilla/mux"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Authenticate requires a bearer access token and injects the user id into
// the request context.
func Authenticate(tm security.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := parseBearer(tm, r)
			if !ok {
				writeErrorMessage(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if claims.Type != security.TokenTypeAccess {
				writeErrorMessage(w, http.StatusUnauthorized, "access token required")
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MaybeAuthenticate injects the user id when a valid token is present, but
// lets anonymous requests through. Used on public reads that show extra
// detail to the team leader.
func MaybeAuthenticate(tm security.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := parseBearer(tm, r); ok && claims.Type == security.TokenTypeAccess {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, claims.UserID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseBearer(tm security.TokenManager, r *http.Request) (*security.UserClaims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	token = strings.TrimPrefix(token, "bearer ")
	claims, err := tm.ValidateToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// userIDFrom returns the authenticated user id, or 0 for anonymous
// requests.
func userIDFrom(r *http.Request) int32 {
	if id, ok := r.Context().Value(userIDKey).(int32); ok {
		return id
	}
	return 0
}
