package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtutil "github.com/Dias221467/Friends_Manager/pkg/jwt"
	"github.com/Dias221467/Friends_Manager/pkg/logger"
)

type contextKey string

// UserContextKey holds the caller's *jwtutil.Claims in the request context.
const UserContextKey contextKey = "user"

// AuthMiddleware rejects requests without a valid bearer token and stores the claims in the context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				logger.Log.WithField("path", r.URL.Path).Warn("Missing bearer token")
				return
			}

			claims, err := jwtutil.ValidateToken(strings.TrimSpace(token), secret)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				logger.Log.WithError(err).Warn("Token validation failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims)))
		})
	}
}

// WithUser returns a copy of ctx carrying claims.
func WithUser(ctx context.Context, claims *jwtutil.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// GetUserFromContext returns the authenticated caller, or nil.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, ok := ctx.Value(UserContextKey).(*jwtutil.Claims)
	if !ok {
		return nil
	}
	return claims
}

// RequireRole allows only callers whose token carries role. It must run after AuthMiddleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil || claims.Role != role {
				http.Error(w, "Forbidden", http.StatusForbidden)
				logger.Log.WithField("path", r.URL.Path).Warn("Forbidden: missing role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
