package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Dias221467/Friends_Manager/internal/apperrors"
	"github.com/Dias221467/Friends_Manager/internal/ratelimit"
	"github.com/Dias221467/Friends_Manager/pkg/logger"
	"github.com/Dias221467/Friends_Manager/pkg/metrics"
)

// RateLimit throttles the wrapped handler per authenticated user. Callers
// without claims share the anonymous counter.
func RateLimit(limiter *ratelimit.Limiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := ""
			if claims := GetUserFromContext(r.Context()); claims != nil {
				identity = claims.UserID
			}

			err := limiter.Allow(r.Context(), scope, identity)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, apperrors.ErrRateLimited):
				metrics.RateLimited.WithLabelValues(scope).Inc()
				w.Header().Set("Retry-After", strconv.Itoa(int(limiter.Window().Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": apperrors.ErrRateLimited.Message,
					"code":  string(apperrors.KindRateLimit),
				})
			default:
				logger.Log.WithError(err).Error("Rate limiter unavailable")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		})
	}
}
