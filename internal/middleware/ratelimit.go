package middleware

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"
)

// NewRateLimitHandler returns a middleware that rejects requests with 429
// once limiter runs out of tokens. One limiter is shared by every route the
// middleware wraps.
func NewRateLimitHandler(limiter *rate.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.WarnContext(r.Context(), "rate limited",
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", chimiddleware.GetReqID(r.Context()),
				)
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, map[string]any{
					"error": map[string]string{
						"code":    "rate_limited",
						"message": "too many requests, try again shortly",
					},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
