// pkg/router/policy.go
package router

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

func withTimeout(next http.HandlerFunc, d time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

// withRateLimit applies a shared token bucket to one route.
func withRateLimit(next http.HandlerFunc, rps, burst int) http.HandlerFunc {
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	return func(w http.ResponseWriter, r *http.Request) {
		if !lim.Allow() {
			writeDetail(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}
