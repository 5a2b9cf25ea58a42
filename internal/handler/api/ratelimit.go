package api

import (
	"errors"
	"net/http"

	"golang.org/x/time/rate"
)

var errRateLimited = errors.New("too many commands, slow down")

// rateLimit guards the command routes with one shared bucket: the game
// has a single command channel, so callers share its budget.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, errRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
