package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimiter limits requests per IP on general endpoints: 100 requests per
// minute. This is the outer HTTP-level limit; the per-account login throttle
// lives in the service layer.
func RateLimiter() func(http.Handler) http.Handler {
	return httprate.LimitByIP(100, time.Minute)
}

// StrictRateLimiter applies a tighter per-IP limit (10 requests per minute)
// for credential endpoints like register and login.
func StrictRateLimiter() func(http.Handler) http.Handler {
	return httprate.LimitByIP(10, time.Minute)
}
