package osm

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerSecond follows the Nominatim usage policy
	// https://operations.osmfoundation.org/policies/nominatim/
	DefaultRequestsPerSecond = 1.0

	// DefaultBurst allows no bursting above the policy rate
	DefaultBurst = 1
)

// NewLimiter builds the outbound limiter. A non-positive rps disables limiting.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// waitForRateLimit blocks until the limiter allows a request or ctx is done.
func waitForRateLimit(ctx context.Context, limiter *rate.Limiter, logger *slog.Logger) error {
	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		logger.Debug("rate limiter wait error", "error", err)
		return err
	}
	if waited := time.Since(start); waited > 10*time.Millisecond {
		logger.Debug("rate limited outbound request", "waited", waited)
	}
	return nil
}
