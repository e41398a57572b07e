package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter gates outbound requests
type Limiter interface {
	// Wait blocks until a request may proceed or ctx is done
	Wait(ctx context.Context) error
}

// RequestLimiter caps requests per hour with a token bucket of size one,
// so requests are spread evenly rather than bursting at the top of the hour
type RequestLimiter struct {
	limiter *rate.Limiter
}

// NewRequestLimiter allows perHour requests per hour. Zero or less means
// unlimited.
func NewRequestLimiter(perHour int) *RequestLimiter {
	if perHour <= 0 {
		return &RequestLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RequestLimiter{
		limiter: rate.NewLimiter(rate.Every(time.Hour/time.Duration(perHour)), 1),
	}
}

func (r *RequestLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
