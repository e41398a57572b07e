// Package ratelimit keeps the harvester polite towards the AirNow API.
//
// Two independent mechanisms live here:
//
// RequestLimiter is an optional ceiling on outbound requests per hour, backed
// by golang.org/x/time/rate. Each fetch takes one slot before its first
// attempt; retries of that fetch only wait out the backoff. It is off (0)
// unless rate_limit.requests_per_hour is set.
//
// Pacer is the fixed delay applied after each successfully stored work unit.
// FixedDelay is the production implementation; tests substitute PacerFunc.
//
//	limiter := ratelimit.NewRequestLimiter(500)
//	if err := limiter.Wait(ctx); err != nil {
//		return err
//	}
//
//	pacer := ratelimit.NewFixedDelay(8 * time.Second)
//	_ = pacer.Pace(ctx)
package ratelimit
