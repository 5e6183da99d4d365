package auth

import (
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/time/rate"
)

// limiterPool keeps one token bucket per caller, keyed by capability key
// or client IP for anonymous requests.
type limiterPool struct {
	rps   float64
	burst int
	m     *xsync.MapOf[string, *rate.Limiter]
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	if burst <= 0 {
		burst = 1
	}
	return &limiterPool{rps: rps, burst: burst, m: xsync.NewMapOf[string, *rate.Limiter]()}
}

// Allow reports whether the caller identified by key may proceed. A pool
// configured with rps <= 0 never limits.
func (p *limiterPool) Allow(key string) bool {
	if p.rps <= 0 {
		return true
	}
	l, _ := p.m.LoadOrCompute(key, func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(p.rps), p.burst)
	})
	return l.Allow()
}
