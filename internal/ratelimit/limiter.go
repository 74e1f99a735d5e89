// Package ratelimit keeps scrape-hungry clients from monopolizing the single
// browser session. Each client gets its own token bucket.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter manages per-client rate limits.
type Limiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewLimiter creates a limiter allowing requestsPerHour sustained requests per
// client with the given burst.
func NewLimiter(requestsPerHour int, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(requestsPerHour) / 3600.0),
		burst:    burst,
	}
}

func (l *Limiter) limiter(clientKey string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[clientKey]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[clientKey] = limiter
	}
	return limiter
}

// Allow reports whether the client may make a request right now.
func (l *Limiter) Allow(clientKey string) bool {
	return l.limiter(clientKey).Allow()
}

// Tokens returns the client's remaining burst capacity.
func (l *Limiter) Tokens(clientKey string) float64 {
	return l.limiter(clientKey).Tokens()
}
