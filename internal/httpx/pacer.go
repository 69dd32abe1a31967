package httpx

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Pacer hands out one rate limiter per host, so every client talking to the
// same instance shares its budget no matter how many clients are built.
type Pacer struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// NewPacer allows requestsPerSecond requests to each host, with a burst of
// the same size (at least one). It returns nil when requestsPerSecond is not
// positive; a nil Pacer never waits.
func NewPacer(requestsPerSecond float64) *Pacer {
	if requestsPerSecond <= 0 {
		return nil
	}
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Pacer{
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Limiter returns the limiter for host, creating it on first use.
func (p *Pacer) Limiter(host string) *rate.Limiter {
	if p == nil {
		return nil
	}
	host = strings.ToLower(strings.TrimSpace(host))
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.limiters[host]
	if !ok {
		l = rate.NewLimiter(p.limit, p.burst)
		p.limiters[host] = l
	}
	return l
}

// Wait blocks until host may be sent another request or ctx is done.
func (p *Pacer) Wait(ctx context.Context, host string) error {
	l := p.Limiter(host)
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}
