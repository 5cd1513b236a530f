package fetch

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Pause blocks for d or until ctx is done. A non-positive d returns at once.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jitter returns a random duration in [min, max).
func Jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min)
}

// HostGate allows one request in flight per host and keeps a minimum spacing
// between consecutive requests to the same host. It is safe for concurrent use
// and meant to be shared by every session in a run.
type HostGate struct {
	spacing time.Duration

	mu    sync.Mutex
	hosts map[string]*hostSlot
}

type hostSlot struct {
	sem  chan struct{}
	last time.Time
}

// NewHostGate creates a gate with the given minimum spacing per host.
func NewHostGate(spacing time.Duration) *HostGate {
	return &HostGate{
		spacing: spacing,
		hosts:   make(map[string]*hostSlot),
	}
}

func (g *HostGate) slot(host string) *hostSlot {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.hosts[host]
	if !ok {
		s = &hostSlot{sem: make(chan struct{}, 1)}
		g.hosts[host] = s
	}
	return s
}

// Acquire waits for the host's slot and spacing. The returned release func
// must be called once the request completes.
func (g *HostGate) Acquire(ctx context.Context, host string) (func(), error) {
	s := g.slot(host)
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if wait := g.spacing - time.Since(s.last); !s.last.IsZero() && wait > 0 {
		if err := Pause(ctx, wait); err != nil {
			<-s.sem
			return nil, err
		}
	}

	return func() {
		s.last = time.Now()
		<-s.sem
	}, nil
}
