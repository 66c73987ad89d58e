package integrations

import (
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// breaker is the subset of *circuit.Breaker the client relies on.
type breaker interface {
	Ready() bool
	Success()
	Fail()
}

// breakers holds one circuit breaker per host.
type breakers struct {
	threshold int64
	mu        sync.RWMutex
	byHost    map[string]*circuit.Breaker
}

func newBreakers(threshold int) *breakers {
	return &breakers{
		threshold: int64(threshold),
		byHost:    make(map[string]*circuit.Breaker),
	}
}

// get returns or creates the breaker for host.
func (b *breakers) get(host string) breaker {
	b.mu.RLock()
	br, ok := b.byHost[host]
	b.mu.RUnlock()
	if ok {
		return br
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if br, ok := b.byHost[host]; ok {
		return br
	}

	// Half-open probes back off from 5s up to 1m.
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 5 * time.Second
	expBackoff.MaxInterval = time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	br = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(b.threshold),
	})
	b.byHost[host] = br
	return br
}

