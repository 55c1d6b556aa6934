package enrichment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aevon-lab/callstats/internal/core/aggregation"
	"golang.org/x/sync/singleflight"
)

type cached struct {
	identity *Identity
	err      error
}

// Pass caches lookups by canonical key for the lifetime of one enrichment
// pass. Safe for concurrent use; concurrent lookups of the same key share one
// call to the collaborator.
type Pass struct {
	lookup  IdentityLookup
	timeout time.Duration

	mu    sync.RWMutex
	cache map[aggregation.CanonicalKey]cached
	group singleflight.Group

	calls int
}

// NewPass creates an empty cache over lookup. timeout <= 0 disables the
// per-lookup deadline.
func NewPass(lookup IdentityLookup, timeout time.Duration) *Pass {
	return &Pass{
		lookup:  lookup,
		timeout: timeout,
		cache:   make(map[aggregation.CanonicalKey]cached),
	}
}

// Identity resolves number, caching the outcome under key. Failures are
// cached too so one bad number is not retried within the pass.
func (p *Pass) Identity(ctx context.Context, key aggregation.CanonicalKey, number string) (*Identity, error) {
	p.mu.RLock()
	hit, ok := p.cache[key]
	p.mu.RUnlock()
	if ok {
		return hit.identity, hit.err
	}

	v, _, _ := p.group.Do(string(key), func() (interface{}, error) {
		p.mu.RLock()
		hit, ok := p.cache[key]
		p.mu.RUnlock()
		if ok {
			return hit, nil
		}

		res := p.resolve(ctx, number)

		p.mu.Lock()
		p.cache[key] = res
		p.calls++
		p.mu.Unlock()
		return res, nil
	})
	res := v.(cached)
	return res.identity, res.err
}

func (p *Pass) resolve(ctx context.Context, number string) cached {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	identity, err := p.lookup.Lookup(ctx, number)
	switch {
	case errors.Is(err, ErrNotFound):
		return cached{err: ErrNotFound}
	case err != nil:
		return cached{err: fmt.Errorf("%w: %v", ErrLookupFailed, err)}
	case identity == nil:
		return cached{err: ErrNotFound}
	}
	return cached{identity: identity}
}

// Lookups returns how many calls reached the collaborator.
func (p *Pass) Lookups() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.calls
}
