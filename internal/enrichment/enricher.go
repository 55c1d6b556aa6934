package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aevon-lab/callstats/internal/core/aggregation"
	"github.com/aevon-lab/callstats/internal/core/phone"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers       = 8
	defaultLookupTimeout = 2 * time.Second
)

// Options configure an Enricher.
type Options struct {
	// Workers bounds concurrent lookups. Zero means 8.
	Workers int
	// LookupTimeout bounds one lookup. Zero means 2s.
	LookupTimeout time.Duration
}

// Enricher resolves display names for aggregated callers.
type Enricher struct {
	lookup IdentityLookup
	opts   Options
}

// NewEnricher creates an Enricher. A nil lookup resolves nothing and every
// caller falls through to the local name sources.
func NewEnricher(lookup IdentityLookup, opts Options) *Enricher {
	if lookup == nil {
		lookup = NoopLookup{}
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = defaultLookupTimeout
	}
	return &Enricher{lookup: lookup, opts: opts}
}

// Enrich resolves every accumulator in one pass. Output follows input order.
// A failed lookup only affects its own caller.
func (e *Enricher) Enrich(ctx context.Context, accs []aggregation.Accumulator) []Enriched {
	out := make([]Enriched, len(accs))
	pass := NewPass(e.lookup, e.opts.LookupTimeout)

	var g errgroup.Group
	g.SetLimit(e.opts.Workers)
	for i := range accs {
		g.Go(func() error {
			out[i] = e.enrichOne(ctx, pass, accs[i])
			return nil
		})
	}
	_ = g.Wait()

	slog.Debug("[Enricher] Pass complete",
		"callers", len(accs),
		"lookups", pass.Lookups())
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, pass *Pass, acc aggregation.Accumulator) Enriched {
	res := Enriched{Accumulator: acc}

	if acc.Key != aggregation.PrivateKey {
		identity, err := pass.Identity(ctx, acc.Key, acc.Number)
		if err == nil && identity.DisplayName != "" {
			res.Name = identity.DisplayName
			res.NameSource = SourceIdentity
			res.IdentityID = identity.ID
			res.PhotoURI = identity.PhotoURI
			return res
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			slog.Warn("[Enricher] Lookup failed, using fallback name",
				"key", acc.Key,
				"error", err)
		}
	}

	res.Name, res.NameSource = FallbackName(acc)
	return res
}

// FallbackName picks a display name without an external identity.
func FallbackName(acc aggregation.Accumulator) (string, NameSource) {
	if acc.Key == aggregation.PrivateKey {
		return PrivateNumberLabel, SourcePrivate
	}
	// A name that only echoes a raw number is no name.
	if acc.CachedName != "" && acc.CachedName != acc.NameNumber && acc.CachedName != acc.Number {
		return acc.CachedName, SourceCachedName
	}
	return phone.Format(acc.Number), SourceFormatted
}
