package enrichment

import (
	"context"
	"errors"

	"github.com/aevon-lab/callstats/internal/core/aggregation"
)

// PrivateNumberLabel is the display name of the private-caller bucket.
const PrivateNumberLabel = "Private Number"

var (
	// ErrNotFound means the lookup ran and knows no identity for the number.
	ErrNotFound = errors.New("identity not found")

	// ErrLookupFailed wraps lookup errors other than ErrNotFound. The caller
	// falls back to the next name source.
	ErrLookupFailed = errors.New("identity lookup failed")
)

// Identity is an external contact record matched to a phone number.
type Identity struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"name"`
	PhotoURI    string `json:"photo_uri,omitempty" yaml:"photo"`
}

// IdentityLookup resolves a raw number to an external identity. It may be
// slow and is only called off the request path.
type IdentityLookup interface {
	// Lookup returns ErrNotFound when no identity matches.
	Lookup(ctx context.Context, number string) (*Identity, error)
}

// NameSource records which fallback step produced a display name.
type NameSource string

const (
	SourceIdentity   NameSource = "identity"
	SourcePrivate    NameSource = "private"
	SourceCachedName NameSource = "cached_name"
	SourceFormatted  NameSource = "formatted"
)

// Enriched is an accumulator with its resolved identity.
type Enriched struct {
	aggregation.Accumulator

	Name       string
	NameSource NameSource
	IdentityID string
	PhotoURI   string
}
