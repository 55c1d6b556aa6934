package enrichment_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	v1 "github.com/aevon-lab/callstats/internal/api/v1"
	"github.com/aevon-lab/callstats/internal/core/aggregation"
	"github.com/aevon-lab/callstats/internal/enrichment"
	enrichmentmocks "github.com/aevon-lab/callstats/internal/mocks/enrichment"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFallbackName(t *testing.T) {
	tests := []struct {
		name       string
		acc        aggregation.Accumulator
		wantName   string
		wantSource enrichment.NameSource
	}{
		{
			name:       "private key",
			acc:        aggregation.Accumulator{Key: aggregation.PrivateKey, CachedName: "Someone"},
			wantName:   enrichment.PrivateNumberLabel,
			wantSource: enrichment.SourcePrivate,
		},
		{
			name:       "cached name",
			acc:        aggregation.Accumulator{Key: "5551234567", Number: "5551234567", CachedName: "Bob"},
			wantName:   "Bob",
			wantSource: enrichment.SourceCachedName,
		},
		{
			name:       "cached name equal to number is ignored",
			acc:        aggregation.Accumulator{Key: "5551234567", Number: "5551234567", CachedName: "5551234567"},
			wantName:   "(555) 123-4567",
			wantSource: enrichment.SourceFormatted,
		},
		{
			name:       "country code",
			acc:        aggregation.Accumulator{Key: "5551234567", Number: "+1 555-123-4567"},
			wantName:   "+1 (555) 123-4567",
			wantSource: enrichment.SourceFormatted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, source := enrichment.FallbackName(tt.acc)
			require.Equal(t, tt.wantName, name)
			require.Equal(t, tt.wantSource, source)
		})
	}
}

func TestFallbackName_NumberEchoFromOlderRecord(t *testing.T) {
	records := []v1.CallRecord{
		{ID: "a", Number: "+15551234567", CachedName: "+15551234567", Type: v1.CallIncoming, Timestamp: 1000},
		{ID: "b", Number: "5551234567", Type: v1.CallOutgoing, Timestamp: 2000},
	}

	accs := aggregation.Aggregate(records).All()
	require.Len(t, accs, 1)
	require.Equal(t, "5551234567", accs[0].Number)
	require.Equal(t, "+15551234567", accs[0].NameNumber)

	name, source := enrichment.FallbackName(accs[0])
	require.Equal(t, "(555) 123-4567", name)
	require.Equal(t, enrichment.SourceFormatted, source)
}

func TestEnricher_Enrich(t *testing.T) {
	lookup := enrichmentmocks.NewIdentityLookup(t)
	lookup.EXPECT().Lookup(mock.Anything, "555-123-4567").
		Return(&enrichment.Identity{ID: "c-1", DisplayName: "Alice", PhotoURI: "photo://alice"}, nil).Once()
	lookup.EXPECT().Lookup(mock.Anything, "5559876543").
		Return(nil, enrichment.ErrNotFound).Once()
	lookup.EXPECT().Lookup(mock.Anything, "5550000000").
		Return(nil, errors.New("contacts provider crashed")).Once()

	accs := []aggregation.Accumulator{
		{Key: "5551234567", Number: "555-123-4567", CachedName: "Al"},
		{Key: "5559876543", Number: "5559876543", CachedName: "Bob"},
		{Key: "5550000000", Number: "5550000000"},
		{Key: aggregation.PrivateKey, Number: "-1"},
	}

	out := enrichment.NewEnricher(lookup, enrichment.Options{Workers: 2}).Enrich(context.Background(), accs)
	require.Len(t, out, 4)

	require.Equal(t, "Alice", out[0].Name)
	require.Equal(t, enrichment.SourceIdentity, out[0].NameSource)
	require.Equal(t, "c-1", out[0].IdentityID)
	require.Equal(t, "photo://alice", out[0].PhotoURI)

	require.Equal(t, "Bob", out[1].Name)
	require.Equal(t, enrichment.SourceCachedName, out[1].NameSource)

	require.Equal(t, "(555) 000-0000", out[2].Name)
	require.Equal(t, enrichment.SourceFormatted, out[2].NameSource)

	require.Equal(t, enrichment.PrivateNumberLabel, out[3].Name)
	require.Equal(t, aggregation.PrivateKey, out[3].Key)
}

func TestEnricher_NilLookupUsesFallbacks(t *testing.T) {
	out := enrichment.NewEnricher(nil, enrichment.Options{}).Enrich(context.Background(), []aggregation.Accumulator{
		{Key: "5551234567", Number: "5551234567"},
	})
	require.Equal(t, "(555) 123-4567", out[0].Name)
}

func TestPass_DedupesConcurrentLookups(t *testing.T) {
	lookup := enrichmentmocks.NewIdentityLookup(t)
	lookup.EXPECT().Lookup(mock.Anything, "5551234567").
		RunAndReturn(func(context.Context, string) (*enrichment.Identity, error) {
			time.Sleep(10 * time.Millisecond)
			return &enrichment.Identity{ID: "c-1", DisplayName: "Alice"}, nil
		}).Once()

	pass := enrichment.NewPass(lookup, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			identity, err := pass.Identity(context.Background(), "5551234567", "5551234567")
			require.NoError(t, err)
			require.Equal(t, "Alice", identity.DisplayName)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, pass.Lookups())
}

func TestPass_LookupTimeout(t *testing.T) {
	lookup := enrichmentmocks.NewIdentityLookup(t)
	lookup.EXPECT().Lookup(mock.Anything, "5551234567").
		RunAndReturn(func(ctx context.Context, _ string) (*enrichment.Identity, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).Once()

	pass := enrichment.NewPass(lookup, 10*time.Millisecond)

	_, err := pass.Identity(context.Background(), "5551234567", "5551234567")
	require.ErrorIs(t, err, enrichment.ErrLookupFailed)

	// the failure is cached for the rest of the pass
	_, err = pass.Identity(context.Background(), "5551234567", "5551234567")
	require.ErrorIs(t, err, enrichment.ErrLookupFailed)
}

func TestLoadContacts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
contacts:
  - id: c-1
    name: Alice
    photo: photo://alice
    numbers: ["+1 (555) 123-4567", "555 000 1111"]
  - id: c-2
    name: Bob
    numbers: ["5559876543"]
`), 0o600))

	lookup, err := enrichment.LoadContacts(path)
	require.NoError(t, err)
	require.Equal(t, 3, lookup.Len())

	identity, err := lookup.Lookup(context.Background(), "555.123.4567")
	require.NoError(t, err)
	require.Equal(t, "Alice", identity.DisplayName)
	require.Equal(t, "photo://alice", identity.PhotoURI)

	_, err = lookup.Lookup(context.Background(), "5551112222")
	require.ErrorIs(t, err, enrichment.ErrNotFound)
}

func TestLoadContacts_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("contacts: [oops"), 0o600))

	_, err := enrichment.LoadContacts(path)
	require.Error(t, err)
}
