package enrichment

import (
	"context"
	"fmt"
	"os"

	"github.com/aevon-lab/callstats/internal/core/phone"
	"gopkg.in/yaml.v3"
)

// NoopLookup knows no identities.
type NoopLookup struct{}

func (NoopLookup) Lookup(context.Context, string) (*Identity, error) {
	return nil, ErrNotFound
}

// Contact is one entry of a contacts file.
type Contact struct {
	Identity `yaml:",inline"`
	Numbers  []string `yaml:"numbers"`
}

type contactsFile struct {
	Contacts []Contact `yaml:"contacts"`
}

// StaticLookup matches numbers against a fixed contact list by normalized
// number.
type StaticLookup struct {
	byNumber map[string]Identity
}

// NewStaticLookup indexes contacts. Later contacts win on a shared number.
func NewStaticLookup(contacts []Contact) *StaticLookup {
	s := &StaticLookup{byNumber: make(map[string]Identity)}
	for _, c := range contacts {
		for _, n := range c.Numbers {
			if key := phone.Normalize(n); key != "" {
				s.byNumber[key] = c.Identity
			}
		}
	}
	return s
}

// LoadContacts reads a YAML contacts file:
//
//	contacts:
//	  - id: c-1
//	    name: Alice
//	    photo: https://example.com/alice.png
//	    numbers: ["+1 555 123 4567"]
func LoadContacts(path string) (*StaticLookup, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read contacts file: %w", err)
	}
	var file contactsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse contacts file %s: %w", path, err)
	}
	return NewStaticLookup(file.Contacts), nil
}

// Len returns the number of indexed phone numbers.
func (s *StaticLookup) Len() int {
	return len(s.byNumber)
}

func (s *StaticLookup) Lookup(ctx context.Context, number string) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	identity, ok := s.byNumber[phone.Normalize(number)]
	if !ok {
		return nil, ErrNotFound
	}
	return &identity, nil
}
