// Package phone canonicalizes raw phone-number strings and classifies
// private or unknown callers.
package phone

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// significantDigits is how many trailing digits identify a subscriber.
	// Longer numbers are assumed to carry a country or trunk prefix.
	significantDigits = 10

	// minValidDigits admits short codes such as carrier service numbers.
	minValidDigits = 3
)

// Sentinels some call-history providers report instead of a number.
var reservedSentinels = map[string]struct{}{
	"-1": {},
	"-2": {},
	"-3": {},
}

var privateMarkers = []string{"private", "unknown", "blocked", "restricted", "anonymous"}

// Normalize returns the comparison key for a raw number: its digits, keeping
// only the last ten when there are more. Normalize is total and idempotent.
//
// Input is NFKC-folded first so full-width and other compatibility digits
// compare equal to their ASCII forms.
func Normalize(raw string) string {
	d := Digits(raw)
	if len(d) > significantDigits {
		d = d[len(d)-significantDigits:]
	}
	return d
}

// Digits returns every ASCII digit of raw after compatibility folding.
func Digits(raw string) string {
	folded := norm.NFKC.String(raw)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsPrivate reports whether raw denotes a withheld or unknown caller.
func IsPrivate(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return true
	}
	if _, ok := reservedSentinels[s]; ok {
		return true
	}

	lower := strings.ToLower(s)
	for _, marker := range privateMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// IsValid reports whether raw has enough digits to identify a caller.
func IsValid(raw string) bool {
	return len(Digits(raw)) >= minValidDigits
}

// Format renders a number for display: (AAA) PPP-LLLL, with a leading
// +country code when more than ten digits are present.
func Format(raw string) string {
	d := Digits(raw)

	switch {
	case len(d) > significantDigits:
		cc := d[:len(d)-significantDigits]
		return "+" + cc + " " + formatTen(d[len(d)-significantDigits:])
	case len(d) == significantDigits:
		return formatTen(d)
	case len(d) == 7:
		return d[:3] + "-" + d[3:]
	case d == "":
		return strings.TrimSpace(raw)
	default:
		return d
	}
}

func formatTen(d string) string {
	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
}
