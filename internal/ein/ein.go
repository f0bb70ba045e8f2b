// Package ein canonicalizes organization identifiers (Employer Identification
// Numbers) so that raw values from different sources can be compared.
package ein

import (
	"fmt"
	"strings"
)

// Normalize strips every character that is not an ASCII decimal digit.
// Digits are filtered one by one and never reinterpreted, so leading zeros
// survive. An input without digits normalizes to the empty string.
func Normalize(raw string) string {
	// Fast path: already canonical.
	clean := true
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			clean = false
			break
		}
	}
	if clean {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NormalizeAny formats v with fmt and normalizes the result, for exports that
// deliver identifiers as numbers. Only the rendered digits count.
func NormalizeAny(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return Normalize(t)
	case fmt.Stringer:
		return Normalize(t.String())
	default:
		return Normalize(fmt.Sprint(t))
	}
}

// Format renders a nine-digit identifier in the conventional NN-NNNNNNN form.
// Identifiers of any other length are returned unchanged.
func Format(id string) string {
	if len(id) != 9 {
		return id
	}
	return id[:2] + "-" + id[2:]
}
