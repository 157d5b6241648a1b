// Package normalize provides the small field-normalization and loose-matching
// helpers shared by the document rules. Values coming out of extraction are
// untyped and messy; every comparison in the rule set funnels through here so
// the tolerance rules live in one place.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Text collapses internal whitespace and trims. It does not fold case; case
// handling is explicit at each call site.
func Text(v any) string {
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprintf("%v", v)
	}
	return strings.Join(strings.Fields(s), " ")
}

// Key lowercases and strips everything that is not a letter or digit. It is
// only meant for loose identity comparisons, never for display.
func Key(v any) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(Text(v)) {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// NamesLike reports whether two names plausibly refer to the same person.
// Both sides are reduced via Key; exact match or substring containment counts
// as a match, which tolerates missing middle names and transliteration
// variants. This is a heuristic, not identity verification.
func NamesLike(a, b any) bool {
	na := Key(a)
	nb := Key(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// ParseISODate parses a time.Time value or an ISO-8601 date string. It never
// fails loudly; anything unparsable yields nil.
func ParseISODate(v any) *time.Time {
	if v == nil {
		return nil
	}
	if t, ok := v.(time.Time); ok {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	if t, ok := v.(*time.Time); ok {
		if t == nil {
			return nil
		}
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	s := Text(v)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

var numberToken = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// ParseNumber accepts numeric values or strings carrying thousands
// separators and surrounding noise ("USD 1,234.50"). It extracts the first
// signed decimal token after stripping commas and returns nil on failure.
func ParseNumber(v any) *float64 {
	if v == nil {
		return nil
	}
	switch n := v.(type) {
	case bool:
		return nil
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	}
	s := strings.ReplaceAll(Text(v), ",", "")
	if s == "" {
		return nil
	}
	tok := numberToken.FindString(s)
	if tok == "" {
		return nil
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Dedup normalizes each entry, drops empties and duplicates, and preserves
// first-seen order.
func Dedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		s := Text(it)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
