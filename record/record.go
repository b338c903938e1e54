// Package record defines the harvested article types and the set semantics
// shared by every site family.
package record

import "time"

// Placeholder is substituted for optional text fields that a page leaves
// out.
const Placeholder = "-"

// Record is one validated harvested article. Two records are the same
// article iff their keys (source URLs) are equal.
type Record interface {
	// Key returns the source URL that identifies the record.
	Key() string

	// Published returns the article's publish time.
	Published() time.Time

	// Columns returns the record kind's default export columns in order.
	Columns() []string

	// Fields returns a flat field-to-value mapping for export. It may
	// contain computed fields beyond Columns.
	Fields() map[string]string
}

// Same reports whether a and b identify the same article.
func Same(a, b Record) bool {
	return a.Key() == b.Key()
}

// InWindow reports whether t lies strictly inside (start, end).
func InWindow(t, start, end time.Time) bool {
	return t.After(start) && t.Before(end)
}

// Dedupe collapses records with the same key, keeping the first
// occurrence. The relative order of the survivors is preserved.
func Dedupe[T Record](records []T) []T {
	seen := make(map[string]struct{}, len(records))
	out := make([]T, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Key()]; ok {
			continue
		}
		seen[r.Key()] = struct{}{}
		out = append(out, r)
	}
	return out
}

// FilterWindow returns the records published strictly inside (start, end).
func FilterWindow[T Record](records []T, start, end time.Time) []T {
	var kept []T
	for _, r := range records {
		if InWindow(r.Published(), start, end) {
			kept = append(kept, r)
		}
	}
	return kept
}
