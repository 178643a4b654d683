package cache

import "github.com/boardkit/livecache/pkg/models"

// Matches reports whether a record belongs in a list entry with the given
// filter. Both the mutation executor and the realtime ingestor route through
// here, so membership decisions can never diverge between the two write
// paths.
func Matches(rec models.Record, f Filter) bool {
	for field, want := range f {
		got, ok := rec.FilterValue(field)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// NormalizeFilter restricts a filter to the fields the kind actually supports
// filtering on, per the kind's policy. Fields outside that set are dropped
// rather than silently creating unmatchable cache entries.
func NormalizeFilter(kind models.Kind, f Filter) Filter {
	pol := models.PolicyFor(kind)
	out := make(Filter, len(f))
	for _, field := range pol.FilterFields {
		if v, ok := f[field]; ok {
			out[field] = v
		}
	}
	return out
}
