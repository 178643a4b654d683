package cache

import (
	"sort"
	"strings"

	"github.com/boardkit/livecache/pkg/models"
)

// Filter is a canonicalized set of equality predicates for a list query.
// Values compare against Record.FilterValue output, so absent optional
// references are the empty string.
type Filter map[string]string

func (f Filter) clone() Filter {
	if f == nil {
		return Filter{}
	}
	c := make(Filter, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}

// canonical renders the filter deterministically so equal filters always
// produce equal map keys.
func (f Filter) canonical() string {
	if len(f) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(f[k])
	}
	return b.String()
}

// Key addresses one cached query entry: a list query (kind + filter) or a
// detail query (kind + id).
type Key struct {
	Kind   models.Kind
	Filter Filter
	ID     models.ID
}

// ListKey builds the key for a filtered list query. The filter is normalized
// against the kind's filterable fields so that e.g. a stray "sort" parameter
// can never split one logical query into two cache entries.
func ListKey(kind models.Kind, filter Filter) Key {
	return Key{Kind: kind, Filter: NormalizeFilter(kind, filter)}
}

// DetailKey builds the key for a single-record query.
func DetailKey(kind models.Kind, id models.ID) Key {
	return Key{Kind: kind, ID: id}
}

// Detail reports whether the key addresses a single-record entry.
func (k Key) Detail() bool { return !k.ID.IsZero() }

func (k Key) String() string {
	if k.Detail() {
		return string(k.Kind) + "/" + k.ID.String()
	}
	return string(k.Kind) + "?" + k.Filter.canonical()
}
