package livecache

import (
	"context"
	"fmt"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/models"
)

// list serves a collection view from the cache when fresh, otherwise fetches
// it from the remote service and caches the result. Unknown filter fields
// are dropped before the key is formed so equivalent queries share an entry.
func (c *Client) list(ctx context.Context, kind models.Kind, filter cache.Filter) ([]models.Record, error) {
	filter = cache.NormalizeFilter(kind, filter)
	key := cache.ListKey(kind, filter)

	if entry, ok := c.store.Get(key); ok && entry.State == cache.Fresh {
		return entry.List, nil
	}

	rows, err := c.remote.Select(ctx, kind, filter)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, cache.Entry{List: rows, State: cache.Fresh})
	return rows, nil
}

// get serves a detail view. An Absent entry means the record is known to be
// deleted and returns nil without error, matching the remote service's
// convention for missing records.
func (c *Client) get(ctx context.Context, kind models.Kind, id models.ID) (models.Record, error) {
	key := cache.DetailKey(kind, id)

	if entry, ok := c.store.Get(key); ok {
		switch entry.State {
		case cache.Fresh:
			return entry.Item, nil
		case cache.Absent:
			return nil, nil
		}
	}

	rec, err := c.remote.SelectOne(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		c.store.Set(key, cache.Entry{State: cache.Absent})
		return nil, nil
	}
	c.store.Set(key, cache.Entry{Item: rec, State: cache.Fresh})
	return rec, nil
}

// recordsAs narrows a record slice to its concrete type. Cached lists are
// homogeneous per collection, so a mismatch is a programming error.
func recordsAs[T models.Record](rows []models.Record) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, rec := range rows {
		typed, ok := rec.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected record type %T in %s list", rec, rec.RecordKind())
		}
		out = append(out, typed)
	}
	return out, nil
}

func recordAs[T models.Record](rec models.Record, err error) (T, error) {
	var zero T
	if err != nil || rec == nil {
		return zero, err
	}
	typed, ok := rec.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected record type %T", rec)
	}
	return typed, nil
}
