// Package ingest merges realtime change notifications into the cache. Every
// connected client, including the one that originated a write, receives the
// same feed events; the merge rules below keep echoes idempotent and resolve
// concurrent edits by server timestamp.
package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/connection"
	"github.com/boardkit/livecache/pkg/logger"
	"github.com/boardkit/livecache/pkg/models"
)

// Ingestor subscribes to the realtime feed and applies each notification to
// the store. It never issues network reads; everything it needs rides on the
// notification payload.
type Ingestor struct {
	store *cache.Store
	feed  connection.Feed
	log   logger.Logger

	wg sync.WaitGroup
}

type Option func(*Ingestor)

func WithLogger(l logger.Logger) Option {
	return func(g *Ingestor) { g.log = l }
}

func New(store *cache.Store, feed connection.Feed, opts ...Option) *Ingestor {
	g := &Ingestor{
		store: store,
		feed:  feed,
		log:   logger.Nop{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run subscribes to every collection and consumes notifications until the
// context is cancelled or the feed closes. It returns after all consumer
// goroutines have drained.
func (g *Ingestor) Run(ctx context.Context) error {
	for _, kind := range models.Kinds() {
		ch, err := g.feed.Subscribe(ctx, kind)
		if err != nil {
			return err
		}
		g.wg.Add(1)
		go g.consume(ctx, kind, ch)
	}
	g.wg.Wait()
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (g *Ingestor) consume(ctx context.Context, kind models.Kind, ch <-chan connection.Notification) {
	defer g.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case note, ok := <-ch:
			if !ok {
				return
			}
			if note.Kind == "" {
				note.Kind = kind
			}
			g.Apply(note)
		}
	}
}

// Apply merges one notification into the store. Unknown collections and
// undecodable payloads are logged and skipped; a malformed event must never
// poison the cache.
func (g *Ingestor) Apply(note connection.Notification) {
	if !note.Kind.Valid() {
		g.log.Warn("ignoring notification for unknown collection", "collection", string(note.Kind))
		return
	}
	switch note.Action {
	case connection.ActionInsert:
		rec, err := models.Decode(note.Kind, note.New)
		if err != nil {
			g.log.Warn("dropping undecodable insert", "collection", string(note.Kind), "error", err)
			return
		}
		g.applyInsert(rec)
	case connection.ActionUpdate:
		rec, err := models.Decode(note.Kind, note.New)
		if err != nil {
			g.log.Warn("dropping undecodable update", "collection", string(note.Kind), "error", err)
			return
		}
		g.applyUpdate(rec)
	case connection.ActionDelete:
		id, ok := payloadID(note.Old)
		if !ok {
			id, ok = payloadID(note.New)
		}
		if !ok {
			g.log.Warn("dropping delete without id", "collection", string(note.Kind))
			return
		}
		g.applyDelete(note.Kind, id)
	default:
		g.log.Warn("ignoring notification with unknown action", "action", string(note.Action))
	}
}

// applyInsert places a new record into every cached list it belongs in. An
// echo of a locally settled create replaces the existing element in place;
// otherwise the record is inserted per the collection's ordering policy. Any
// optimistic placeholder with the same content is swept, covering the window
// where the echo lands before the originating mutation settles.
func (g *Ingestor) applyInsert(rec models.Record) {
	kind := rec.RecordKind()
	pol := models.PolicyFor(kind)
	key := rec.ContentKey()

	for _, ke := range g.store.AllOf(kind) {
		if ke.Key.Detail() {
			continue
		}
		g.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
			if !ok {
				return entry, false
			}
			list := entry.List
			changed := false

			if idx := cache.IndexOfID(list, rec.RecordID()); idx >= 0 {
				list = cache.ReplaceID(list, rec.RecordID(), rec)
				changed = true
			} else if cache.Matches(rec, ke.Key.Filter) {
				list = cache.Insert(list, rec, pol.Order)
				changed = true
			}

			if swept := sweepPlaceholders(list, rec.RecordID(), key); swept != nil {
				list = swept
				changed = true
			}
			if !changed {
				return entry, false
			}
			entry.List = list
			return entry, true
		})
	}
}

// applyUpdate corrects every cached view of the record. List membership is
// re-evaluated against each list's filter, so an update that moves a record
// out of a filtered list removes it, and one that moves it in inserts it.
// Concurrent edits resolve last-write-wins by the server's UpdatedAt. The
// detail entry is only patched for collections whose policy syncs details;
// the rest treat their detail caches as owned by explicit fetches and
// targeted mutations.
func (g *Ingestor) applyUpdate(rec models.Record) {
	kind := rec.RecordKind()
	pol := models.PolicyFor(kind)

	for _, ke := range g.store.AllOf(kind) {
		if ke.Key.Detail() {
			if !pol.DetailSync || ke.Key.ID != rec.RecordID() {
				continue
			}
			g.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
				if !ok || entry.Item == nil {
					return entry, false
				}
				if rec.UpdatedAtTime().Before(entry.Item.UpdatedAtTime()) {
					return entry, false
				}
				entry.Item = rec
				return entry, true
			})
			continue
		}

		g.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
			if !ok {
				return entry, false
			}
			idx := cache.IndexOfID(entry.List, rec.RecordID())
			belongs := cache.Matches(rec, ke.Key.Filter)
			switch {
			case idx >= 0 && !belongs:
				entry.List = cache.RemoveID(entry.List, rec.RecordID())
			case idx < 0 && belongs:
				entry.List = cache.Insert(entry.List, rec, pol.Order)
			case idx >= 0:
				if rec.UpdatedAtTime().Before(entry.List[idx].UpdatedAtTime()) {
					return entry, false
				}
				entry.List = cache.ReplaceID(entry.List, rec.RecordID(), rec)
			default:
				return entry, false
			}
			return entry, true
		})
	}
}

func (g *Ingestor) applyDelete(kind models.Kind, id models.ID) {
	for _, ke := range g.store.AllOf(kind) {
		if ke.Key.Detail() {
			if ke.Key.ID != id {
				continue
			}
			g.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
				if !ok || entry.State == cache.Absent {
					return entry, false
				}
				return cache.Entry{State: cache.Absent}, true
			})
			continue
		}
		g.store.Modify(ke.Key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
			if !ok || cache.IndexOfID(entry.List, id) < 0 {
				return entry, false
			}
			entry.List = cache.RemoveID(entry.List, id)
			return entry, true
		})
	}
}

// sweepPlaceholders drops temporary-id records whose content matches the
// settled record, keeping the element with the server id. Returns nil when
// nothing was swept.
func sweepPlaceholders(list []models.Record, settled models.ID, contentKey string) []models.Record {
	out := make([]models.Record, 0, len(list))
	swept := false
	for _, rec := range list {
		if rec.RecordID().Temporary() && rec.RecordID() != settled && rec.ContentKey() == contentKey {
			swept = true
			continue
		}
		out = append(out, rec)
	}
	if !swept {
		return nil
	}
	return out
}

func payloadID(row map[string]any) (models.ID, bool) {
	if row == nil {
		return models.ID{}, false
	}
	raw, ok := row["id"].(string)
	if !ok || raw == "" {
		return models.ID{}, false
	}
	return models.ParseID(raw), true
}
