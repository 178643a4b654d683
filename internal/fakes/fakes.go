// Package fakes provides in-memory stand-ins for the remote service and the
// realtime feed, used by tests across the module. Behavior is overridable per
// call through function fields; the defaults act like a well-behaved server
// with an in-memory table per collection.
package fakes

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/connection"
	"github.com/boardkit/livecache/pkg/models"
)

// UpdateCall records one Update invocation for assertion.
type UpdateCall struct {
	Kind   models.Kind
	ID     models.ID
	Fields map[string]any
}

// Remote is a fake connection.RemoteService. Zero value is ready to use.
type Remote struct {
	mu   sync.Mutex
	seq  int
	rows map[string]models.Record

	SelectFn    func(ctx context.Context, kind models.Kind, filter map[string]string) ([]models.Record, error)
	SelectOneFn func(ctx context.Context, kind models.Kind, id models.ID) (models.Record, error)
	InsertFn    func(ctx context.Context, kind models.Kind, rec models.Record) (models.Record, error)
	UpdateFn    func(ctx context.Context, kind models.Kind, id models.ID, fields map[string]any) (models.Record, error)
	DeleteFn    func(ctx context.Context, kind models.Kind, id models.ID) error

	Inserts []models.Record
	Updates []UpdateCall
	Deletes []models.ID
}

var _ connection.RemoteService = (*Remote)(nil)

// Seed places a record in the fake's table without going through Insert.
func (r *Remote) Seed(recs ...models.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rows == nil {
		r.rows = make(map[string]models.Record)
	}
	for _, rec := range recs {
		r.rows[rec.RecordID().String()] = rec
	}
}

// NextID returns the server id the next default Insert will assign.
func (r *Remote) NextID() models.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.ServerID(fmt.Sprintf("srv-%d", r.seq+1))
}

func (r *Remote) Select(ctx context.Context, kind models.Kind, filter map[string]string) ([]models.Record, error) {
	if r.SelectFn != nil {
		return r.SelectFn(ctx, kind, filter)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Record
	for _, rec := range r.rows {
		if rec.RecordKind() == kind && cache.Matches(rec, cache.Filter(filter)) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *Remote) SelectOne(ctx context.Context, kind models.Kind, id models.ID) (models.Record, error) {
	if r.SelectOneFn != nil {
		return r.SelectOneFn(ctx, kind, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[id.String()]
	if !ok || rec.RecordKind() != kind {
		return nil, nil
	}
	return rec, nil
}

func (r *Remote) Insert(ctx context.Context, kind models.Kind, rec models.Record) (models.Record, error) {
	if r.InsertFn != nil {
		return r.InsertFn(ctx, kind, rec)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	created, err := WithID(rec, models.ServerID(fmt.Sprintf("srv-%d", r.seq)))
	if err != nil {
		return nil, err
	}
	if r.rows == nil {
		r.rows = make(map[string]models.Record)
	}
	r.rows[created.RecordID().String()] = created
	r.Inserts = append(r.Inserts, created)
	return created, nil
}

func (r *Remote) Update(ctx context.Context, kind models.Kind, id models.ID, fields map[string]any) (models.Record, error) {
	if r.UpdateFn != nil {
		return r.UpdateFn(ctx, kind, id, fields)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Updates = append(r.Updates, UpdateCall{Kind: kind, ID: id, Fields: fields})
	rec, ok := r.rows[id.String()]
	if !ok {
		return nil, connection.ErrNotFound
	}
	updated := rec.Merge(fields, time.Now())
	r.rows[id.String()] = updated
	return updated, nil
}

func (r *Remote) Delete(ctx context.Context, kind models.Kind, id models.ID) error {
	if r.DeleteFn != nil {
		return r.DeleteFn(ctx, kind, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deletes = append(r.Deletes, id)
	delete(r.rows, id.String())
	return nil
}

// WithID returns a copy of rec carrying id, leaving every other field as is.
func WithID(rec models.Record, id models.ID) (models.Record, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var row map[string]any
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, err
	}
	row["id"] = id.String()
	return models.Decode(rec.RecordKind(), row)
}

// Feed is a fake connection.Feed; tests push notifications with Emit.
type Feed struct {
	mu     sync.Mutex
	subs   map[models.Kind]chan connection.Notification
	closed bool
}

var _ connection.Feed = (*Feed)(nil)

func NewFeed() *Feed {
	return &Feed{subs: make(map[models.Kind]chan connection.Notification)}
}

func (f *Feed) Subscribe(ctx context.Context, kind models.Kind) (<-chan connection.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, connection.ErrClosed
	}
	ch, ok := f.subs[kind]
	if !ok {
		ch = make(chan connection.Notification, 64)
		f.subs[kind] = ch
	}
	return ch, nil
}

// Emit delivers a notification to the kind's subscriber. Events emitted
// before anyone subscribes are buffered on the channel a later Subscribe
// will return.
func (f *Feed) Emit(note connection.Notification) {
	f.mu.Lock()
	ch, ok := f.subs[note.Kind]
	if !ok {
		ch = make(chan connection.Notification, 64)
		f.subs[note.Kind] = ch
	}
	f.mu.Unlock()
	ch <- note
}

func (f *Feed) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	for _, ch := range f.subs {
		close(ch)
	}
	return nil
}
