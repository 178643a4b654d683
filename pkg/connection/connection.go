// Package connection holds the contracts the cache engine consumes from the
// outside world (the hosted data service, its realtime change feed and the
// ambient identity), together with one reference transport for each: an HTTP
// client for CRUD and a websocket client for the feed.
package connection

import (
	"context"
	"errors"

	"github.com/boardkit/livecache/pkg/models"
)

var (
	// ErrNotAuthenticated is returned before any optimistic work happens when
	// no acting user is available, so a call that is guaranteed to fail can
	// never corrupt the cache speculatively.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotFound reports a missing record from the remote data service.
	ErrNotFound = errors.New("record not found")

	// ErrClosed reports use of a connection after Close.
	ErrClosed = errors.New("connection closed")
)

// RemoteService is the client-side contract of the hosted data service. Every
// call returns the affected record(s) as confirmed by the server, including
// server-assigned id, timestamps and position.
type RemoteService interface {
	// Select lists the records of a collection matching the equality filter.
	// Results come back ordered by the collection's position column where it
	// has one, otherwise by creation time.
	Select(ctx context.Context, kind models.Kind, filter map[string]string) ([]models.Record, error)

	// SelectOne fetches a single record. A missing record is (nil, nil).
	SelectOne(ctx context.Context, kind models.Kind, id models.ID) (models.Record, error)

	// Insert creates a record and returns the server's version of it.
	Insert(ctx context.Context, kind models.Kind, rec models.Record) (models.Record, error)

	// Update applies a partial field patch and returns the full resulting
	// record; server-computed fields win over whatever the caller patched.
	Update(ctx context.Context, kind models.Kind, id models.ID, fields map[string]any) (models.Record, error)

	// Delete removes a record.
	Delete(ctx context.Context, kind models.Kind, id models.ID) error
}

// Feed is the realtime change feed contract: a per-collection subscription
// yielding insert/update/delete events. Delivery is at-least-once and carries
// no ordering guarantee relative to RemoteService responses.
type Feed interface {
	Subscribe(ctx context.Context, kind models.Kind) (<-chan Notification, error)
	Close(ctx context.Context) error
}

// Session supplies the acting user's identity. The engine never manages
// authentication itself.
type Session interface {
	UserID(ctx context.Context) (models.ID, error)
}

// StaticSession is a Session with a fixed user, as established by whatever
// authentication layer sits above the engine.
type StaticSession struct {
	User models.ID
}

func (s StaticSession) UserID(context.Context) (models.ID, error) {
	if s.User.IsZero() {
		return models.ID{}, ErrNotAuthenticated
	}
	return s.User, nil
}
