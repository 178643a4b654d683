// Package mutate implements the optimistic mutation executor: every write is
// applied to the local cache before the network round-trip, then reconciled
// with the server response or rolled back from a pre-mutation snapshot.
package mutate

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/connection"
	"github.com/boardkit/livecache/pkg/logger"
	"github.com/boardkit/livecache/pkg/models"
)

// Notifier surfaces user-visible mutation feedback, the toast analogue.
type Notifier interface {
	Failure(msg string, err error)
}

// LogNotifier reports failures to the log only. UIs substitute their own.
type LogNotifier struct {
	Log logger.Logger
}

func (n LogNotifier) Failure(msg string, err error) {
	n.Log.Error(msg, "error", err)
}

// Executor owns the three-phase mutation protocol for one store. It is safe
// for concurrent use; the store serializes individual cache operations and
// the reorder version counter resolves races between overlapping reorders.
type Executor struct {
	store   *cache.Store
	remote  connection.RemoteService
	session connection.Session
	log     logger.Logger
	notify  Notifier
	now     func() time.Time

	// reorderSeq tags each reorder invocation; only callbacks holding the
	// current maximum may roll back or surface errors.
	reorderSeq atomic.Uint64
}

type Option func(*Executor)

func WithLogger(l logger.Logger) Option {
	return func(e *Executor) { e.log = l }
}

func WithNotifier(n Notifier) Option {
	return func(e *Executor) { e.notify = n }
}

// WithClock overrides the time source, for tests that pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

func NewExecutor(store *cache.Store, remote connection.RemoteService, session connection.Session, opts ...Option) *Executor {
	e := &Executor{
		store:   store,
		remote:  remote,
		session: session,
		log:     logger.Nop{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.notify == nil {
		e.notify = LogNotifier{Log: e.log}
	}
	return e
}

// label turns a collection name into a human word for notifications.
func label(kind models.Kind) string {
	return strings.ReplaceAll(strings.TrimSuffix(string(kind), "s"), "_", " ")
}
