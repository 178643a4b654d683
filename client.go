package livecache

import (
	"context"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/connection"
	"github.com/boardkit/livecache/pkg/ingest"
	"github.com/boardkit/livecache/pkg/logger"
	"github.com/boardkit/livecache/pkg/mutate"
)

// Client ties the entity store, the mutation executor and the realtime
// ingestor together behind per-collection accessors. All methods are safe
// for concurrent use.
type Client struct {
	store    *cache.Store
	remote   connection.RemoteService
	feed     connection.Feed
	session  connection.Session
	exec     *mutate.Executor
	notifier mutate.Notifier
	log      logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Client)

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithNotifier routes mutation failure feedback somewhere user-visible.
func WithNotifier(n mutate.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// New connects to the backend described by cfg and starts the realtime
// ingestor. Callers must Close the client to release the feed connection.
func New(ctx context.Context, cfg connection.Config, session connection.Session, opts ...Option) (*Client, error) {
	remote := connection.NewRESTClient(cfg)
	feed, err := connection.DialFeed(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}
	c, err := FromServices(remote, feed, session, opts...)
	if err != nil {
		_ = feed.Close(ctx)
		return nil, err
	}
	return c, nil
}

// FromServices wires a client from caller-provided services. Tests and
// embedders that manage their own transports use this entry point.
func FromServices(remote connection.RemoteService, feed connection.Feed, session connection.Session, opts ...Option) (*Client, error) {
	c := &Client{
		store:   cache.New(),
		remote:  remote,
		feed:    feed,
		session: session,
		log:     logger.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	notify := c.notifier
	execOpts := []mutate.Option{mutate.WithLogger(c.log)}
	if notify != nil {
		execOpts = append(execOpts, mutate.WithNotifier(notify))
	}
	c.exec = mutate.NewExecutor(c.store, remote, session, execOpts...)

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	ing := ingest.New(c.store, feed, ingest.WithLogger(c.log))
	go func() {
		defer close(c.done)
		if err := ing.Run(runCtx); err != nil {
			c.log.Error("realtime ingestor stopped", "error", err)
		}
	}()
	return c, nil
}

// Close stops the ingestor and closes the feed connection.
func (c *Client) Close(ctx context.Context) error {
	c.cancel()
	err := c.feed.Close(ctx)
	select {
	case <-c.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// Store exposes the underlying entity store, mainly for inspection in tests.
func (c *Client) Store() *cache.Store { return c.store }
