package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"

	"github.com/boardkit/livecache/pkg/logger"
	"github.com/boardkit/livecache/pkg/models"
)

// DefaultDialer is the gorilla dialer used by WebSocketFeed, with compression
// enabled and the cbor subprotocol announced.
var DefaultDialer = &gorilla.Dialer{
	Proxy:             gorilla.DefaultDialer.Proxy,
	HandshakeTimeout:  gorilla.DefaultDialer.HandshakeTimeout,
	EnableCompression: true,
	Subprotocols:      []string{"cbor"},
}

// WebSocketFeed implements Feed over a single websocket connection. One read
// loop fans incoming change frames out to per-collection channels; delivery to
// the subscriber is best effort in order, at-least-once as provided by the
// server.
type WebSocketFeed struct {
	conn     *gorilla.Conn
	connLock sync.Mutex
	log      logger.Logger

	subs     map[models.Kind]chan Notification
	subsLock sync.RWMutex

	closeChan chan struct{}
	closeOnce sync.Once
}

var _ Feed = (*WebSocketFeed)(nil)

// DialFeed connects to the realtime feed endpoint and starts the read loop.
func DialFeed(ctx context.Context, cfg Config, log logger.Logger) (*WebSocketFeed, error) {
	if log == nil {
		log = logger.NewSlog(slog.NewJSONHandler(os.Stdout, nil))
	}

	header := map[string][]string{}
	if cfg.Token != "" {
		header["Authorization"] = []string{"Bearer " + cfg.Token}
	}
	header["NS"] = []string{cfg.Namespace}

	conn, res, err := DefaultDialer.DialContext(ctx, cfg.feedURL(), header)
	if err != nil {
		return nil, fmt.Errorf("dialing feed: %w", err)
	}
	defer res.Body.Close()

	f := &WebSocketFeed{
		conn:      conn,
		log:       log,
		subs:      make(map[models.Kind]chan Notification),
		closeChan: make(chan struct{}),
	}
	go f.readLoop()
	return f, nil
}

// subscribeFrame asks the server to start streaming a collection's changes.
type subscribeFrame struct {
	ID         string `json:"id"`
	Method     string `json:"method"`
	Collection string `json:"collection"`
}

// Subscribe registers for one collection's change events. The returned
// channel stays open until the feed is closed. Subscribing to the same
// collection twice returns the existing channel.
func (f *WebSocketFeed) Subscribe(ctx context.Context, kind models.Kind) (<-chan Notification, error) {
	select {
	case <-f.closeChan:
		return nil, ErrClosed
	default:
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown collection %q", kind)
	}

	f.subsLock.Lock()
	ch, ok := f.subs[kind]
	if !ok {
		ch = make(chan Notification, 64)
		f.subs[kind] = ch
	}
	f.subsLock.Unlock()
	if ok {
		return ch, nil
	}

	frame := subscribeFrame{
		ID:         uuid.NewString(),
		Method:     "live",
		Collection: string(kind),
	}
	if err := f.write(frame); err != nil {
		f.subsLock.Lock()
		delete(f.subs, kind)
		f.subsLock.Unlock()
		return nil, fmt.Errorf("subscribing to %s: %w", kind, err)
	}
	return ch, nil
}

// Close tears the connection down. A close frame is written on a best-effort
// basis; local resources are released regardless.
func (f *WebSocketFeed) Close(ctx context.Context) error {
	var err error
	f.closeOnce.Do(func() {
		close(f.closeChan)

		writeErr := make(chan error, 1)
		go func() {
			f.connLock.Lock()
			defer f.connLock.Unlock()
			writeErr <- f.conn.WriteMessage(gorilla.CloseMessage, gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""))
		}()
		select {
		case werr := <-writeErr:
			if werr != nil {
				f.log.Error("failed to write close message", "error", werr)
			}
		case <-ctx.Done():
		}

		err = f.conn.Close()

		f.subsLock.Lock()
		for kind, ch := range f.subs {
			close(ch)
			delete(f.subs, kind)
		}
		f.subsLock.Unlock()
	})
	return err
}

func (f *WebSocketFeed) write(v any) error {
	data, err := cbor.Marshal(v)
	if err != nil {
		return err
	}
	f.connLock.Lock()
	defer f.connLock.Unlock()
	return f.conn.WriteMessage(gorilla.BinaryMessage, data)
}

func (f *WebSocketFeed) readLoop() {
	for {
		select {
		case <-f.closeChan:
			return
		default:
			_, data, err := f.conn.ReadMessage()
			if err != nil {
				if f.handleReadError(err) {
					return
				}
				continue
			}
			f.dispatch(data)
		}
	}
}

// handleReadError reports whether the read loop should exit.
func (f *WebSocketFeed) handleReadError(err error) bool {
	if errors.Is(err, net.ErrClosed) || gorilla.IsUnexpectedCloseError(err) {
		return true
	}
	f.log.Error("feed read failed", "error", err)
	return false
}

func (f *WebSocketFeed) dispatch(data []byte) {
	var n Notification
	if err := cbor.Unmarshal(data, &n); err != nil {
		f.log.Error("discarding undecodable feed frame", "error", err)
		return
	}
	if !n.Kind.Valid() {
		f.log.Error("feed frame for unknown collection", "collection", string(n.Kind))
		return
	}

	f.subsLock.RLock()
	ch, ok := f.subs[n.Kind]
	f.subsLock.RUnlock()
	if !ok {
		f.log.Debug("dropping event for unsubscribed collection", "collection", string(n.Kind))
		return
	}

	select {
	case ch <- n:
	case <-f.closeChan:
	}
}
