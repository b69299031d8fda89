// Package transport owns the push-stream connection of one game session. It
// demultiplexes named wire messages into typed deltas and forwards them to a
// callback; it never interprets their semantics.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Timtam/hitster-sub000/internal/protocol"
)

// ErrInterrupted is reported through the close callback when the connection
// dropped without a local Close. The stream performs no reconnection and no
// gap-filling; the caller must refetch a snapshot before resubscribing.
var ErrInterrupted = errors.New("transport: connection interrupted")

// envelope is the wire framing of one push message.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DeltaFunc receives each successfully decoded delta, in wire order.
type DeltaFunc func(protocol.Delta)

// CloseFunc is invoked exactly once when the stream terminates. err is nil
// after a local Close and ErrInterrupted (wrapped) after a connection drop.
type CloseFunc func(err error)

// Stream is one open push-stream connection.
type Stream struct {
	conn   *websocket.Conn
	log    logrus.FieldLogger
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// Open dials the event stream of the given game and starts delivering
// deltas to onDelta until Close is called or the connection fails.
// Undecodable messages are logged and dropped; the stream continues.
func Open(ctx context.Context, baseURL, gameID string, onDelta DeltaFunc, onClose CloseFunc, log logrus.FieldLogger) (*Stream, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	url := fmt.Sprintf("%s/api/games/%s/events", strings.TrimSuffix(baseURL, "/"), gameID)

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial game stream %s: %w", url, err)
	}

	readCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Stream{
		conn:   conn,
		log:    log.WithField("game", gameID),
		cancel: cancel,
	}
	go s.readLoop(readCtx, onDelta, onClose)
	return s, nil
}

// Close tears the connection down. Safe to call more than once; the close
// callback fires with a nil error.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.conn.Close(websocket.StatusNormalClosure, "session closed")
	s.cancel()
}

func (s *Stream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Stream) readLoop(ctx context.Context, onDelta DeltaFunc, onClose CloseFunc) {
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if s.isClosed() || ctx.Err() != nil {
				onClose(nil)
				return
			}
			s.log.WithError(err).Error("game stream interrupted")
			onClose(fmt.Errorf("%w: %v", ErrInterrupted, err))
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.log.WithError(err).Warn("dropping unparseable stream frame")
			continue
		}
		delta, err := protocol.ParseDelta(env.Event, env.Data)
		if err != nil {
			s.log.WithError(err).WithField("event", env.Event).Warn("dropping malformed delta")
			continue
		}
		onDelta(delta)
	}
}
