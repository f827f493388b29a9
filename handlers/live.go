// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/pollview/metrics"
	"github.com/danielhkuo/pollview/middleware"
	"github.com/danielhkuo/pollview/models"
	"github.com/danielhkuo/pollview/ring"
	"github.com/danielhkuo/pollview/view"
)

const (
	liveWriteDeadline = 5 * time.Second
	livePingInterval  = 30 * time.Second
	livePongDeadline  = 60 * time.Second
	liveReadLimit     = 512
	liveBufferSize    = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same policy as CORS
	},
}

type LiveHandler struct {
	loader   *ResultsLoader
	interval time.Duration
	clock    clockwork.Clock
}

func NewLiveHandler(loader *ResultsLoader, interval time.Duration, clock clockwork.Clock) *LiveHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LiveHandler{loader: loader, interval: interval, clock: clock}
}

// Stream handles GET /polls/{id}/live
// Sends a results message on connect and whenever the payload changes, and a
// ring message each time the progress ring settles on a new target.
func (h *LiveHandler) Stream(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	ctx := r.Context()

	// Load before upgrading so unknown polls get a plain HTTP error
	v, err := h.loader.Load(ctx, pollID)
	if err != nil {
		writeLoadError(w, pollID, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		slog.Warn("websocket upgrade failed", "poll_id", pollID, "error", err)
		return
	}

	metrics.LiveConnectionsCurrent.Inc()
	defer metrics.LiveConnectionsCurrent.Dec()

	session := newLiveSession(conn, h.clock)
	defer session.stop()

	animator := ring.New(v.RingTarget,
		ring.WithClock(h.clock),
		ring.WithOnChange(func(f ring.Frame) {
			frame := view.RingFrame(f)
			session.enqueue(models.LiveMessage{Type: models.MessageRing, Ring: &frame})
		}),
	)
	defer animator.Dispose()

	slog.Info("live stream opened", "poll_id", pollID, "remote", middleware.GetClientIP(r))

	session.enqueue(models.LiveMessage{Type: models.MessageResults, Results: &v})
	last := v.InputsHash

	ticker := h.clock.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-session.closed:
			slog.Info("live stream closed", "poll_id", pollID)
			return
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			next, err := h.loader.Load(ctx, pollID)
			if err != nil {
				slog.Warn("live refresh failed", "poll_id", pollID, "error", err)
				continue
			}
			if next.InputsHash == last {
				continue
			}
			last = next.InputsHash

			session.enqueue(models.LiveMessage{Type: models.MessageResults, Results: &next})
			animator.SetTarget(next.RingTarget)
		}
	}
}

// liveSession serialises writes to one websocket connection. Socket deadlines
// use wall time; the clock only drives the ping ticker.
type liveSession struct {
	conn     *websocket.Conn
	clock    clockwork.Clock
	send     chan []byte
	done     chan struct{} // closed by stop
	closed   chan struct{} // closed when the peer goes away
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newLiveSession(conn *websocket.Conn, clock clockwork.Clock) *liveSession {
	s := &liveSession{
		conn:   conn,
		clock:  clock,
		send:   make(chan []byte, liveBufferSize),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}

	conn.SetReadLimit(liveReadLimit)
	s.updateReadDeadline()
	conn.SetPongHandler(func(string) error {
		s.updateReadDeadline()
		return nil
	})

	s.wg.Add(1)
	go s.write()
	go s.read()
	return s
}

// enqueue never blocks; a client that cannot keep up is disconnected
func (s *liveSession) enqueue(msg models.LiveMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to encode live message", "type", msg.Type, "error", err)
		return
	}

	select {
	case <-s.done:
	case s.send <- data:
		metrics.LiveMessagesTotal.WithLabelValues(msg.Type).Inc()
	default:
		slog.Warn("live client too slow, disconnecting")
		_ = s.conn.Close()
	}
}

func (s *liveSession) write() {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(livePingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-s.send:
			s.updateWriteDeadline()
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = s.conn.Close()
				return
			}
		case <-ticker.Chan():
			s.updateWriteDeadline()
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = s.conn.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// read discards client messages; it exists to process control frames and to
// notice disconnects
func (s *liveSession) read() {
	defer close(s.closed)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// stop ends the writer, then sends a close frame from this goroutine so the
// connection never sees concurrent writes
func (s *liveSession) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		s.updateWriteDeadline()
		_ = s.conn.WriteMessage(websocket.CloseMessage, msg)
		_ = s.conn.Close()
	})
}

func (s *liveSession) updateWriteDeadline() {
	_ = s.conn.SetWriteDeadline(time.Now().Add(liveWriteDeadline))
}

func (s *liveSession) updateReadDeadline() {
	_ = s.conn.SetReadDeadline(time.Now().Add(livePongDeadline))
}
