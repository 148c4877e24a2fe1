package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/identity"
	"github.com/DoyleJ11/monopoly-client/internal/telemetry"
	"github.com/DoyleJ11/monopoly-client/internal/types"
)

// Handler receives connection events. Calls come from the supervisor's
// goroutines and must not block for long.
type Handler interface {
	Connected()
	Frame(data []byte)
	Disconnected(err error)
}

type Options struct {
	URL          string
	Identity     identity.Identity
	Heartbeat    time.Duration
	WriteTimeout time.Duration
	DialTimeout  time.Duration
	Backoff      *Backoff
	Clock        clockwork.Clock
	Log          *zap.Logger
	Telemetry    *telemetry.Recorder
}

type frame struct {
	tag  string
	data []byte
}

// conn is one open socket and its write queue.
type conn struct {
	ws       *websocket.Conn
	out      chan frame
	done     chan struct{}
	closeOut sync.Once
}

func (c *conn) shut() { c.closeOut.Do(func() { close(c.out) }) }

// Supervisor owns the socket: it dials, runs the handshake, forwards frames,
// sends heartbeats and redials with backoff until Close.
type Supervisor struct {
	opts    Options
	handler Handler
	log     *zap.Logger

	mu     sync.Mutex
	cur    *conn
	closed atomic.Bool
	quit   chan struct{}
}

func NewSupervisor(opts Options, h Handler) *Supervisor {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 3 * time.Second
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 25 * time.Second
	}
	if opts.Backoff == nil {
		opts.Backoff = NewBackoff(time.Second, 8*time.Second)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Supervisor{
		opts:    opts,
		handler: h,
		log:     opts.Log.Named("ws"),
		quit:    make(chan struct{}),
	}
}

// Handshake is what a fresh connection announces, in order.
func Handshake(id identity.Identity) []types.Outbound {
	return []types.Outbound{
		types.Resume{PlayerID: id.PlayerID, Name: id.Name, Room: id.Room},
		types.SubscribeLogs{Room: id.Room},
		types.Who{Room: id.Room},
		types.Sync{Room: id.Room},
	}
}

// Run keeps a connection up until ctx ends or Close is called.
func (s *Supervisor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		err := s.serve(ctx)
		if ctx.Err() != nil || s.closed.Load() {
			return nil
		}
		s.log.Info("disconnected", zap.Error(err))
		s.handler.Disconnected(err)

		delay := s.opts.Backoff.Next()
		if s.opts.Telemetry != nil {
			s.opts.Telemetry.Reconnect(ctx, s.opts.Backoff.Attempt(), delay)
		}
		t := s.opts.Clock.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.Chan():
		}
	}
}

func (s *Supervisor) serve(ctx context.Context) error {
	dctx, dcancel := context.WithTimeout(ctx, s.opts.DialTimeout)
	wsConn, _, err := websocket.Dial(dctx, s.opts.URL, nil)
	dcancel()
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.opts.URL, err)
	}
	defer wsConn.CloseNow()
	wsConn.SetReadLimit(1 << 20)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, m := range Handshake(s.opts.Identity) {
		if err := s.write(connCtx, wsConn, m); err != nil {
			_ = wsConn.Close(websocket.StatusInternalError, "handshake failed")
			return err
		}
	}

	c := &conn{ws: wsConn, out: make(chan frame, 64), done: make(chan struct{})}
	s.mu.Lock()
	s.cur = c
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.cur == c {
			s.cur = nil
			c.shut()
		}
		s.mu.Unlock()
	}()

	s.opts.Backoff.Reset()
	s.log.Info("connected", zap.String("url", s.opts.URL), zap.String("room", s.opts.Identity.Room))
	s.handler.Connected()

	// Writer goroutine
	go func() {
		defer close(c.done)
		for f := range c.out {
			wctx, wcancel := context.WithTimeout(connCtx, s.opts.WriteTimeout)
			err := wsConn.Write(wctx, websocket.MessageText, f.data)
			wcancel()
			if err != nil {
				s.log.Debug("write failed", zap.String("type", f.tag), zap.Error(err))
				cancel()
				continue
			}
			s.sent(connCtx, f.tag, f.data)
		}
	}()

	go s.heartbeat(connCtx, c)

	// Reader loop
	for {
		_, data, err := wsConn.Read(connCtx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return fmt.Errorf("closed by server: %w", err)
			}
			return err
		}
		s.handler.Frame(data)
	}
}

func (s *Supervisor) heartbeat(ctx context.Context, c *conn) {
	t := time.NewTicker(s.opts.Heartbeat)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.enqueue(c, types.Ping{T: now.UnixMilli(), Room: s.opts.Identity.Room})
		}
	}
}

func (s *Supervisor) write(ctx context.Context, c *websocket.Conn, m types.Outbound) error {
	data, err := types.Encode(m)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()
	if err := c.Write(wctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write %s: %w", m.Type(), err)
	}
	s.sent(ctx, m.Type(), data)
	return nil
}

func (s *Supervisor) sent(ctx context.Context, tag string, data []byte) {
	if s.opts.Telemetry != nil {
		s.opts.Telemetry.Sent(ctx, tag, data)
	}
}

// Send queues m on the open connection. It reports false, and drops m,
// when no connection is open or the queue is full.
func (s *Supervisor) Send(m types.Outbound) bool {
	s.mu.Lock()
	c := s.cur
	s.mu.Unlock()
	if c == nil {
		s.dropped(m.Type())
		return false
	}
	return s.enqueue(c, m)
}

func (s *Supervisor) enqueue(c *conn, m types.Outbound) bool {
	data, err := types.Encode(m)
	if err != nil {
		s.log.Error("encode", zap.String("type", m.Type()), zap.Error(err))
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != c {
		s.dropped(m.Type())
		return false
	}
	select {
	case c.out <- frame{tag: m.Type(), data: data}:
		return true
	default:
		s.dropped(m.Type())
		return false
	}
}

func (s *Supervisor) dropped(tag string) {
	if s.opts.Telemetry != nil {
		s.opts.Telemetry.Dropped(context.Background(), telemetry.DropDisconnected, zap.String("type", tag))
	}
}

func (s *Supervisor) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur != nil
}

// Close flushes queued messages, closes the socket normally and stops
// reconnecting. Later calls do nothing.
func (s *Supervisor) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	c := s.cur
	s.cur = nil
	if c != nil {
		c.shut()
	}
	s.mu.Unlock()

	var err error
	if c != nil {
		select {
		case <-c.done:
		case <-time.After(s.opts.WriteTimeout):
		}
		err = c.ws.Close(websocket.StatusNormalClosure, "leaving")
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
			err = nil
		}
	}
	close(s.quit)
	return err
}
