package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/DoyleJ11/monopoly-client/internal/identity"
	"github.com/DoyleJ11/monopoly-client/internal/telemetry"
	"github.com/DoyleJ11/monopoly-client/internal/types"
)

type recorder struct {
	connected    chan struct{}
	frames       chan []byte
	disconnected chan error
}

func newRecorder() *recorder {
	return &recorder{
		connected:    make(chan struct{}, 8),
		frames:       make(chan []byte, 32),
		disconnected: make(chan error, 8),
	}
}

func (r *recorder) Connected()             { r.connected <- struct{}{} }
func (r *recorder) Frame(data []byte)      { r.frames <- data }
func (r *recorder) Disconnected(err error) { r.disconnected <- err }

func recv[T any](t *testing.T, ch <-chan T, within time.Duration) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out after %v", within)
		var zero T
		return zero
	}
}

// fakeServer serves /ws and runs fn for each accepted connection.
func fakeServer(t *testing.T, fn func(ctx context.Context, c *websocket.Conn)) string {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		fn(r.Context(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func readTypes(ctx context.Context, t *testing.T, c *websocket.Conn, n int) []string {
	var tags []string
	for i := 0; i < n; i++ {
		_, data, err := c.Read(ctx)
		if err != nil {
			t.Errorf("server read %d: %v", i, err)
			return tags
		}
		tags = append(tags, gjson.GetBytes(data, "type").String())
	}
	return tags
}

// drain reads until the client goes away.
func drain(ctx context.Context, c *websocket.Conn) {
	for {
		if _, _, err := c.Read(ctx); err != nil {
			return
		}
	}
}

var me = identity.Identity{PlayerID: "p1", Name: "Ann", Room: "007"}

func newSupervisor(t *testing.T, url string, h Handler) (*Supervisor, context.CancelFunc) {
	t.Helper()
	s := NewSupervisor(Options{
		URL:       url,
		Identity:  me,
		Heartbeat: time.Hour,
		Backoff:   NewBackoff(10*time.Millisecond, 40*time.Millisecond),
		Log:       zaptest.NewLogger(t),
	}, h)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s, cancel
}

func TestHandshakeOrderAndFrames(t *testing.T) {
	got := make(chan []string, 1)
	url := fakeServer(t, func(ctx context.Context, c *websocket.Conn) {
		got <- readTypes(ctx, t, c, 4)
		_ = c.Write(ctx, websocket.MessageText, []byte(`{"type":"players","list":[]}`))
		drain(ctx, c)
	})

	rec := newRecorder()
	newSupervisor(t, url, rec)

	assert.Equal(t, []string{"resume", "subscribeLogs", "who", "sync"}, recv(t, got, 2*time.Second))
	recv(t, rec.connected, 2*time.Second)
	assert.JSONEq(t, `{"type":"players","list":[]}`, string(recv(t, rec.frames, 2*time.Second)))
}

func TestReconnectRepeatsHandshake(t *testing.T) {
	var conns atomic.Int32
	handshakes := make(chan []string, 4)
	url := fakeServer(t, func(ctx context.Context, c *websocket.Conn) {
		n := conns.Add(1)
		handshakes <- readTypes(ctx, t, c, 4)
		if n == 1 {
			_ = c.Close(websocket.StatusGoingAway, "restart")
			return
		}
		drain(ctx, c)
	})

	rec := newRecorder()
	newSupervisor(t, url, rec)

	recv(t, rec.connected, 2*time.Second)
	require.Error(t, recv(t, rec.disconnected, 2*time.Second))
	recv(t, rec.connected, 2*time.Second)

	first := recv(t, handshakes, time.Second)
	second := recv(t, handshakes, time.Second)
	assert.Equal(t, first, second)
}

func TestSendWhileDisconnectedIsDropped(t *testing.T) {
	s := NewSupervisor(Options{URL: "ws://127.0.0.1:1/ws", Identity: me}, newRecorder())
	assert.False(t, s.Connected())
	assert.False(t, s.Send(types.Sync{Room: "007"}))
}

func TestHeartbeat(t *testing.T) {
	pings := make(chan []byte, 4)
	url := fakeServer(t, func(ctx context.Context, c *websocket.Conn) {
		readTypes(ctx, t, c, 4)
		for {
			_, data, err := c.Read(ctx)
			if err != nil {
				return
			}
			pings <- data
		}
	})

	s := NewSupervisor(Options{
		URL:       url,
		Identity:  me,
		Heartbeat: 20 * time.Millisecond,
		Log:       zaptest.NewLogger(t),
	}, newRecorder())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	ping := recv(t, pings, 2*time.Second)
	assert.Equal(t, "ping", gjson.GetBytes(ping, "type").String())
	assert.Equal(t, "007", gjson.GetBytes(ping, "room").String())
	assert.Greater(t, gjson.GetBytes(ping, "t").Int(), int64(0))
}

func TestCloseFlushesThenClosesNormally(t *testing.T) {
	result := make(chan websocket.StatusCode, 1)
	leave := make(chan string, 1)
	url := fakeServer(t, func(ctx context.Context, c *websocket.Conn) {
		readTypes(ctx, t, c, 4)
		tags := readTypes(ctx, t, c, 1)
		if len(tags) == 1 {
			leave <- tags[0]
		}
		_, _, err := c.Read(ctx)
		result <- websocket.CloseStatus(err)
	})

	rec := newRecorder()
	s, _ := newSupervisor(t, url, rec)
	recv(t, rec.connected, 2*time.Second)

	require.True(t, s.Send(types.Leave{PlayerID: "p1", Room: "007"}))
	require.NoError(t, s.Close())

	assert.Equal(t, "leave", recv(t, leave, 2*time.Second))
	assert.Equal(t, websocket.StatusNormalClosure, recv(t, result, 2*time.Second))
	assert.False(t, s.Send(types.Sync{Room: "007"}))

	select {
	case <-rec.disconnected:
		t.Fatalf("intentional close reported as a disconnect")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBackoffSequence(t *testing.T) {
	b := NewBackoff(time.Second, 8*time.Second)
	var got []time.Duration
	for i := 0; i < 6; i++ {
		got = append(got, b.Next())
	}
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second,
		8 * time.Second, 8 * time.Second, 8 * time.Second,
	}, got)
	assert.Equal(t, 6, b.Attempt())

	b.Reset()
	assert.Equal(t, time.Second, b.Next())
	assert.Equal(t, 1, b.Attempt())
}

func TestSuccessfulOpenResetsBackoff(t *testing.T) {
	var attempts atomic.Int32
	r := chi.NewRouter()
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n <= 2 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		readTypes(r.Context(), t, c, 4)
		if n == 3 {
			_ = c.Close(websocket.StatusGoingAway, "restart")
			return
		}
		drain(r.Context(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	core, logs := observer.New(zap.InfoLevel)
	tel, err := telemetry.NewWithMeter(zap.New(core), noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	base := time.Second
	clock := clockwork.NewFakeClock()
	rec := newRecorder()
	s := NewSupervisor(Options{
		URL:       "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
		Identity:  me,
		Heartbeat: time.Hour,
		Backoff:   NewBackoff(base, 8*base),
		Clock:     clock,
		Log:       zaptest.NewLogger(t),
		Telemetry: tel,
	}, rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// refused, refused, accepted then dropped: one reconnect wait each
	for i := 0; i < 3; i++ {
		wctx, wcancel := context.WithTimeout(ctx, 3*time.Second)
		err := clock.BlockUntilContext(wctx, 1)
		wcancel()
		require.NoError(t, err, "reconnect wait %d", i+1)
		if i < 2 {
			clock.Advance(8 * base)
		}
	}
	recv(t, rec.connected, time.Second)

	var delays []time.Duration
	for _, e := range logs.FilterMessage("reconnecting").All() {
		delays = append(delays, e.ContextMap()["delay"].(time.Duration))
	}
	assert.Equal(t, []time.Duration{base, 2 * base, base}, delays)
}
