package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/monopoly-client/internal/action"
)

func TestFireTalliesOutcomes(t *testing.T) {
	var calls, inFlight, peak atomic.Int32
	r := chi.NewRouter()
	r.Post("/roll", func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)

		if calls.Add(1)%2 == 0 {
			http.Error(w, "not your turn", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"dice":[1,2],"total":3}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	log := zaptest.NewLogger(t)
	res, err := fire(context.Background(), action.New(srv.URL, time.Second, log), "007", 10, 3, log)
	require.NoError(t, err)

	assert.Equal(t, tally{OK: 5, Rejected: 5}, res)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

type recordingRoller struct {
	rooms chan string
	err   error
}

func (r *recordingRoller) Roll(_ context.Context, req action.RollRequest) (action.RollResult, error) {
	r.rooms <- req.Room + "/" + req.Name[:5]
	return action.RollResult{}, r.err
}

func TestFireCountsTransportFailures(t *testing.T) {
	rr := &recordingRoller{rooms: make(chan string, 4), err: errors.New("connection refused")}
	res, err := fire(context.Background(), rr, "42", 4, 2, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, tally{Failed: 4}, res)
	for i := 0; i < 4; i++ {
		assert.Equal(t, "42/Load-", <-rr.rooms)
	}
}

func TestFireStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rr := &recordingRoller{rooms: make(chan string, 8), err: context.Canceled}
	_, err := fire(ctx, rr, "007", 8, 1, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, context.Canceled)
}
