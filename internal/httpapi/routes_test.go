package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/monopoly-client/internal/action"
	"github.com/DoyleJ11/monopoly-client/internal/hub"
	"github.com/DoyleJ11/monopoly-client/internal/identity"
	"github.com/DoyleJ11/monopoly-client/internal/session"
	"github.com/DoyleJ11/monopoly-client/internal/telemetry"
)

type stubActions struct{}

func (stubActions) Roll(context.Context, action.RollRequest) (action.RollResult, error) {
	return action.RollResult{Dice: []int{6, 6}}, nil
}

func (stubActions) PropertyInfo(_ context.Context, req action.PropertyRequest) (action.PropertyInfo, error) {
	return action.PropertyInfo{Index: req.Index, Name: "Boardwalk", Price: 400}, nil
}

func (stubActions) Buy(context.Context, action.PropertyRequest) error { return nil }

func (stubActions) Auction(context.Context, action.PropertyRequest) error {
	return &action.StatusError{Status: http.StatusBadRequest, StatusText: "Bad Request", Detail: "no auction"}
}

func setup(t *testing.T) (*session.Session, *httptest.Server) {
	t.Helper()
	ctx := context.Background()
	log := zaptest.NewLogger(t)
	tel, err := telemetry.NewWithMeter(log, noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	sess, err := session.New(ctx, session.Options{
		Identity:  identity.Identity{PlayerID: "me", Name: "Me", Room: "007"},
		Clock:     clockwork.NewFakeClock(),
		Actions:   stubActions{},
		Store:     identity.NewMemoryStore(),
		Log:       log,
		Telemetry: tel,
	})
	require.NoError(t, err)
	t.Cleanup(sess.Shutdown)

	h := hub.NewHub(ctx, log)
	require.NoError(t, h.Register(ctx, "me", sess))

	srv := httptest.NewServer(SetupRoutes(h, tel, log))
	t.Cleanup(srv.Close)
	return sess, srv
}

func do(t *testing.T, method, url, body string) (int, gjson.Result) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, gjson.ParseBytes(data)
}

func TestHealthzAndList(t *testing.T) {
	_, srv := setup(t)

	status, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body.Get("status").String())
	assert.True(t, body.Get("counts").Exists())

	status, body = do(t, http.MethodGet, srv.URL+"/sessions", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "me", body.Get("0.id").String())
	assert.Equal(t, "007", body.Get("0.room").String())
}

func TestView(t *testing.T) {
	sess, srv := setup(t)
	sess.Frame([]byte(`{"type":"players","list":[{"id":"me","name":"Me"}]}`))

	status, body := do(t, http.MethodGet, srv.URL+"/sessions/me", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), body.Get("count").Int())
	assert.Equal(t, "Me", body.Get("players.0.name").String())

	status, _ = do(t, http.MethodGet, srv.URL+"/sessions/ghost", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTurnGatedActions(t *testing.T) {
	sess, srv := setup(t)

	status, body := do(t, http.MethodPost, srv.URL+"/sessions/me/roll", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "not your turn", body.Get("error").String())

	status, _ = do(t, http.MethodPost, srv.URL+"/sessions/me/draw/chance", "")
	assert.Equal(t, http.StatusConflict, status)

	sess.Frame([]byte(`{"type":"yourTurn","canRoll":true}`))
	status, body = do(t, http.MethodPost, srv.URL+"/sessions/me/roll", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(6), body.Get("dice.1").Int())

	status, _ = do(t, http.MethodPost, srv.URL+"/sessions/me/draw/chest", "")
	assert.Equal(t, http.StatusAccepted, status)
}

func TestPropertyRoutes(t *testing.T) {
	_, srv := setup(t)

	status, body := do(t, http.MethodGet, srv.URL+"/sessions/me/property/39", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(400), body.Get("price").Int())

	status, _ = do(t, http.MethodGet, srv.URL+"/sessions/me/property/40", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, http.MethodPost, srv.URL+"/sessions/me/property/39/buy", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, http.MethodPost, srv.URL+"/sessions/me/property/0/buy", "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = do(t, http.MethodPost, srv.URL+"/sessions/me/property/39/auction", `{"bid":"ten"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, http.MethodPost, srv.URL+"/sessions/me/property/39/auction", `{"bid":10}`)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body.Get("error").String(), "no auction")
}

func TestLeaveEndsSession(t *testing.T) {
	sess, srv := setup(t)

	status, _ := do(t, http.MethodPost, srv.URL+"/sessions/me/leave", "")
	assert.Equal(t, http.StatusNoContent, status)

	select {
	case <-sess.Done():
	case <-time.After(time.Second):
		t.Fatalf("session still running after leave")
	}
}
