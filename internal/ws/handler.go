package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/board"
	"github.com/DoyleJ11/monopoly-client/internal/hub"
	"github.com/DoyleJ11/monopoly-client/internal/session"
)

// ViewHandler streams a session's views to a browser and accepts the same
// local actions the HTTP routes offer.
func ViewHandler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	log = log.Named("view")
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess := h.Get(r.Context(), id)
		if sess == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		watcherID := uuid.NewString()
		views, err := sess.Watch(r.Context(), watcherID, 8)
		if err != nil {
			conn.Close(websocket.StatusGoingAway, "session closed")
			return
		}
		defer sess.Unwatch(watcherID)

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for v := range views {
				payload, err := encodeView(v)
				if err != nil {
					log.Error("encode view", zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				err = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return
				}
			}
			// Session gone or we fell behind.
			conn.Close(websocket.StatusGoingAway, "view stream ended")
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("view read", zap.String("watcher", watcherID), zap.Error(err))
				}
				return
			}

			if err := dispatch(r.Context(), sess, data); err != nil {
				reply, _ := sjson.SetBytes([]byte(`{"type":"error"}`), "error", err.Error())
				ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, reply)
				cancel()
			}
		}
	}
}

var errUnknownCommand = errors.New("unknown type")

// dispatch runs one browser command against the session.
func dispatch(ctx context.Context, sess *session.Session, data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("bad json")
	}
	cmd := gjson.ParseBytes(data)
	index := int(cmd.Get("index").Int())

	switch cmd.Get("type").String() {
	case "roll":
		_, err := sess.Roll(ctx)
		return err
	case "draw":
		return sess.Draw(ctx, board.ParseDeck(cmd.Get("deck").String()))
	case "info":
		_, err := sess.PropertyInfo(ctx, index)
		return err
	case "buy":
		return sess.Buy(ctx, index)
	case "auction":
		return sess.Auction(ctx, index, int(cmd.Get("bid").Int()))
	case "leave":
		return sess.Leave(ctx)
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, cmd.Get("type").String())
	}
}

func encodeView(v session.View) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(payload, "type", "view")
}
