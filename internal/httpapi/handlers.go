package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/gjson"

	"github.com/DoyleJ11/monopoly-client/internal/action"
	"github.com/DoyleJ11/monopoly-client/internal/board"
	"github.com/DoyleJ11/monopoly-client/internal/engine"
	"github.com/DoyleJ11/monopoly-client/internal/hub"
	"github.com/DoyleJ11/monopoly-client/internal/session"
	"github.com/DoyleJ11/monopoly-client/internal/telemetry"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var se *action.StatusError
	switch {
	case errors.Is(err, engine.ErrNotYourTurn), errors.Is(err, session.ErrActionInFlight):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNotPurchasable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrClosed):
		status = http.StatusGone
	case errors.Is(err, session.ErrNoActions):
		status = http.StatusServiceUnavailable
	case errors.As(err, &se):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}

// withSession resolves {id} and hands the session to fn.
func withSession(h *hub.Hub, fn func(http.ResponseWriter, *http.Request, *session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := h.Get(r.Context(), chi.URLParam(r, "id"))
		if sess == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		fn(w, r, sess)
	}
}

func tileIndex(r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 || idx >= board.Size {
		return 0, false
	}
	return idx, true
}

func ListSessions(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := h.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func GetView(h *hub.Hub) http.HandlerFunc {
	return withSession(h, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		v, err := sess.View(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	})
}

func Roll(h *hub.Hub) http.HandlerFunc {
	return withSession(h, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		res, err := sess.Roll(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
}

func Draw(h *hub.Hub) http.HandlerFunc {
	return withSession(h, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		deck := board.ParseDeck(chi.URLParam(r, "deck"))
		if err := sess.Draw(r.Context(), deck); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
}

func PropertyInfo(h *hub.Hub) http.HandlerFunc {
	return withSession(h, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		idx, ok := tileIndex(r)
		if !ok {
			http.Error(w, "bad tile index", http.StatusBadRequest)
			return
		}
		info, err := sess.PropertyInfo(r.Context(), idx)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, info)
	})
}

func Buy(h *hub.Hub) http.HandlerFunc {
	return withSession(h, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		idx, ok := tileIndex(r)
		if !ok {
			http.Error(w, "bad tile index", http.StatusBadRequest)
			return
		}
		if err := sess.Buy(r.Context(), idx); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// Auction takes the bid from the JSON body: {"bid": 120}.
func Auction(h *hub.Hub) http.HandlerFunc {
	return withSession(h, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		idx, ok := tileIndex(r)
		if !ok {
			http.Error(w, "bad tile index", http.StatusBadRequest)
			return
		}
		body, err := readBody(r)
		if err != nil || !gjson.ValidBytes(body) {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		bid := gjson.GetBytes(body, "bid")
		if bid.Type != gjson.Number || bid.Int() <= 0 {
			http.Error(w, "bid must be a positive number", http.StatusBadRequest)
			return
		}
		if err := sess.Auction(r.Context(), idx, int(bid.Int())); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func Leave(h *hub.Hub) http.HandlerFunc {
	return withSession(h, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		if err := sess.Leave(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func Healthz(tel *telemetry.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Status string           `json:"status"`
			Counts telemetry.Counts `json:"counts"`
		}{Status: "ok", Counts: tel.Counts()})
	}
}
