// Package hub keeps the running sessions of this process, keyed by player id.
package hub

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/session"
)

var (
	ErrDuplicate = errors.New("session already registered")
	ErrClosed    = errors.New("hub closed")
)

type HubMsg interface{ isHubMsg() }

type Register struct {
	ID      string
	Session *session.Session
	Reply   chan error
}

type GetSession struct {
	ID    string
	Reply chan *session.Session
}

type ListSessions struct {
	Reply chan []Entry
}

type RemoveSession struct {
	ID string
}

type ShutdownHub struct {
	Reply chan error
}

func (Register) isHubMsg()      {}
func (GetSession) isHubMsg()    {}
func (ListSessions) isHubMsg()  {}
func (RemoveSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

// Entry describes one registered session.
type Entry struct {
	ID   string `json:"id"`
	Room string `json:"room"`
	Name string `json:"name"`
}

type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Session
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	log      *zap.Logger
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		log:      log.Named("hub"),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			_ = h.shutdown(context.Background())
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Register:
				if _, ok := h.sessions[msg.ID]; ok {
					msg.Reply <- fmt.Errorf("%w: %s", ErrDuplicate, msg.ID)
					break
				}
				h.sessions[msg.ID] = msg.Session
				go h.reap(msg.ID, msg.Session)
				h.log.Info("registered", zap.String("id", msg.ID))
				msg.Reply <- nil

			case GetSession:
				msg.Reply <- h.sessions[msg.ID] // May be nil

			case ListSessions:
				out := make([]Entry, 0, len(h.sessions))
				for id, s := range h.sessions {
					self := s.Identity()
					out = append(out, Entry{ID: id, Room: self.Room, Name: self.Name})
				}
				sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
				msg.Reply <- out

			case RemoveSession:
				if _, ok := h.sessions[msg.ID]; ok {
					delete(h.sessions, msg.ID)
					h.log.Info("removed", zap.String("id", msg.ID))
				}

			case ShutdownHub:
				msg.Reply <- h.shutdown(h.ctx)
				h.cancel()
				return
			}
		}
	}
}

// reap drops a session from the registry once its loop exits.
func (h *Hub) reap(id string, s *session.Session) {
	select {
	case <-s.Done():
		select {
		case h.inbox <- RemoveSession{ID: id}:
		case <-h.ctx.Done():
		}
	case <-h.ctx.Done():
	}
}

func (h *Hub) shutdown(ctx context.Context) error {
	var err error
	for id, s := range h.sessions {
		go s.Shutdown()
		select {
		case <-s.Done():
		case <-ctx.Done():
			err = multierr.Append(err, fmt.Errorf("session %s: %w", id, ctx.Err()))
		}
	}
	clear(h.sessions)
	return err
}

func (h *Hub) Register(ctx context.Context, id string, s *session.Session) error {
	reply := make(chan error, 1)
	if err := h.post(ctx, Register{ID: id, Session: s, Reply: reply}); err != nil {
		return err
	}
	return await(ctx, h, reply)
}

// Get returns nil when no session has that id.
func (h *Hub) Get(ctx context.Context, id string) *session.Session {
	reply := make(chan *session.Session, 1)
	if err := h.post(ctx, GetSession{ID: id, Reply: reply}); err != nil {
		return nil
	}
	select {
	case s := <-reply:
		return s
	case <-ctx.Done():
		return nil
	case <-h.done:
		return nil
	}
}

func (h *Hub) List(ctx context.Context) ([]Entry, error) {
	reply := make(chan []Entry, 1)
	if err := h.post(ctx, ListSessions{Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case out := <-reply:
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return nil, ErrClosed
	}
}

// Shutdown stops every session and waits for them until ctx ends.
func (h *Hub) Shutdown(ctx context.Context) error {
	reply := make(chan error, 1)
	err := h.post(ctx, ShutdownHub{Reply: reply})
	if err == nil {
		err = await(ctx, h, reply)
	}
	if errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}

func (h *Hub) post(ctx context.Context, m HubMsg) error {
	select {
	case <-h.done:
		return ErrClosed
	default:
	}
	select {
	case h.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrClosed
	}
}

func await(ctx context.Context, h *Hub, reply <-chan error) error {
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		select {
		case err := <-reply:
			return err
		default:
		}
		return ErrClosed
	}
}
