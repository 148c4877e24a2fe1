// Package session owns one player's view of a room. A single goroutine
// processes socket frames, hop timers and local requests in arrival order;
// everything else talks to it through its inbox.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tidwall/gjson"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/action"
	"github.com/DoyleJ11/monopoly-client/internal/animator"
	"github.com/DoyleJ11/monopoly-client/internal/engine"
	"github.com/DoyleJ11/monopoly-client/internal/identity"
	"github.com/DoyleJ11/monopoly-client/internal/telemetry"
	"github.com/DoyleJ11/monopoly-client/internal/types"
)

var (
	ErrClosed         = errors.New("session closed")
	ErrActionInFlight = errors.New("action already in flight")
	ErrNotPurchasable = errors.New("tile cannot be bought")
)

// Sender is the outbound side of the socket.
type Sender interface {
	Send(types.Outbound) bool
	Close() error
}

// Actions is the game server's HTTP API.
type Actions interface {
	Roll(ctx context.Context, req action.RollRequest) (action.RollResult, error)
	PropertyInfo(ctx context.Context, req action.PropertyRequest) (action.PropertyInfo, error)
	Buy(ctx context.Context, req action.PropertyRequest) error
	Auction(ctx context.Context, req action.PropertyRequest) error
}

type Options struct {
	Identity   identity.Identity
	MaxPlayers int
	HopDelay   time.Duration
	Clock      clockwork.Clock
	Sender     Sender
	Actions    Actions
	Store      identity.Store
	Log        *zap.Logger
	Telemetry  *telemetry.Recorder
}

type Session struct {
	inbox  chan Msg
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	state    *engine.State
	anim     *animator.Animator
	timers   map[string]clockwork.Timer
	hopDelay time.Duration
	clock    clockwork.Clock

	sender  Sender
	actions Actions
	store   identity.Store
	log     *zap.Logger
	tel     *telemetry.Recorder

	connected bool
	rollUsed  bool
	inFlight  map[string]bool
	card      *CardView
	lines     []LogEntry
	seq       uint64
	watchers  map[string]chan View
}

func New(parent context.Context, opts Options) (*Session, error) {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.HopDelay <= 0 {
		opts.HopDelay = 80 * time.Millisecond
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Telemetry == nil {
		tel, err := telemetry.New(opts.Log)
		if err != nil {
			return nil, err
		}
		opts.Telemetry = tel
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		inbox:    make(chan Msg, 64),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		state:    engine.NewState(opts.Identity, opts.MaxPlayers),
		anim:     animator.New(),
		timers:   map[string]clockwork.Timer{},
		hopDelay: opts.HopDelay,
		clock:    opts.Clock,
		sender:   opts.Sender,
		actions:  opts.Actions,
		store:    opts.Store,
		log:      opts.Log.Named("session").With(zap.String("player", opts.Identity.Short()), zap.String("room", opts.Identity.Room)),
		tel:      opts.Telemetry,
		inFlight: map[string]bool{},
		watchers: map[string]chan View{},
	}
	go s.loop()
	return s, nil
}

// Inbox exposes the loop's mailbox.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Identity() identity.Identity { return s.state.Self }

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Frame:
				s.handleFrame(msg.Data)

			case Connected:
				s.connected = true
				s.note("Connected.")

			case Disconnected:
				s.connected = false
				s.note("Disconnected.")
				s.run(s.state.Disconnected())

			case StepDue:
				s.step(msg.PlayerID, msg.JobID)

			case Bind:
				s.sender = msg.Sender

			case RollRequest:
				s.startRoll(msg)

			case DrawRequest:
				effects, err := s.state.RequestDraw(msg.Deck)
				if err != nil {
					s.tel.Dropped(s.ctx, telemetry.DropNotYourTurn, zap.String("deck", string(msg.Deck)))
				}
				s.run(effects)
				msg.Reply <- err

			case InfoRequest:
				s.startInfo(msg)

			case BuyRequest:
				s.startBuy(msg)

			case AuctionRequest:
				s.startAuction(msg)

			case actionDone:
				s.finishAction(msg)

			case GetView:
				msg.Reply <- s.view()
				continue

			case Watch:
				// Register + send current view immediately
				s.watchers[msg.ID] = msg.Outbox
				select {
				case msg.Outbox <- s.view():
				default:
				}
				continue

			case Unwatch:
				if ch, ok := s.watchers[msg.ID]; ok {
					close(ch)
					delete(s.watchers, msg.ID)
				}
				continue

			case LeaveRequest:
				msg.Reply <- s.leave()
				s.shutdown()
				return

			case Shutdown:
				s.shutdown()
				return
			}
			s.seq++
			s.broadcast()
		}
	}
}

func (s *Session) handleFrame(data []byte) {
	tag := gjson.GetBytes(data, "type").String()
	s.tel.Received(s.ctx, tag, data)

	msg, err := types.Decode(data)
	if err != nil {
		s.tel.Dropped(s.ctx, telemetry.DropMalformed, zap.Error(err))
		return
	}
	effects, err := engine.Apply(s.state, msg)
	if errors.Is(err, engine.ErrStaleVersion) {
		v, _ := types.VersionOf(msg)
		s.tel.Dropped(s.ctx, telemetry.DropStale,
			zap.String("type", tag), zap.Int64("version", v.N), zap.Int64("last", s.state.LastVersion))
		return
	}
	if err != nil {
		s.log.Error("apply", zap.String("type", tag), zap.Error(err))
		return
	}
	s.run(effects)
}

func (s *Session) send(m types.Outbound) {
	if s.sender == nil {
		s.tel.Dropped(s.ctx, telemetry.DropDisconnected, zap.String("type", m.Type()))
		return
	}
	s.sender.Send(m)
}

func (s *Session) sync() {
	s.send(types.Sync{Room: s.state.Self.Room})
}

func (s *Session) rollEnabled() bool {
	return s.connected && s.state.MyTurn && !s.rollUsed
}

func (s *Session) broadcast() {
	if len(s.watchers) == 0 {
		return
	}
	v := s.view()
	for id, ch := range s.watchers {
		select {
		case ch <- v:
		default:
			// Watcher is slow/full - drop them.
			close(ch)
			delete(s.watchers, id)
		}
	}
}

func (s *Session) leave() error {
	self := s.state.Self
	s.send(types.Leave{PlayerID: self.PlayerID, Room: self.Room})

	var err error
	if s.sender != nil {
		err = multierr.Append(err, s.sender.Close())
	}
	if s.store != nil {
		err = multierr.Append(err, s.store.Clear(s.ctx))
	}
	s.log.Info("left room", zap.Error(err))
	return err
}

func (s *Session) shutdown() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.anim.Reset()
	for id, ch := range s.watchers {
		close(ch)
		delete(s.watchers, id)
	}
	s.cancel()
}

// post delivers m to the loop unless ctx ends or the session is gone.
func (s *Session) post(ctx context.Context, m Msg) error {
	select {
	case s.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrClosed
	}
}

func await[T any](ctx context.Context, s *Session, ch <-chan T) (T, error) {
	var zero T
	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.done:
		select {
		case v := <-ch:
			return v, nil
		default:
		}
		return zero, ErrClosed
	}
}
