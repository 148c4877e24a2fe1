package session

import (
	"context"

	"github.com/DoyleJ11/monopoly-client/internal/action"
	"github.com/DoyleJ11/monopoly-client/internal/board"
)

// Connected, Frame and Disconnected let the socket supervisor feed the loop.

func (s *Session) Connected() { _ = s.post(s.ctx, Connected{}) }

func (s *Session) Frame(data []byte) { _ = s.post(s.ctx, Frame{Data: data}) }

func (s *Session) Disconnected(err error) { _ = s.post(s.ctx, Disconnected{Err: err}) }

// Bind sets the outbound side once it exists.
func (s *Session) Bind(sender Sender) { _ = s.post(s.ctx, Bind{Sender: sender}) }

func (s *Session) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := s.post(ctx, GetView{Reply: reply}); err != nil {
		return View{}, err
	}
	return await(ctx, s, reply)
}

func (s *Session) Roll(ctx context.Context) (action.RollResult, error) {
	reply := make(chan RollReply, 1)
	if err := s.post(ctx, RollRequest{Reply: reply}); err != nil {
		return action.RollResult{}, err
	}
	r, err := await(ctx, s, reply)
	if err != nil {
		return action.RollResult{}, err
	}
	return r.Result, r.Err
}

// Draw asks for a card by hand. Only allowed on the local player's turn.
func (s *Session) Draw(ctx context.Context, deck board.Deck) error {
	reply := make(chan error, 1)
	if err := s.post(ctx, DrawRequest{Deck: deck, Reply: reply}); err != nil {
		return err
	}
	err, waitErr := await(ctx, s, reply)
	if waitErr != nil {
		return waitErr
	}
	return err
}

func (s *Session) PropertyInfo(ctx context.Context, index int) (action.PropertyInfo, error) {
	reply := make(chan InfoReply, 1)
	if err := s.post(ctx, InfoRequest{Index: index, Reply: reply}); err != nil {
		return action.PropertyInfo{}, err
	}
	r, err := await(ctx, s, reply)
	if err != nil {
		return action.PropertyInfo{}, err
	}
	return r.Info, r.Err
}

func (s *Session) Buy(ctx context.Context, index int) error {
	return s.call(ctx, func(reply chan error) Msg { return BuyRequest{Index: index, Reply: reply} })
}

func (s *Session) Auction(ctx context.Context, index, bid int) error {
	return s.call(ctx, func(reply chan error) Msg { return AuctionRequest{Index: index, Bid: bid, Reply: reply} })
}

// Leave announces departure, closes the socket, forgets the stored identity
// and stops the session.
func (s *Session) Leave(ctx context.Context) error {
	return s.call(ctx, func(reply chan error) Msg { return LeaveRequest{Reply: reply} })
}

func (s *Session) call(ctx context.Context, build func(chan error) Msg) error {
	reply := make(chan error, 1)
	if err := s.post(ctx, build(reply)); err != nil {
		return err
	}
	err, waitErr := await(ctx, s, reply)
	if waitErr != nil {
		return waitErr
	}
	return err
}

// Watch streams views to the returned channel until Unwatch, shutdown, or
// the watcher falls behind by more than buf views.
func (s *Session) Watch(ctx context.Context, id string, buf int) (<-chan View, error) {
	if buf < 1 {
		buf = 1
	}
	out := make(chan View, buf)
	if err := s.post(ctx, Watch{ID: id, Outbox: out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) Unwatch(id string) { _ = s.post(context.Background(), Unwatch{ID: id}) }

// Shutdown stops the loop without leaving the room.
func (s *Session) Shutdown() {
	_ = s.post(context.Background(), Shutdown{})
	<-s.done
}
