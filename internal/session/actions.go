package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/DoyleJ11/monopoly-client/internal/action"
	"github.com/DoyleJ11/monopoly-client/internal/board"
	"github.com/DoyleJ11/monopoly-client/internal/engine"
)

var ErrNoActions = errors.New("action api not configured")

var actionPaths = map[string]string{
	"roll":    "/roll",
	"info":    "/property/info",
	"buy":     "/property/buy",
	"auction": "/property/auction",
}

var actionTitles = map[string]string{
	"roll":    "Roll",
	"info":    "Property info",
	"buy":     "Buy",
	"auction": "Auction",
}

// begin claims the named action slot. Replies go to buffered channels so the
// loop never waits on a caller.
func (s *Session) begin(name string) error {
	if s.actions == nil {
		return ErrNoActions
	}
	if s.inFlight[name] {
		return ErrActionInFlight
	}
	s.inFlight[name] = true
	return nil
}

// report hands a finished call back to the loop. It runs on the call's goroutine.
func (s *Session) report(name, notice string, err error) {
	_ = s.post(context.Background(), actionDone{name: name, err: err, notice: notice})
}

func (s *Session) propertyRequest(index int) action.PropertyRequest {
	return action.PropertyRequest{Room: s.state.Self.Room, PlayerID: s.state.Self.PlayerID, Index: index}
}

func (s *Session) startRoll(msg RollRequest) {
	if !s.state.MyTurn {
		msg.Reply <- RollReply{Err: engine.ErrNotYourTurn}
		return
	}
	if s.rollUsed {
		msg.Reply <- RollReply{Err: ErrActionInFlight}
		return
	}
	if err := s.begin("roll"); err != nil {
		msg.Reply <- RollReply{Err: err}
		return
	}
	s.rollUsed = true

	self := s.state.Self
	req := action.RollRequest{PlayerID: self.PlayerID, Room: self.Room, Name: self.Name}
	go func() {
		res, err := s.actions.Roll(s.ctx, req)
		s.report("roll", res.Summary(), err)
		msg.Reply <- RollReply{Result: res, Err: err}
	}()
}

func (s *Session) startInfo(msg InfoRequest) {
	if msg.Index < 0 || msg.Index >= board.Size {
		msg.Reply <- InfoReply{Err: fmt.Errorf("tile %d out of range", msg.Index)}
		return
	}
	if err := s.begin("info"); err != nil {
		msg.Reply <- InfoReply{Err: err}
		return
	}
	req := s.propertyRequest(msg.Index)
	go func() {
		info, err := s.actions.PropertyInfo(s.ctx, req)
		if info.Name == "" {
			info.Name = board.At(req.Index).Name
		}
		s.report("info", fmt.Sprintf("%s: $%d", info.Name, info.Price), err)
		msg.Reply <- InfoReply{Info: info, Err: err}
	}()
}

func (s *Session) startBuy(msg BuyRequest) {
	if msg.Index < 0 || msg.Index >= board.Size || !board.Purchasable(msg.Index) {
		msg.Reply <- ErrNotPurchasable
		return
	}
	if err := s.begin("buy"); err != nil {
		msg.Reply <- err
		return
	}
	req := s.propertyRequest(msg.Index)
	go func() {
		err := s.actions.Buy(s.ctx, req)
		s.report("buy", fmt.Sprintf("Purchased %s.", board.At(req.Index).Name), err)
		msg.Reply <- err
	}()
}

func (s *Session) startAuction(msg AuctionRequest) {
	if msg.Index < 0 || msg.Index >= board.Size || !board.Purchasable(msg.Index) {
		msg.Reply <- ErrNotPurchasable
		return
	}
	if msg.Bid <= 0 {
		msg.Reply <- fmt.Errorf("bid must be positive, got %d", msg.Bid)
		return
	}
	if err := s.begin("auction"); err != nil {
		msg.Reply <- err
		return
	}
	req := s.propertyRequest(msg.Index)
	bid := msg.Bid
	req.Bid = &bid
	go func() {
		err := s.actions.Auction(s.ctx, req)
		s.report("auction", fmt.Sprintf("Bid $%d on %s.", bid, board.At(req.Index).Name), err)
		msg.Reply <- err
	}()
}

// finishAction logs the outcome. Failures also ask the server for a fresh
// snapshot; nothing is retried.
func (s *Session) finishAction(msg actionDone) {
	delete(s.inFlight, msg.name)
	s.tel.Action(s.ctx, msg.name, msg.err)

	if msg.err == nil {
		s.note(msg.notice)
		return
	}
	var se *action.StatusError
	if errors.As(msg.err, &se) {
		s.note(fmt.Sprintf("%s failed: %s", actionTitles[msg.name], se.Error()))
	} else {
		s.note(fmt.Sprintf("Error calling %s: %v", actionPaths[msg.name], msg.err))
	}
	s.sync()
}
