package session

import (
	"github.com/DoyleJ11/monopoly-client/internal/action"
	"github.com/DoyleJ11/monopoly-client/internal/board"
)

type Msg interface{ isSessionMsg() }

// Frame is one raw text frame from the socket.
type Frame struct{ Data []byte }

type Connected struct{}

type Disconnected struct{ Err error }

// StepDue is a hop timer firing for one animation job.
type StepDue struct {
	PlayerID string
	JobID    uint64
}

type Bind struct{ Sender Sender }

type RollRequest struct {
	Reply chan RollReply
}

type RollReply struct {
	Result action.RollResult
	Err    error
}

type DrawRequest struct {
	Deck  board.Deck
	Reply chan error
}

type InfoRequest struct {
	Index int
	Reply chan InfoReply
}

type InfoReply struct {
	Info action.PropertyInfo
	Err  error
}

type BuyRequest struct {
	Index int
	Reply chan error
}

type AuctionRequest struct {
	Index int
	Bid   int
	Reply chan error
}

// actionDone reports a finished HTTP action back to the loop.
type actionDone struct {
	name   string
	err    error
	notice string
}

type LeaveRequest struct {
	Reply chan error
}

type GetView struct {
	Reply chan View
}

// Watch subscribes Outbox to view updates; the current view is sent first.
type Watch struct {
	ID     string
	Outbox chan View
}

type Unwatch struct{ ID string }

type Shutdown struct{}

func (Frame) isSessionMsg()          {}
func (Connected) isSessionMsg()      {}
func (Disconnected) isSessionMsg()   {}
func (StepDue) isSessionMsg()        {}
func (Bind) isSessionMsg()           {}
func (RollRequest) isSessionMsg()    {}
func (DrawRequest) isSessionMsg()    {}
func (InfoRequest) isSessionMsg()    {}
func (BuyRequest) isSessionMsg()     {}
func (AuctionRequest) isSessionMsg() {}
func (actionDone) isSessionMsg()     {}
func (LeaveRequest) isSessionMsg()   {}
func (GetView) isSessionMsg()        {}
func (Watch) isSessionMsg()          {}
func (Unwatch) isSessionMsg()        {}
func (Shutdown) isSessionMsg()       {}
