package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/DoyleJ11/monopoly-client/internal/board"
	"github.com/DoyleJ11/monopoly-client/internal/identity"
	"github.com/DoyleJ11/monopoly-client/internal/types"
)

var ErrStaleVersion = errors.New("stale version")
var ErrNotYourTurn = errors.New("not your turn")

// DefaultMaxPlayers matches the server's room capacity.
const DefaultMaxPlayers = 10

// State is everything one client session knows about its room. It is owned
// by a single goroutine; nothing here is safe for concurrent use.
type State struct {
	Self       identity.Identity
	MaxPlayers int

	Roster    Roster
	Positions map[string]int // displayed tile per player
	Tokens    map[string]Token
	Heading   map[string]int // destination of an in-flight animation

	LastVersion int64
	MyTurn      bool
}

type Effect interface{ isEffect() }

// Send asks for an outbound message.
type Send struct{ Msg types.Outbound }

// Animate starts (or restarts) a hop sequence from the displayed tile.
type Animate struct {
	PlayerID string
	Target   int
}

// Halt abandons an in-flight animation where it currently stands.
type Halt struct{ PlayerID string }

// Notice is a line for the user-visible log.
type Notice struct{ Text string }

type Reveal struct {
	Deck  board.Deck
	Title string
	Text  string
}

// TurnUpdate reports every authoritative statement about the turn, changed
// or not.
type TurnUpdate struct{ MyTurn bool }

type RosterChanged struct {
	Count int
	Max   int
}

// Unrecognized carries a frame with an unknown tag, verbatim.
type Unrecognized struct {
	Type string
	Raw  []byte
}

func (Send) isEffect()          {}
func (Animate) isEffect()       {}
func (Halt) isEffect()          {}
func (Notice) isEffect()        {}
func (Reveal) isEffect()        {}
func (TurnUpdate) isEffect()    {}
func (RosterChanged) isEffect() {}
func (Unrecognized) isEffect()  {}

// Apply runs one decoded message through the version gate and into the
// roster, movement and turn state. A message that fails the gate returns
// ErrStaleVersion and leaves s untouched.
func Apply(s *State, msg types.Inbound) ([]Effect, error) {
	if !s.Accept(msg) {
		return nil, ErrStaleVersion
	}

	switch m := msg.(type) {
	case types.Players:
		return s.ReplaceRoster(m.List), nil

	case types.PlayerJoined:
		if m.Player == nil || m.Player.ID == "" {
			return nil, nil
		}
		return s.Join(*m.Player), nil

	case types.PlayerLeft:
		if m.Player == nil || m.Player.ID == "" {
			return nil, nil
		}
		return s.Leave(m.Player.ID), nil

	case types.YourTurn:
		effects := s.SetTurn(m.CanRoll)
		if m.CanRoll {
			effects = append(effects, Notice{Text: "It's your turn!"})
		}
		return effects, nil

	case types.LogLine:
		if m.Text == "" {
			return nil, nil
		}
		return []Effect{Notice{Text: m.Text}}, nil

	case types.Move:
		if m.PlayerID == "" || m.To == nil {
			return nil, nil
		}
		return s.moveTo(m.PlayerID, board.Normalize(*m.To)), nil

	case types.State:
		var effects []Effect
		ids := make([]string, 0, len(m.Positions))
		for id := range m.Positions {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			effects = append(effects, s.settle(id, board.Normalize(m.Positions[id]))...)
		}
		if m.Turn != "" {
			effects = append(effects, s.SetTurn(m.Turn == s.Self.PlayerID)...)
		}
		return effects, nil

	case types.DrawPrompt:
		if m.Deck == "" {
			return nil, nil
		}
		return s.draw(board.ParseDeck(m.Deck)), nil

	case types.Card:
		if m.Deck == "" {
			return nil, nil
		}
		deck := board.ParseDeck(m.Deck)
		title := m.Title
		if title == "" {
			title = deck.DefaultTitle()
		}
		return []Effect{Reveal{Deck: deck, Title: title, Text: m.Text}}, nil

	case types.Unknown:
		return []Effect{Unrecognized{Type: m.Type, Raw: m.Raw}}, nil

	default:
		return nil, fmt.Errorf("unhandled message %T", msg)
	}
}

// moveTo always animates: a move onto the displayed tile is a full lap.
func (s *State) moveTo(id string, target int) []Effect {
	s.Heading[id] = target
	return []Effect{Animate{PlayerID: id, Target: target}}
}

// settle reconciles one entry of a full snapshot against what is displayed
// or already on its way.
func (s *State) settle(id string, target int) []Effect {
	if heading, moving := s.Heading[id]; moving {
		if heading == target {
			return nil
		}
		if s.Positions[id] == target {
			delete(s.Heading, id)
			return []Effect{Halt{PlayerID: id}}
		}
		return s.moveTo(id, target)
	}
	if s.Positions[id] == target {
		return nil
	}
	return s.moveTo(id, target)
}

// RequestDraw is the manual draw action. It is refused outside the local
// player's turn.
func (s *State) RequestDraw(deck board.Deck) ([]Effect, error) {
	if !s.MyTurn {
		return nil, ErrNotYourTurn
	}
	return s.draw(deck), nil
}

func (s *State) draw(deck board.Deck) []Effect {
	return []Effect{
		Send{Msg: types.Draw{Deck: deck, Room: s.Self.Room, PlayerID: s.Self.PlayerID}},
		Notice{Text: fmt.Sprintf("Requested a %s card…", deck.Name())},
	}
}
