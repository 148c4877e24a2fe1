package engine

import (
	"github.com/DoyleJ11/monopoly-client/internal/board"
)

// SetTurn records whether the local player may act.
func (s *State) SetTurn(mine bool) []Effect {
	s.MyTurn = mine
	return []Effect{TurnUpdate{MyTurn: mine}}
}

// Disconnected revokes the turn; authority returns only from the server.
func (s *State) Disconnected() []Effect {
	return s.SetTurn(false)
}

// Arrive completes an animation. Landing the local player on a card tile
// during its own turn requests a draw from that tile's deck.
func (s *State) Arrive(id string, idx int) []Effect {
	s.Place(id, idx)
	delete(s.Heading, id)

	if id != s.Self.PlayerID || !s.MyTurn {
		return nil
	}
	deck, ok := board.DeckAt(idx)
	if !ok {
		return nil
	}
	return s.draw(deck)
}
