package engine

import (
	"fmt"

	"github.com/DoyleJ11/monopoly-client/internal/types"
)

// Roster is the ordered set of players in the room. Order is first-seen and
// survives updates to an existing entry.
type Roster struct {
	order []string
	byID  map[string]types.Player
}

func (r *Roster) Len() int { return len(r.order) }

func (r *Roster) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Roster) Get(id string) (types.Player, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// List returns the players in roster order.
func (r *Roster) List() []types.Player {
	out := make([]types.Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *Roster) put(p types.Player) {
	if r.byID == nil {
		r.byID = map[string]types.Player{}
	}
	if _, ok := r.byID[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	r.byID[p.ID] = p
}

func (r *Roster) remove(id string) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// ReplaceRoster installs a full snapshot. Entries past MaxPlayers and
// repeated ids are ignored.
func (s *State) ReplaceRoster(list []types.Player) []Effect {
	var next Roster
	for _, p := range list {
		if p.ID == "" || next.Has(p.ID) {
			continue
		}
		if next.Len() >= s.MaxPlayers {
			break
		}
		next.put(p)
	}
	s.Roster = next
	s.syncTokens()
	return []Effect{s.rosterChanged()}
}

// Join adds or renames one player. Joining twice is the same as joining once.
func (s *State) Join(p types.Player) []Effect {
	if !s.Roster.Has(p.ID) && s.Roster.Len() >= s.MaxPlayers {
		return []Effect{Notice{Text: fmt.Sprintf("Room is full (%d/%d); ignoring %s.", s.Roster.Len(), s.MaxPlayers, displayName(p))}}
	}
	s.Roster.put(p)
	s.syncTokens()
	return []Effect{s.rosterChanged()}
}

// Leave drops a player and its token. Leaving twice is the same as leaving once.
func (s *State) Leave(id string) []Effect {
	if !s.Roster.remove(id) {
		return []Effect{s.rosterChanged()}
	}
	var effects []Effect
	if _, moving := s.Heading[id]; moving {
		delete(s.Heading, id)
		effects = append(effects, Halt{PlayerID: id})
	}
	s.syncTokens()
	return append(effects, s.rosterChanged())
}

// syncTokens gives every roster member a token, starting unplaced players on
// GO, and removes tokens whose owner is no longer listed.
func (s *State) syncTokens() {
	for _, p := range s.Roster.List() {
		if _, ok := s.Positions[p.ID]; !ok {
			s.Positions[p.ID] = 0
		}
		s.ensureToken(p)
	}
	for id := range s.Tokens {
		if !s.Roster.Has(id) {
			delete(s.Tokens, id)
		}
	}
}

func (s *State) rosterChanged() RosterChanged {
	return RosterChanged{Count: s.Roster.Len(), Max: s.MaxPlayers}
}

func displayName(p types.Player) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
