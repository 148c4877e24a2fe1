package session

import (
	"time"

	"github.com/DoyleJ11/monopoly-client/internal/board"
	"github.com/DoyleJ11/monopoly-client/internal/engine"
	"github.com/DoyleJ11/monopoly-client/internal/identity"
)

const logCap = 200

type LogEntry struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

type PlayerView struct {
	ID    string `json:"id"`
	Short string `json:"short"`
	Name  string `json:"name"`
	Me    bool   `json:"me"`
	Tile  int    `json:"tile"`
}

type CardView struct {
	Deck  board.Deck `json:"deck"`
	Label string     `json:"label"`
	Title string     `json:"title"`
	Text  string     `json:"text"`
}

// View is a copy of the session state safe to hand to other goroutines.
type View struct {
	Seq         uint64            `json:"seq"`
	Self        identity.Identity `json:"self"`
	Connected   bool              `json:"connected"`
	Version     int64             `json:"version"`
	Players     []PlayerView      `json:"players"`
	Count       int               `json:"count"`
	Max         int               `json:"max"`
	Positions   map[string]int    `json:"positions"`
	Tokens      []engine.Token    `json:"tokens"`
	Animating   []string          `json:"animating"`
	MyTurn      bool              `json:"myTurn"`
	RollEnabled bool              `json:"rollEnabled"`
	Card        *CardView         `json:"card,omitempty"`
	Log         []LogEntry        `json:"log"`
}

func (s *Session) view() View {
	st := s.state
	v := View{
		Seq:         s.seq,
		Self:        st.Self,
		Connected:   s.connected,
		Version:     st.LastVersion,
		Count:       st.Roster.Len(),
		Max:         st.MaxPlayers,
		Positions:   make(map[string]int, len(st.Positions)),
		MyTurn:      st.MyTurn,
		RollEnabled: s.rollEnabled(),
		Card:        s.card,
		Log:         append([]LogEntry(nil), s.lines...),
	}
	for id, idx := range st.Positions {
		v.Positions[id] = idx
	}
	for _, p := range st.Roster.List() {
		short := p.ID
		if len(short) > 6 {
			short = short[:6]
		}
		v.Players = append(v.Players, PlayerView{
			ID:    p.ID,
			Short: short,
			Name:  p.Name,
			Me:    p.ID == st.Self.PlayerID,
			Tile:  st.Positions[p.ID],
		})
		if tok, ok := st.Tokens[p.ID]; ok {
			v.Tokens = append(v.Tokens, tok)
		}
		if _, ok := s.anim.Active(p.ID); ok {
			v.Animating = append(v.Animating, p.ID)
		}
	}
	return v
}

// Lines returns just the log texts.
func (v View) Lines() []string {
	out := make([]string, len(v.Log))
	for i, e := range v.Log {
		out[i] = e.Text
	}
	return out
}

func (s *Session) note(text string) {
	s.lines = append(s.lines, LogEntry{At: s.clock.Now(), Text: text})
	if len(s.lines) > logCap {
		s.lines = append(s.lines[:0:0], s.lines[len(s.lines)-logCap:]...)
	}
}
