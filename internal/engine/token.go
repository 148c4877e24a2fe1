package engine

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DoyleJ11/monopoly-client/internal/board"
	"github.com/DoyleJ11/monopoly-client/internal/types"
)

// Palette is the fixed set of token colors.
var Palette = [...]string{
	"#1f6feb", "#d64545", "#1fb25a", "#7c3aed", "#eab308",
	"#ef4444", "#06b6d4", "#f97316", "#3b82f6", "#16a34a",
}

// Token is the rendered marker of one player.
type Token struct {
	PlayerID string     `json:"playerId"`
	Initial  string     `json:"initial"`
	Color    string     `json:"color"`
	DX       int        `json:"dx"`
	DY       int        `json:"dy"`
	Tile     int        `json:"tile"`
	Cell     board.Cell `json:"cell"`
}

var upper = cases.Upper(language.Und)

func initialOf(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return upper.String(string(r))
}

// idHash folds the UTF-16 units of id with the given multiplier, mod 2^32.
func idHash(id string, mul uint32) uint32 {
	var h uint32
	for _, u := range utf16.Encode([]rune(id)) {
		h = h*mul + uint32(u)
	}
	return h
}

// ColorFor picks a stable palette entry for a player id.
func ColorFor(id string) string {
	return Palette[idHash(id, 33)%uint32(len(Palette))]
}

// OffsetFor nudges tokens sharing a tile apart by a few pixels.
func OffsetFor(id string) (dx, dy int) {
	h := idHash(id, 31)
	dx = (int(h&7) - 3) * 3
	dy = (int((h>>3)&7) - 3) * 3
	return dx, dy
}

func (s *State) ensureToken(p types.Player) {
	tok, ok := s.Tokens[p.ID]
	if !ok {
		dx, dy := OffsetFor(p.ID)
		tok = Token{PlayerID: p.ID, Color: ColorFor(p.ID), DX: dx, DY: dy}
	}
	tok.Initial = initialOf(p.Name)
	tok.Tile = s.Positions[p.ID]
	tok.Cell = board.CellOf(tok.Tile)
	s.Tokens[p.ID] = tok
}

// Place sets the displayed tile of a player, one hop at a time during
// animation or directly when reconciling.
func (s *State) Place(id string, idx int) {
	idx = board.Normalize(idx)
	s.Positions[id] = idx
	if tok, ok := s.Tokens[id]; ok {
		tok.Tile = idx
		tok.Cell = board.CellOf(idx)
		s.Tokens[id] = tok
	}
}
