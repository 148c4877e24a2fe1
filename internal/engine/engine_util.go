package engine

import "github.com/DoyleJ11/monopoly-client/internal/identity"

func NewState(self identity.Identity, maxPlayers int) *State {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	return &State{
		Self:       self,
		MaxPlayers: maxPlayers,
		Positions:  map[string]int{},
		Tokens:     map[string]Token{},
		Heading:    map[string]int{},
	}
}

// ContainsEffect reports whether any effect has the same dynamic type as want.
func ContainsEffect[T Effect](effects []Effect) bool {
	for _, e := range effects {
		if _, ok := e.(T); ok {
			return true
		}
	}
	return false
}

// EffectsOf filters effects down to one variant.
func EffectsOf[T Effect](effects []Effect) []T {
	var out []T
	for _, e := range effects {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
