package engine

import "github.com/DoyleJ11/monopoly-client/internal/types"

// Accept is the version gate. Unversioned messages always pass. A versioned
// one passes only when strictly newer than the last accepted version, and
// passing advances the counter, so each message must be offered once.
func (s *State) Accept(msg types.Inbound) bool {
	v, ok := types.VersionOf(msg)
	if !ok {
		return true
	}
	if v.N <= s.LastVersion {
		return false
	}
	s.LastVersion = v.N
	return true
}
