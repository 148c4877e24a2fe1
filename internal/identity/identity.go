// Package identity supplies the stable player id, display name and room a
// client uses for its whole lifetime, and persists them between runs.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DefaultRoom is joined when nothing else is configured.
const DefaultRoom = "007"

var ErrNotFound = errors.New("identity not found")

type Identity struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"playerName"`
	Room     string `json:"gameId"`
}

// Short is the id prefix used in log lines.
func (i Identity) Short() string {
	if len(i.PlayerID) <= 6 {
		return i.PlayerID
	}
	return i.PlayerID[:6]
}

type Store interface {
	Load(ctx context.Context) (Identity, error)
	Save(ctx context.Context, id Identity) error
	Clear(ctx context.Context) error
}

// Resolve returns the stored identity, filling any gaps from want and then
// from generated defaults, and writes the result back to the store.
func Resolve(ctx context.Context, store Store, want Identity) (Identity, error) {
	stored, err := store.Load(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Identity{}, fmt.Errorf("load identity: %w", err)
	}

	id := stored
	if id.PlayerID == "" {
		id.PlayerID = want.PlayerID
	}
	if id.PlayerID == "" {
		id.PlayerID = uuid.NewString()
	}
	if id.Name == "" {
		id.Name = strings.TrimSpace(want.Name)
	}
	if id.Name == "" {
		id.Name = "Player-" + prefix(id.PlayerID, 4)
	}
	if id.Room == "" {
		id.Room = want.Room
	}
	if id.Room == "" {
		id.Room = DefaultRoom
	}

	if id != stored {
		if err := store.Save(ctx, id); err != nil {
			return Identity{}, fmt.Errorf("save identity: %w", err)
		}
	}
	return id, nil
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
