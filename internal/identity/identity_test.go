package identity

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_GeneratesAndPersists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := Resolve(ctx, store, Identity{})
	require.NoError(t, err)

	assert.NotEmpty(t, id.PlayerID)
	assert.True(t, strings.HasPrefix(id.Name, "Player-"), "name %q", id.Name)
	assert.Equal(t, DefaultRoom, id.Room)

	again, err := Resolve(ctx, store, Identity{Name: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, id, again, "stored identity must win over requested defaults")
}

func TestResolve_UsesRequestedValues(t *testing.T) {
	id, err := Resolve(context.Background(), NewMemoryStore(), Identity{PlayerID: "p1", Name: " Alice ", Room: "42"})
	require.NoError(t, err)
	assert.Equal(t, Identity{PlayerID: "p1", Name: "Alice", Room: "42"}, id)
}

func TestFileStore_RoundTripAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "identity.json"))

	_, err := store.Load(ctx)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound on empty store, got %v", err)
	}

	want := Identity{PlayerID: "abc", Name: "Bob", Room: "007"}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx), "clearing twice is fine")
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abcdef", Identity{PlayerID: "abcdefgh"}.Short())
	assert.Equal(t, "ab", Identity{PlayerID: "ab"}.Short())
}
