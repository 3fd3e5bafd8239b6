package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckpointStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "checkpoint.json")
	store := NewCheckpointStore(path, true)

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Save(ctx, 18_000_000))
	last, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(18_000_000), last)

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestCheckpointStoreDisabled(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	store := NewCheckpointStore(path, false)

	require.NoError(t, store.Save(ctx, 5))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckpointStoreErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, _, err := NewCheckpointStore(dir, true).Load(ctx)
	require.ErrorContains(t, err, "directory")

	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, _, err = NewCheckpointStore(path, true).Load(ctx)
	require.ErrorContains(t, err, "parse checkpoint")
}

type memoryState struct {
	blocks map[string]uint64
	err    error
}

func (m *memoryState) LoadState(_ context.Context, name string) (uint64, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	block, ok := m.blocks[name]
	return block, ok, nil
}

func (m *memoryState) SaveState(_ context.Context, name string, block uint64) error {
	if m.err != nil {
		return m.err
	}
	m.blocks[name] = block
	return nil
}

func TestStateCheckpoint(t *testing.T) {
	ctx := context.Background()
	state := &memoryState{blocks: map[string]uint64{}}
	cp := NewStateCheckpoint(state, "mainnet")

	_, ok, err := cp.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cp.Save(ctx, 42))
	require.Equal(t, uint64(42), state.blocks["mainnet"])

	last, ok, err := cp.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), last)

	state.err = errors.New("connection refused")
	_, _, err = cp.Load(ctx)
	require.ErrorIs(t, err, state.err)
	require.ErrorContains(t, cp.Save(ctx, 43), "save state mainnet")
}
