package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabssanto/ruyienv/internal/session"
)

// setupTestDB opens a store in a temporary directory
func setupTestDB(t *testing.T) (*Store, string) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "config", "ruyienv.db")

	store, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, dbPath
}

func TestOpenCreatesDatabase(t *testing.T) {
	_, dbPath := setupTestDB(t)

	_, err := os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")
}

func TestOpenIsIdempotent(t *testing.T) {
	store, dbPath := setupTestDB(t)
	require.NoError(t, store.SetActiveEnvironment(session.Activation{Workspace: "/ws", EnvPath: "./venv", SessionID: "s1"}))
	require.NoError(t, store.Close())

	reopened, err := Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	a, ok, err := reopened.ActiveEnvironment("/ws")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "./venv", a.EnvPath)
}

func TestActiveEnvironmentRoundTrip(t *testing.T) {
	store, _ := setupTestDB(t)

	_, ok, err := store.ActiveEnvironment("/ws")
	require.NoError(t, err)
	assert.False(t, ok)

	activatedAt := time.Unix(1700000000, 0)
	require.NoError(t, store.SetActiveEnvironment(session.Activation{
		Workspace: "/ws", EnvPath: "./a", SessionID: "s1", ActivatedAt: activatedAt,
	}))
	require.NoError(t, store.SetActiveEnvironment(session.Activation{
		Workspace: "/ws", EnvPath: "./b", SessionID: "s2", ActivatedAt: activatedAt,
	}))

	a, ok, err := store.ActiveEnvironment("/ws")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, session.Activation{
		Workspace: "/ws", EnvPath: "./b", SessionID: "s2", ActivatedAt: activatedAt,
	}, a)

	require.NoError(t, store.ClearActiveEnvironment("/ws"))
	_, ok, err = store.ActiveEnvironment("/ws")
	require.NoError(t, err)
	assert.False(t, ok)

	// clearing an unknown workspace is not an error
	assert.NoError(t, store.ClearActiveEnvironment("/nowhere"))
}

func TestStoreBacksSession(t *testing.T) {
	store, _ := setupTestDB(t)

	first, err := session.New("/ws", store)
	require.NoError(t, err)
	require.NoError(t, first.Activate("proj/venv"))

	second, err := session.New("/ws", store)
	require.NoError(t, err)
	assert.True(t, second.IsActive("proj/venv"))
}

func TestRemovals(t *testing.T) {
	store, _ := setupTestDB(t)

	require.NoError(t, store.RecordRemoval(Removal{Workspace: "/a", EnvPath: "old", Label: "Old", RemovedAt: time.Unix(100, 0)}))
	require.NoError(t, store.RecordRemoval(Removal{Workspace: "/a", EnvPath: "new", Label: "New", RemovedAt: time.Unix(200, 0)}))
	require.NoError(t, store.RecordRemoval(Removal{Workspace: "/b", EnvPath: "other", Label: "Other", RemovedAt: time.Unix(150, 0)}))

	removals, err := store.ListRemovals("/a")
	require.NoError(t, err)
	require.Len(t, removals, 2)
	assert.Equal(t, "new", removals[0].EnvPath)
	assert.Equal(t, "old", removals[1].EnvPath)
	assert.Equal(t, time.Unix(200, 0), removals[0].RemovedAt)

	all, err := store.ListRemovals("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPrune(t *testing.T) {
	store, _ := setupTestDB(t)

	for _, a := range []session.Activation{
		{Workspace: "/gone", EnvPath: "./venv", SessionID: "1"},
		{Workspace: "/kept", EnvPath: "./proj/venv", SessionID: "2"},
	} {
		require.NoError(t, store.SetActiveEnvironment(a))
	}

	exists := func(dir string) bool {
		return dir == filepath.Join("/kept", "proj", "venv")
	}

	result, err := store.Prune(true, exists)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RemovedCount)
	assert.Equal(t, "/gone", result.Removed[0].Workspace)

	activations, err := store.ListActivations()
	require.NoError(t, err)
	assert.Len(t, activations, 2, "dry run must not delete")

	result, err = store.Prune(false, exists)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RemovedCount)

	activations, err = store.ListActivations()
	require.NoError(t, err)
	require.Len(t, activations, 1)
	assert.Equal(t, "/kept", activations[0].Workspace)
}

func TestCloseNil(t *testing.T) {
	var store *Store
	assert.NoError(t, store.Close())
}
