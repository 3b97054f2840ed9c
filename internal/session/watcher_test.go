package session_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ruminaider/toolkit/internal/profiles"
	"github.com/ruminaider/toolkit/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func newWatched(t *testing.T) (string, *profiles.Registry, *session.Store, *session.Watcher) {
	t.Helper()
	dir := t.TempDir()
	reg, err := profiles.LoadRegistry(filepath.Join(dir, "profiles.yaml"))
	require.NoError(t, err)
	store := session.NewStore("")
	w, err := session.NewWatcher(reg, store, session.NewActiveFile(dir), zaptest.NewLogger(t))
	require.NoError(t, err)
	return dir, reg, store, w
}

func TestWatcher_ActiveProfileChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir, _, store, w := newWatched(t)
	var changes atomic.Int32
	w.OnChange(func() { changes.Add(1) })
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, profiles.WriteActiveProfile(dir, "b"))
	require.Eventually(t, func() bool { return store.ActiveProfileID() == "b" }, waitFor, tick)

	require.NoError(t, profiles.DeleteActiveProfile(dir))
	require.Eventually(t, func() bool { return store.ActiveProfileID() == "" }, waitFor, tick)

	assert.GreaterOrEqual(t, changes.Load(), int32(2))
	require.NoError(t, w.Close())
}

func TestWatcher_RegistryChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir, reg, _, w := newWatched(t)
	var changes atomic.Int32
	w.OnChange(func() { changes.Add(1) })
	require.NoError(t, w.Start(context.Background()))

	// Another process creates a profile.
	other, err := profiles.LoadRegistry(filepath.Join(dir, "profiles.yaml"))
	require.NoError(t, err)
	_, err = other.Create("Acme")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(reg.Profiles()) == 1 }, waitFor, tick)
	assert.Equal(t, "Acme", reg.Profiles()[0].Name)
	assert.Positive(t, changes.Load())
	require.NoError(t, w.Close())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir, _, store, w := newWatched(t)
	var changes atomic.Int32
	w.OnChange(func() { changes.Add(1) })
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	// Follow with a tracked change so we know the first event was processed.
	require.NoError(t, profiles.WriteActiveProfile(dir, "a"))
	require.Eventually(t, func() bool { return store.ActiveProfileID() == "a" }, waitFor, tick)

	require.NoError(t, w.Close())
	// Only the active-profile change counts.
	assert.Equal(t, int32(1), changes.Load())
}

func TestWatcher_SeparateRegistryDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	activeDir := t.TempDir()
	regPath := filepath.Join(t.TempDir(), "profiles.yaml")
	reg, err := profiles.LoadRegistry(regPath)
	require.NoError(t, err)
	w, err := session.NewWatcher(reg, session.NewStore(""), session.NewActiveFile(activeDir), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	data, err := profiles.Marshal([]profiles.Profile{{ID: "a", Name: "Acme"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(regPath, data, 0644))
	require.Eventually(t, func() bool { return len(reg.Profiles()) == 1 }, waitFor, tick)

	require.NoError(t, w.Close())
}

func TestWatcher_StartCloseLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, _, _, w := newWatched(t)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	// Start after Close does nothing.
	require.NoError(t, w.Start(context.Background()))
}

func TestWatcher_CloseWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, _, _, w := newWatched(t)
	require.NoError(t, w.Close())
}

func TestWatcher_ContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, _, _, w := newWatched(t)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()
	require.NoError(t, w.Close())
}

func TestWatcher_MissingDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := profiles.NewRegistry(filepath.Join(t.TempDir(), "profiles.yaml"), nil)
	w, err := session.NewWatcher(reg, session.NewStore(""), session.NewActiveFile(filepath.Join(t.TempDir(), "absent")), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Error(t, w.Start(context.Background()))
	require.NoError(t, w.Close())
}

func TestWatcher_RegistryOnlyWithoutStore(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	reg, err := profiles.LoadRegistry(filepath.Join(dir, "profiles.yaml"))
	require.NoError(t, err)
	w, err := session.NewWatcher(reg, nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	var changes atomic.Int32
	w.OnChange(func() { changes.Add(1) })
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, profiles.WriteActiveProfile(dir, "a"))
	other, err := profiles.LoadRegistry(filepath.Join(dir, "profiles.yaml"))
	require.NoError(t, err)
	_, err = other.Create("Acme")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(reg.Profiles()) == 1 }, waitFor, tick)
	require.NoError(t, w.Close())
	assert.Equal(t, int32(1), changes.Load(), "the active-profile file is not watched")
}
