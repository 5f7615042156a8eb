package watch

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/store"
	"tableflip.dev/barswitch/pkg/tree/treetest"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchPrintsOutsideChanges(t *testing.T) {
	color.NoColor = true
	dir := filepath.Join(t.TempDir(), "sync")
	synced, err := store.NewSynced(dir, store.SyncedOptions{})
	require.NoError(t, err)
	svc := app.New(app.Options{
		Tree:         treetest.New(),
		Local:        store.NewMemoryTier(),
		Synced:       synced,
		DefaultTitle: "home",
	})
	t.Cleanup(func() { _ = svc.Close() })
	require.NoError(t, svc.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	out := &lockedBuffer{}
	done := make(chan error, 1)
	go func() { done <- (&Watch{Service: svc, Out: out}).Do(ctx) }()

	time.Sleep(50 * time.Millisecond)
	other, err := store.NewSynced(dir, store.SyncedOptions{})
	require.NoError(t, err)
	require.NoError(t, other.Set(ctx, "workspaces", []byte(`[]`)))

	assert.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, "[changed] workspaces") || strings.Contains(s, "[invalidated]")
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchStopsWithoutWatcher(t *testing.T) {
	svc := app.New(app.Options{
		Tree:   treetest.New(),
		Local:  store.NewMemoryTier(),
		Synced: store.NewMemoryTier(),
	})
	t.Cleanup(func() { _ = svc.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, (&Watch{Service: svc, Out: &bytes.Buffer{}}).Do(ctx))
}
