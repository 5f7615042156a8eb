package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncedRoundTripAcrossHandles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, err := NewSynced(dir, SyncedOptions{})
	require.NoError(t, err)
	require.NoError(t, a.Set(ctx, "activeBar", []byte(`{"title":"work"}`)))

	b, err := NewSynced(dir, SyncedOptions{})
	require.NoError(t, err)
	v, ok, err := b.Get(ctx, "activeBar")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"title":"work"}`, string(v))

	require.NoError(t, b.Delete(ctx, "activeBar"))
	_, ok, err = a.Get(ctx, "activeBar")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSyncedRejectsNonJSON(t *testing.T) {
	s, err := NewSynced(t.TempDir(), SyncedOptions{})
	require.NoError(t, err)
	assert.Error(t, s.Set(context.Background(), "k", []byte("nope")))
}

func TestSyncedQuota(t *testing.T) {
	ctx := context.Background()
	s, err := NewSynced(t.TempDir(), SyncedOptions{WritesPerMinute: 1})
	require.NoError(t, err)

	var quota int
	for i := 0; i < defaultWriteBurst+5; i++ {
		if err := s.Set(ctx, "k", []byte(`1`)); err != nil {
			require.ErrorIs(t, err, ErrQuotaExceeded)
			quota++
		}
	}
	assert.Positive(t, quota)
}

func TestSyncedQuotaDisabled(t *testing.T) {
	ctx := context.Background()
	s, err := NewSynced(t.TempDir(), SyncedOptions{WritesPerMinute: -1})
	require.NoError(t, err)
	for i := 0; i < defaultWriteBurst*3; i++ {
		require.NoError(t, s.Set(ctx, "k", []byte(`1`)))
	}
}

func TestLocalTierKeysWithSlashes(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocal(filepath.Join(t.TempDir(), "local"))
	require.NoError(t, err)

	require.NoError(t, l.Set(ctx, "activeBar/ws-1", []byte(`"a"`)))
	v, ok, err := l.Get(ctx, "activeBar/ws-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"a"`, string(v))
	assert.Equal(t, []string{"activeBar/ws-1"}, l.Keys(ctx))

	require.NoError(t, l.Delete(ctx, "activeBar/ws-1"))
	require.NoError(t, l.Delete(ctx, "activeBar/ws-1"))
	_, ok, err = l.Get(ctx, "activeBar/ws-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFreshInstallReadsThroughRealTiers(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	synced, err := NewSynced(filepath.Join(base, "sync"), SyncedOptions{})
	require.NoError(t, err)

	first, err := NewLocal(filepath.Join(base, "first"))
	require.NoError(t, err)
	require.NoError(t, Set(ctx, NewDualTier(first, synced), "currentBar", record{Title: "work"}))

	fresh, err := NewLocal(filepath.Join(base, "fresh"))
	require.NoError(t, err)
	d := NewDualTier(fresh, synced)

	got, ok, err := Get[record](ctx, d, "currentBar")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "work", got.Title)

	raw, ok, err := fresh.Get(ctx, "currentBar")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"title":"work"}`, string(raw))
}
