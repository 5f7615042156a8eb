package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/barswitch/pkg/config"
	"tableflip.dev/barswitch/pkg/exchange"
	"tableflip.dev/barswitch/pkg/registry"
	"tableflip.dev/barswitch/pkg/store"
	"tableflip.dev/barswitch/pkg/tree"
	"tableflip.dev/barswitch/pkg/tree/treetest"
)

type fixture struct {
	tree   *treetest.Store
	local  *store.MemoryTier
	synced *store.MemoryTier
	svc    *Service
	rootID string
}

func newFixture(t *testing.T, workspaces bool) *fixture {
	t.Helper()
	s := treetest.New()
	f := &fixture{tree: s, local: store.NewMemoryTier(), synced: store.NewMemoryTier()}
	f.svc = New(Options{
		Tree:          s,
		Local:         f.local,
		Synced:        f.synced,
		DefaultTitle:  "default",
		ShortcutDelay: 20 * time.Millisecond,
		Workspaces:    workspaces,
	})
	detach := f.svc.Attach(s)
	t.Cleanup(func() {
		detach()
		_ = f.svc.Close()
	})
	rootID, err := tree.NewAdapter(s, tree.Options{}).CollectionsRoot(context.Background())
	require.NoError(t, err)
	f.rootID = rootID
	return f
}

// seed creates bars with one bookmark each. The first bar is made active
// and its bookmark is placed in the visible slot.
func (f *fixture) seed(t *testing.T, titles ...string) []tree.Node {
	t.Helper()
	var out []tree.Node
	for i, title := range titles {
		n := f.tree.Folder(f.rootID, title)
		parent := n.ID
		if i == 0 {
			parent = treetest.BarID
		}
		f.tree.Bookmark(parent, title+"-link", "https://"+title+".example")
		out = append(out, n)
	}
	require.NoError(t, f.svc.registry.Update(context.Background(), "", out[0]))
	return out
}

func (f *fixture) active(t *testing.T) string {
	t.Helper()
	rec, ok, err := f.svc.registry.Peek(context.Background(), "")
	require.NoError(t, err)
	require.True(t, ok)
	return rec.CollectionID
}

func TestInitCreatesDefaultBar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	require.NoError(t, f.svc.Init(ctx))
	bars, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, "default", bars[0].Title)
	assert.True(t, bars[0].Active)
}

func TestListFlagsActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	bars := f.seed(t, "a", "b", "c")

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].Active)
	assert.False(t, list[1].Active)
	assert.Equal(t, bars[2].ID, list[2].ID)
}

func TestAddResolvesDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	f.seed(t, "X", "X_1")

	bar, err := f.svc.Add(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, "X_2", bar.Title)

	bar, err = f.svc.Add(ctx, " Y ")
	require.NoError(t, err)
	assert.Equal(t, "Y", bar.Title)

	_, err = f.svc.Add(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestExchangeRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	bars := f.seed(t, "a", "b")

	changed, err := f.svc.Exchange(ctx, exchange.RefOf(bars[1]))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"b-link"}, f.tree.ChildTitles(treetest.BarID))
	assert.Equal(t, bars[1].ID, f.active(t))

	_, err = f.svc.Exchange(ctx, exchange.RefOf(bars[0]))
	require.NoError(t, err)
	assert.Equal(t, []string{"a-link"}, f.tree.ChildTitles(treetest.BarID))
	assert.Equal(t, []string{"b-link"}, f.tree.ChildTitles(bars[1].ID))
}

func TestExchangeSelfIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	bars := f.seed(t, "a", "b")
	f.tree.ResetMutations()
	sets := f.synced.Sets()

	changed, err := f.svc.Exchange(ctx, exchange.RefOf(bars[0]))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, f.tree.Mutations())
	assert.Equal(t, sets, f.synced.Sets())
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	bars := f.seed(t, "a", "b")

	bar, err := f.svc.Rename(ctx, bars[0].ID, "b")
	require.NoError(t, err)
	assert.Equal(t, "b_1", bar.Title)

	rec, _, err := f.svc.registry.Peek(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "b_1", rec.Title, "active record follows the rename")

	bar, err = f.svc.Rename(ctx, bars[1].ID, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", bar.Title, "renaming to its own title keeps it")

	_, err = f.svc.Rename(ctx, "missing", "z")
	assert.ErrorIs(t, err, ErrBarNotFound)
}

func TestReorder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	f.seed(t, "a", "b", "c", "d")

	list, err := f.svc.Reorder(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a", "d"}, titlesOf(list))

	list, err = f.svc.Reorder(ctx, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b", "c", "a"}, titlesOf(list))

	f.tree.ResetMutations()
	_, err = f.svc.Reorder(ctx, 1, 1)
	require.NoError(t, err)
	assert.Zero(t, f.tree.Mutations())
}

func titlesOf(bars []Bar) []string {
	out := make([]string, len(bars))
	for i, b := range bars {
		out[i] = b.Title
	}
	return out
}

func TestRemoveLastBarIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	bars := f.seed(t, "only")

	removed, err := f.svc.Remove(ctx, bars[0].ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, []string{"only"}, f.tree.ChildTitles(f.rootID))
}

func TestRemoveActiveSwitchesToPrevious(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	bars := f.seed(t, "a", "b", "c")

	// "a" is first, so the previous bar wraps around to "c".
	removed, err := f.svc.Remove(ctx, bars[0].ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"b", "c"}, f.tree.ChildTitles(f.rootID))
	assert.Equal(t, bars[2].ID, f.active(t))
	assert.Equal(t, []string{"c-link"}, f.tree.ChildTitles(treetest.BarID))

	removed, err = f.svc.Remove(ctx, bars[1].ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, bars[2].ID, f.active(t))
}

func TestCommandCollapsesBurst(t *testing.T) {
	f := newFixture(t, false)
	bars := f.seed(t, "a", "b", "c")
	f.tree.ResetMutations()

	require.NoError(t, f.svc.Command("next-bar"))
	require.NoError(t, f.svc.Command("next-bar"))
	require.NoError(t, f.svc.Command("next-bar"))
	f.svc.WaitCommands()

	// One exchange: a's bookmark parks, b's bookmark comes in.
	assert.Equal(t, bars[1].ID, f.active(t))
	assert.Equal(t, 2, f.tree.Mutations())
	assert.Equal(t, []string{"b-link"}, f.tree.ChildTitles(treetest.BarID))
}

func TestCommandWrapsAndSwitches(t *testing.T) {
	f := newFixture(t, false)
	bars := f.seed(t, "a", "b", "c")

	require.NoError(t, f.svc.Command("previous-bar"))
	f.svc.WaitCommands()
	assert.Equal(t, bars[2].ID, f.active(t))

	require.NoError(t, f.svc.Command("switch-to-9"))
	f.svc.WaitCommands()
	assert.Equal(t, bars[0].ID, f.active(t))

	assert.Error(t, f.svc.Command("switch-to-99"))
}

func TestExternalDuplicateIsRenamedOnce(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, "home")
	f.tree.ResetMutations()

	f.tree.Folder(f.rootID, "home")
	assert.Equal(t, []string{"home", "home_1"}, f.tree.ChildTitles(f.rootID))
	// The create plus one corrective rename; the rename's own event does
	// not trigger another pass.
	assert.Equal(t, 2, f.tree.Mutations())
}

func TestExternalRenameOfActiveBar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	bars := f.seed(t, "a", "b")

	_, err := f.tree.Update(ctx, bars[0].ID, "b")
	require.NoError(t, err)
	rec, _, err := f.svc.registry.Peek(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "b_1", rec.Title)
	assert.Equal(t, []string{"b_1", "b"}, f.tree.ChildTitles(f.rootID))
}

func TestExternalMoveIntoRootIsDeduped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	f.seed(t, "a")
	stray := f.tree.Folder(treetest.MobileID, "a")

	_, err := f.tree.Move(ctx, stray.ID, tree.AppendTo(f.rootID))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a_1"}, f.tree.ChildTitles(f.rootID))
}

func TestExternalRemovalOfActiveBarRecreatesIt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	bars := f.seed(t, "a", "b")

	require.NoError(t, f.tree.RemoveTree(ctx, bars[0].ID))
	assert.Equal(t, []string{"b", "a"}, f.tree.ChildTitles(f.rootID))
	rec, _, err := f.svc.registry.Peek(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "a", rec.Title)
	assert.NotEqual(t, bars[0].ID, rec.CollectionID)

	require.NoError(t, f.tree.RemoveTree(ctx, bars[1].ID))
	assert.Equal(t, []string{"a"}, f.tree.ChildTitles(f.rootID), "inactive bars are not recreated")
}

func TestExternalRemovalOfRootReinitializes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	f.seed(t, "a")

	require.NoError(t, f.tree.RemoveTree(ctx, f.rootID))
	rootID, ok, err := f.svc.tree.LookupCollectionsRoot(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"default"}, f.tree.ChildTitles(rootID))
}

func TestWorkspaceActivated(t *testing.T) {
	ctx := context.Background()
	off := newFixture(t, false)
	_, err := off.svc.WorkspaceActivated(ctx, "ws", "WS")
	assert.ErrorIs(t, err, ErrWorkspacesDisabled)

	f := newFixture(t, true)
	bars := f.seed(t, "a", "b")
	_, err = f.svc.WorkspaceActivated(ctx, "ws-1", "One")
	require.NoError(t, err)
	require.NoError(t, f.svc.LinkWorkspace(ctx, "ws-1", "b"))
	assert.ErrorIs(t, f.svc.LinkWorkspace(ctx, "ws-1", "nope"), ErrBarNotFound)

	_, err = f.svc.WorkspaceActivated(ctx, "ws-2", "Two")
	require.NoError(t, err)
	changed, err := f.svc.WorkspaceActivated(ctx, "ws-1", "One")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"b-link"}, f.tree.ChildTitles(treetest.BarID))

	changed, err = f.svc.WorkspaceActivated(ctx, "ws-1", "One")
	require.NoError(t, err)
	assert.False(t, changed)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, bars[1].ID, list[1].ID)
	assert.True(t, list[1].Active, "scope follows the current workspace")

	// Renaming a linked bar carries the link along.
	_, err = f.svc.Rename(ctx, bars[1].ID, "beta")
	require.NoError(t, err)
	entries, err := f.svc.Workspaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, "beta", entries[0].LinkedBarTitle)

	require.NoError(t, f.svc.ForgetWorkspace(ctx, "ws-2"))
	entries, _ = f.svc.Workspaces(ctx)
	assert.Len(t, entries, 1)
}

func TestMigrateLegacyTitle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	f.tree.Folder(f.rootID, "a")
	b := f.tree.Folder(f.rootID, "b")
	require.NoError(t, store.Set(ctx, f.svc.store, legacyTitleKey, "b"))

	require.NoError(t, f.svc.Init(ctx))
	assert.Equal(t, b.ID, f.active(t))
	_, ok, err := store.Get[string](ctx, f.svc.store, legacyTitleKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, f.synced.Has(legacyTitleKey))
	assert.True(t, f.synced.Has(registry.Key("")))
}

func TestBookmarksFollowActiveBar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	bars := f.seed(t, "a", "b")

	marks, err := f.svc.Bookmarks(ctx, bars[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-link"}, tree.Titles(marks))

	_, err = f.svc.AddBookmark(ctx, bars[1].ID, "extra", "https://extra.example")
	require.NoError(t, err)
	assert.Equal(t, []string{"b-link", "extra"}, f.tree.ChildTitles(bars[1].ID))

	_, err = f.svc.AddBookmark(ctx, "", "slot", "https://slot.example")
	require.NoError(t, err)
	assert.Equal(t, []string{"a-link", "slot"}, f.tree.ChildTitles(treetest.BarID))

	_, err = f.svc.AddBookmark(ctx, "", "no url", "")
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	f.seed(t, "a", "b")

	st, err := f.svc.Status(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Bars, 2)
	assert.Equal(t, "a", st.Active.Title)
	assert.Equal(t, 1, st.SlotItems)
	assert.Empty(t, st.Scope)
	assert.Equal(t, tree.DefaultRootTitle, st.RootTitle)
	assert.Equal(t, "default", st.DefaultTitle)
	assert.Nil(t, st.Paths)
}

func TestOpenReportsStoragePaths(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := &config.Config{
		Path:          dir,
		SyncPath:      filepath.Join(dir, "sync"),
		TreePath:      filepath.Join(dir, "bookmarks.db"),
		Vendor:        tree.VendorChromium,
		RootTitle:     "Bars",
		DefaultTitle:  "start",
		ShortcutDelay: 10 * time.Millisecond,
	}
	svc, err := Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.Paths)
	assert.Equal(t, cfg.TreePath, st.Paths.Tree)
	assert.Equal(t, cfg.LocalPath(), st.Paths.Local)
	assert.Equal(t, cfg.SyncPath, st.Paths.Synced)
	assert.Equal(t, "Bars", st.RootTitle)
	assert.Equal(t, "start", st.Active.Title)
}

func TestUnreadableRecordDoesNotRebind(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	bars := f.seed(t, "a", "b")
	_, err := f.svc.Exchange(ctx, exchange.RefOf(bars[1]))
	require.NoError(t, err)

	// Another installation: nothing local, synchronized tier unreadable.
	fresh := New(Options{Tree: f.tree, Local: store.NewMemoryTier(), Synced: f.synced, DefaultTitle: "default"})
	t.Cleanup(func() { _ = fresh.Close() })
	f.synced.GetErr = errors.New("sync unavailable")

	_, err = fresh.List(ctx)
	require.Error(t, err)
	_, err = fresh.Exchange(ctx, exchange.RefOf(bars[0]))
	require.Error(t, err)
	assert.Equal(t, []string{"b-link"}, f.tree.ChildTitles(treetest.BarID))
	assert.Equal(t, []string{"a-link"}, f.tree.ChildTitles(bars[0].ID))

	f.synced.GetErr = nil
	changed, err := fresh.Exchange(ctx, exchange.RefOf(bars[0]))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"a-link"}, f.tree.ChildTitles(treetest.BarID))
	assert.Equal(t, []string{"b-link"}, f.tree.ChildTitles(bars[1].ID))
	assert.Empty(t, f.tree.ChildTitles(bars[0].ID))
}

func TestDisablingWorkspacesParksIntoSlotOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	bars := f.seed(t, "a", "b", "c")
	_, err := f.svc.WorkspaceActivated(ctx, "ws-1", "One")
	require.NoError(t, err)
	_, err = f.svc.Exchange(ctx, exchange.RefOf(bars[1]))
	require.NoError(t, err)
	assert.Equal(t, []string{"b-link"}, f.tree.ChildTitles(treetest.BarID))

	off := New(Options{Tree: f.tree, Local: f.local, Synced: f.synced, DefaultTitle: "default"})
	t.Cleanup(func() { _ = off.Close() })
	changed, err := off.Exchange(ctx, exchange.RefOf(bars[2]))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"c-link"}, f.tree.ChildTitles(treetest.BarID))
	assert.Equal(t, []string{"a-link"}, f.tree.ChildTitles(bars[0].ID))
	assert.Equal(t, []string{"b-link"}, f.tree.ChildTitles(bars[1].ID))
}

func TestExternalRenameCarriesWorkspaceLink(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	bars := f.seed(t, "a", "b", "c")
	_, err := f.svc.WorkspaceActivated(ctx, "ws-1", "One")
	require.NoError(t, err)
	require.NoError(t, f.svc.LinkWorkspace(ctx, "ws-1", "c"))

	// c is not the visible bar when it is renamed.
	_, err = f.tree.Update(ctx, bars[2].ID, "gamma")
	require.NoError(t, err)
	entries, err := f.svc.Workspaces(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "gamma", entries[0].LinkedBarTitle)
	assert.Equal(t, bars[2].ID, entries[0].LinkedBarID)

	_, err = f.svc.WorkspaceActivated(ctx, "ws-2", "Two")
	require.NoError(t, err)
	changed, err := f.svc.WorkspaceActivated(ctx, "ws-1", "One")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"c-link"}, f.tree.ChildTitles(treetest.BarID))
}
