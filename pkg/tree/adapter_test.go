package tree_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/barswitch/pkg/tree"
	"tableflip.dev/barswitch/pkg/tree/treetest"
)

func TestCollectionsRootIsCreatedOnce(t *testing.T) {
	ctx := context.Background()
	s := treetest.New()
	a := tree.NewAdapter(s, tree.Options{Vendor: tree.VendorChromium})

	first, err := a.CollectionsRoot(ctx)
	require.NoError(t, err)
	second, err := a.CollectionsRoot(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{tree.DefaultRootTitle}, s.ChildTitles(treetest.OtherID))
}

func TestCollectionsRootFollowsVendor(t *testing.T) {
	ctx := context.Background()
	s := treetest.New()
	a := tree.NewAdapter(s, tree.Options{Vendor: tree.VendorOpera, RootTitle: "Bars"})

	_, err := a.CollectionsRoot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bars"}, s.ChildTitles(treetest.MobileID))
	assert.Empty(t, s.ChildTitles(treetest.OtherID))
}

func TestOtherItemsIndexOverride(t *testing.T) {
	ctx := context.Background()
	s := treetest.New()
	a := tree.NewAdapter(s, tree.Options{Vendor: tree.VendorOpera, OtherItemsIndex: 1})

	_, err := a.CollectionsRoot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{tree.DefaultRootTitle}, s.ChildTitles(treetest.OtherID))
}

func TestVisibleSlotID(t *testing.T) {
	a := tree.NewAdapter(treetest.New(), tree.Options{})
	id, err := a.VisibleSlotID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, treetest.BarID, id)
}

func TestFindByTitleReturnsAllMatches(t *testing.T) {
	ctx := context.Background()
	s := treetest.New()
	a := tree.NewAdapter(s, tree.Options{})
	x1 := s.Folder(treetest.OtherID, "x")
	s.Folder(treetest.OtherID, "y")
	x2 := s.Folder(treetest.OtherID, "x")

	ids, err := a.FindByTitle(ctx, treetest.OtherID, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{x1.ID, x2.ID}, ids)

	ids, err = a.FindByTitle(ctx, treetest.OtherID, "z")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFindByIDNeverFails(t *testing.T) {
	ctx := context.Background()
	s := treetest.New()
	a := tree.NewAdapter(s, tree.Options{})
	n := s.Folder(treetest.OtherID, "x")

	got, ok := a.FindByID(ctx, n.ID, "")
	require.True(t, ok)
	assert.Equal(t, "x", got.Title)

	_, ok = a.FindByID(ctx, n.ID, treetest.BarID)
	assert.False(t, ok, "parent mismatch")

	_, ok = a.FindByID(ctx, "nope", "")
	assert.False(t, ok)

	_, ok = a.FindByID(ctx, "", "")
	assert.False(t, ok)

	s.GetErr = errors.New("host exploded")
	_, ok = a.FindByID(ctx, n.ID, "")
	assert.False(t, ok)
}

func TestMoveAllChildren(t *testing.T) {
	ctx := context.Background()
	s := treetest.New()
	a := tree.NewAdapter(s, tree.Options{})
	src := s.Folder(treetest.OtherID, "src")
	dst := s.Folder(treetest.OtherID, "dst")
	s.Bookmark(src.ID, "a", "https://a.example")
	s.Bookmark(src.ID, "b", "https://b.example")
	s.Bookmark(dst.ID, "c", "https://c.example")

	n, err := a.MoveAllChildren(ctx, src.ID, dst.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, s.ChildTitles(src.ID))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, s.ChildTitles(dst.ID))
}

func TestListCollectionsSkipsBookmarks(t *testing.T) {
	ctx := context.Background()
	s := treetest.New()
	a := tree.NewAdapter(s, tree.Options{})
	root, err := a.CollectionsRoot(ctx)
	require.NoError(t, err)
	s.Folder(root, "work")
	s.Bookmark(root, "stray", "https://stray.example")
	s.Folder(root, "home")

	bars, err := a.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "home"}, tree.Titles(bars))
}

func TestSiblingTitlesSkipsSelf(t *testing.T) {
	ctx := context.Background()
	s := treetest.New()
	a := tree.NewAdapter(s, tree.Options{})
	self := s.Folder(treetest.OtherID, "x")
	s.Folder(treetest.OtherID, "y")

	titles, err := a.SiblingTitles(ctx, treetest.OtherID, self.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, titles)
}

func TestParseVendor(t *testing.T) {
	v, err := tree.ParseVendor("Opera")
	require.NoError(t, err)
	assert.Equal(t, tree.VendorOpera, v)

	v, err = tree.ParseVendor("")
	require.NoError(t, err)
	assert.Equal(t, tree.VendorChromium, v)

	_, err = tree.ParseVendor("netscape")
	assert.Error(t, err)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, tree.KindBookmark, tree.KindOf("https://example.com"))
	assert.Equal(t, tree.KindFolder, tree.KindOf(""))
}
