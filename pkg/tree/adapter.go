package tree

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"tableflip.dev/barswitch/pkg/logging"
)

// DefaultRootTitle is the folder that holds every saved bar.
const DefaultRootTitle = "Bookmark Bars"

// Vendor identifies the host flavour. Hosts disagree on where the "other
// items" container sits among the top-level folders.
type Vendor string

const (
	VendorChromium Vendor = "chromium"
	VendorOpera    Vendor = "opera"
)

// OtherItemsIndex is the top-level slot of the "other items" container.
func (v Vendor) OtherItemsIndex() int {
	switch v {
	case VendorOpera:
		return 2
	default:
		return 1
	}
}

// ParseVendor maps a config value onto a Vendor.
func ParseVendor(raw string) (Vendor, error) {
	switch v := Vendor(strings.ToLower(strings.TrimSpace(raw))); v {
	case "", VendorChromium, "chrome", "edge", "brave":
		return VendorChromium, nil
	case VendorOpera:
		return VendorOpera, nil
	default:
		return VendorChromium, fmt.Errorf("tree: unknown host vendor %q", raw)
	}
}

var errNoContainer = errors.New("tree: host tree has no such top-level folder")

// Options configure an Adapter.
type Options struct {
	Vendor Vendor
	// OtherItemsIndex overrides the vendor default when > 0. Slot 0 is
	// always the visible bar.
	OtherItemsIndex int
	// RootTitle names the folder holding all bars.
	RootTitle string
}

// Adapter runs bar-level queries and mutations against a Store.
type Adapter struct {
	store      Store
	otherIndex int
	rootTitle  string
	log        *logrus.Entry
}

// NewAdapter wraps store.
func NewAdapter(store Store, opts Options) *Adapter {
	idx := opts.Vendor.OtherItemsIndex()
	if opts.OtherItemsIndex > 0 {
		idx = opts.OtherItemsIndex
	}
	title := strings.TrimSpace(opts.RootTitle)
	if title == "" {
		title = DefaultRootTitle
	}
	return &Adapter{
		store:      store,
		otherIndex: idx,
		rootTitle:  title,
		log:        logging.NewLogger("tree"),
	}
}

// Store exposes the wrapped store.
func (a *Adapter) Store() Store {
	return a.store
}

// RootTitle is the title of the collections root folder.
func (a *Adapter) RootTitle() string {
	return a.rootTitle
}

// FindByTitle returns the ids of the direct children of parentID titled
// title. More than one id means an earlier duplicate slipped through.
func (a *Adapter) FindByTitle(ctx context.Context, parentID, title string) ([]string, error) {
	children, err := a.store.GetChildren(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("tree: children of %s: %w", parentID, err)
	}
	var ids []string
	for _, c := range children {
		if c.Title == title {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

// FindByID looks a node up. A missing id, a host lookup failure or a parent
// other than expectedParentID (when set) all report false.
func (a *Adapter) FindByID(ctx context.Context, id, expectedParentID string) (Node, bool) {
	if id == "" {
		return Node{}, false
	}
	nodes, err := a.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.log.WithError(err).WithField("id", id).Debug("lookup failed, treating as missing")
		}
		return Node{}, false
	}
	if len(nodes) == 0 {
		return Node{}, false
	}
	n := nodes[0]
	if expectedParentID != "" && n.ParentID != expectedParentID {
		return Node{}, false
	}
	return n, true
}

// MoveAllChildren relocates every child of sourceID into targetID and
// returns how many moved. Ordering inside the target is not guaranteed.
func (a *Adapter) MoveAllChildren(ctx context.Context, sourceID, targetID string) (int, error) {
	children, err := a.store.GetChildren(ctx, sourceID)
	if err != nil {
		return 0, fmt.Errorf("tree: children of %s: %w", sourceID, err)
	}
	for i, c := range children {
		if _, err := a.store.Move(ctx, c.ID, AppendTo(targetID)); err != nil {
			return i, fmt.Errorf("tree: move %s to %s: %w", c.ID, targetID, err)
		}
	}
	a.log.WithFields(logrus.Fields{"from": sourceID, "to": targetID, "count": len(children)}).Debug("moved children")
	return len(children), nil
}

func (a *Adapter) topLevel(ctx context.Context, index int) (Node, error) {
	roots, err := a.store.Roots(ctx)
	if err != nil {
		return Node{}, fmt.Errorf("tree: roots: %w", err)
	}
	if index < 0 || index >= len(roots) {
		return Node{}, fmt.Errorf("%w: index %d of %d", errNoContainer, index, len(roots))
	}
	return roots[index], nil
}

// VisibleSlotID returns the id of the folder rendered as the bookmarks bar.
func (a *Adapter) VisibleSlotID(ctx context.Context) (string, error) {
	n, err := a.topLevel(ctx, 0)
	if err != nil {
		return "", err
	}
	return n.ID, nil
}

// LookupCollectionsRoot locates the folder holding all bars without
// creating it.
func (a *Adapter) LookupCollectionsRoot(ctx context.Context) (string, bool, error) {
	other, err := a.topLevel(ctx, a.otherIndex)
	if err != nil {
		return "", false, err
	}
	ids, err := a.FindByTitle(ctx, other.ID, a.rootTitle)
	if err != nil || len(ids) == 0 {
		return "", false, err
	}
	return ids[0], true, nil
}

// CollectionsRoot locates the folder holding all bars, creating it inside
// the "other items" container when it is missing.
func (a *Adapter) CollectionsRoot(ctx context.Context) (string, error) {
	id, ok, err := a.LookupCollectionsRoot(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		return id, nil
	}
	other, err := a.topLevel(ctx, a.otherIndex)
	if err != nil {
		return "", err
	}
	created, err := a.store.Create(ctx, CreateSpec{ParentID: other.ID, Title: a.rootTitle})
	if err != nil {
		return "", fmt.Errorf("tree: create %q: %w", a.rootTitle, err)
	}
	a.log.WithField("id", created.ID).Info("created collections root")
	return created.ID, nil
}

// ListCollections returns the bars in tree order. Leaf bookmarks that ended
// up directly under the root are skipped.
func (a *Adapter) ListCollections(ctx context.Context) ([]Node, error) {
	rootID, err := a.CollectionsRoot(ctx)
	if err != nil {
		return nil, err
	}
	children, err := a.store.GetChildren(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("tree: children of %s: %w", rootID, err)
	}
	return Folders(children), nil
}

// SiblingTitles returns the titles of every child of parentID except skipID.
func (a *Adapter) SiblingTitles(ctx context.Context, parentID, skipID string) ([]string, error) {
	children, err := a.store.GetChildren(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("tree: children of %s: %w", parentID, err)
	}
	titles := make([]string, 0, len(children))
	for _, c := range children {
		if c.ID != skipID {
			titles = append(titles, c.Title)
		}
	}
	return titles, nil
}
