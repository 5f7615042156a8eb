// Package registry remembers which bar currently occupies the visible
// bookmarks bar, optionally per workspace.
package registry

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"tableflip.dev/barswitch/pkg/logging"
	"tableflip.dev/barswitch/pkg/names"
	"tableflip.dev/barswitch/pkg/store"
	"tableflip.dev/barswitch/pkg/tree"
)

const keyPrefix = "activeBar"

// Record points at the bar whose content sits in the visible slot. The bar
// is looked up by CollectionID first and by Title when the id is gone.
type Record struct {
	CollectionID string `json:"collectionId"`
	Title        string `json:"title"`
	WorkspaceID  string `json:"workspaceId,omitempty"`
}

// Key returns the storage key of the record for scope. The empty scope is
// used when workspaces are not in play.
func Key(scope string) string {
	if scope == "" {
		return keyPrefix
	}
	return keyPrefix + "/" + scope
}

// Registry resolves and persists active bar records.
type Registry struct {
	tree         *tree.Adapter
	store        *store.DualTier
	defaultTitle string
	log          *logrus.Entry
}

// New returns a Registry. defaultTitle names the bar created when there is
// nothing to bind to.
func New(adapter *tree.Adapter, st *store.DualTier, defaultTitle string) *Registry {
	return &Registry{
		tree:         adapter,
		store:        st,
		defaultTitle: defaultTitle,
		log:          logging.NewLogger("registry"),
	}
}

// DefaultTitle is the title given to a bar created from nothing.
func (r *Registry) DefaultTitle() string {
	return r.defaultTitle
}

// Peek reads the stored record for scope without repairing anything.
func (r *Registry) Peek(ctx context.Context, scope string) (Record, bool, error) {
	return store.Get[Record](ctx, r.store, Key(scope))
}

// Lookup finds the bar a record points at without creating anything.
func (r *Registry) Lookup(ctx context.Context, rec Record) (tree.Node, bool, error) {
	rootID, err := r.tree.CollectionsRoot(ctx)
	if err != nil {
		return tree.Node{}, false, err
	}
	return r.lookup(ctx, rootID, rec)
}

func (r *Registry) lookup(ctx context.Context, rootID string, rec Record) (tree.Node, bool, error) {
	if n, ok := r.tree.FindByID(ctx, rec.CollectionID, rootID); ok && n.IsFolder() {
		return n, true, nil
	}
	if rec.Title == "" {
		return tree.Node{}, false, nil
	}
	ids, err := r.tree.FindByTitle(ctx, rootID, rec.Title)
	if err != nil {
		return tree.Node{}, false, err
	}
	for _, id := range ids {
		if n, ok := r.tree.FindByID(ctx, id, rootID); ok && n.IsFolder() {
			return n, true, nil
		}
	}
	return tree.Node{}, false, nil
}

// Resolve returns the bar bound to scope. A missing or dangling record binds
// to the first bar in tree order, or to a freshly created default bar when
// there are none. A record that cannot be read is an error and nothing is
// rebound.
func (r *Registry) Resolve(ctx context.Context, scope string) (tree.Node, error) {
	log := r.log.WithField("scope", scope)
	rootID, err := r.tree.CollectionsRoot(ctx)
	if err != nil {
		return tree.Node{}, err
	}

	rec, ok, err := r.Peek(ctx, scope)
	if err != nil {
		return tree.Node{}, fmt.Errorf("registry: read active bar: %w", err)
	}
	if ok {
		n, found, err := r.lookup(ctx, rootID, rec)
		if err != nil {
			return tree.Node{}, err
		}
		if found {
			if n.ID != rec.CollectionID || n.Title != rec.Title {
				r.persist(ctx, scope, n)
			}
			return n, nil
		}
		log.WithFields(logrus.Fields{"id": rec.CollectionID, "title": rec.Title}).Info("active bar is gone, rebinding")
	}

	bars, err := r.tree.ListCollections(ctx)
	if err != nil {
		return tree.Node{}, err
	}
	var n tree.Node
	if len(bars) > 0 {
		n = bars[0]
	} else {
		siblings, err := r.tree.SiblingTitles(ctx, rootID, "")
		if err != nil {
			return tree.Node{}, err
		}
		title := names.Resolve(siblings, r.defaultTitle)
		n, err = r.tree.Store().Create(ctx, tree.CreateSpec{ParentID: rootID, Title: title})
		if err != nil {
			return tree.Node{}, fmt.Errorf("registry: create default bar: %w", err)
		}
		log.WithField("title", title).Info("created default bar")
	}
	r.persist(ctx, scope, n)
	return n, nil
}

func (r *Registry) persist(ctx context.Context, scope string, n tree.Node) {
	if err := r.Update(ctx, scope, n); err != nil {
		r.log.WithError(err).WithField("scope", scope).Warn("could not persist active bar")
	}
}

// Update binds scope to n. Other scopes are left alone.
func (r *Registry) Update(ctx context.Context, scope string, n tree.Node) error {
	rec := Record{CollectionID: n.ID, Title: n.Title, WorkspaceID: scope}
	r.log.WithFields(logrus.Fields{"scope": scope, "id": n.ID, "title": n.Title}).Debug("active bar updated")
	return store.Set(ctx, r.store, Key(scope), rec)
}

// Clear forgets the binding of scope.
func (r *Registry) Clear(ctx context.Context, scope string) error {
	return r.store.Delete(ctx, Key(scope))
}
