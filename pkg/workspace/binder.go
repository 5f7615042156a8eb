package workspace

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"tableflip.dev/barswitch/pkg/exchange"
	"tableflip.dev/barswitch/pkg/logging"
	"tableflip.dev/barswitch/pkg/registry"
	"tableflip.dev/barswitch/pkg/store"
	"tableflip.dev/barswitch/pkg/tree"
)

// Binder follows workspace activations. All of its state is persisted, so a
// restarted process picks up where the last one stopped.
type Binder struct {
	store    *store.DualTier
	entries  *Entries
	registry *registry.Registry
	engine   *exchange.Engine
	log      *logrus.Entry
}

// NewBinder returns a Binder.
func NewBinder(st *store.DualTier, reg *registry.Registry, engine *exchange.Engine) *Binder {
	return &Binder{
		store:    st,
		entries:  NewEntries(st),
		registry: reg,
		engine:   engine,
		log:      logging.NewLogger("workspace"),
	}
}

// Entries exposes the workspace list.
func (b *Binder) Entries() *Entries {
	return b.entries
}

// Last returns the id of the most recently activated workspace.
func (b *Binder) Last(ctx context.Context) (string, error) {
	id, _, err := store.Get[string](ctx, b.store, lastKey)
	return id, err
}

// Activate handles a workspace activation. A repeat of the last workspace
// is ignored. Otherwise the bar of the new workspace replaces the bar of the
// previous one, or the unscoped bar when there is no previous workspace.
// It reports whether the visible bar changed.
func (b *Binder) Activate(ctx context.Context, id, name string) (bool, error) {
	log := b.log.WithFields(logrus.Fields{"workspace": id, "name": name})
	last, err := b.Last(ctx)
	if err != nil {
		log.WithError(err).Warn("last workspace unreadable")
		last = ""
	}
	if id == last {
		return false, nil
	}
	if err := b.entries.Upsert(ctx, id, name); err != nil && !store.IsQuota(err) {
		return false, err
	}

	target, err := b.target(ctx, id)
	if err != nil {
		return false, err
	}
	previous, err := b.registry.Resolve(ctx, last)
	if err != nil {
		return false, fmt.Errorf("workspace: resolve previous bar: %w", err)
	}
	prev := exchange.RefOf(previous)
	changed, err := b.engine.Exchange(ctx, id, exchange.RefOf(target), &prev)
	if err != nil {
		return changed, err
	}
	if err := store.Set(ctx, b.store, lastKey, id); err != nil && !store.IsQuota(err) {
		return changed, err
	}
	log.WithFields(logrus.Fields{"from": previous.Title, "to": target.Title, "changed": changed}).Debug("workspace activated")
	return changed, nil
}

// target is the linked bar of id when one is set and exists, else the bar
// bound to the workspace scope.
func (b *Binder) target(ctx context.Context, id string) (tree.Node, error) {
	entry, ok, err := b.entries.Get(ctx, id)
	if err != nil {
		return tree.Node{}, err
	}
	if ok && entry.LinkedBarTitle != "" {
		n, found, err := b.registry.Lookup(ctx, registry.Record{CollectionID: entry.LinkedBarID, Title: entry.LinkedBarTitle})
		if err != nil {
			return tree.Node{}, err
		}
		if found {
			return n, nil
		}
		b.log.WithField("title", entry.LinkedBarTitle).Info("linked bar is gone, using last bar of workspace")
	}
	n, err := b.registry.Resolve(ctx, id)
	if err != nil {
		return tree.Node{}, fmt.Errorf("workspace: resolve bar: %w", err)
	}
	return n, nil
}

// Forget drops workspace id together with its bar binding.
func (b *Binder) Forget(ctx context.Context, id string) error {
	if err := b.entries.Forget(ctx, id); err != nil {
		return err
	}
	return b.registry.Clear(ctx, id)
}
