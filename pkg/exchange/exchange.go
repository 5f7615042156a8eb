// Package exchange swaps the contents of the visible bookmarks bar with a
// saved bar.
package exchange

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"tableflip.dev/barswitch/pkg/logging"
	"tableflip.dev/barswitch/pkg/registry"
	"tableflip.dev/barswitch/pkg/store"
	"tableflip.dev/barswitch/pkg/tree"
)

// Ref names a bar by id, falling back to Title when the id does not
// resolve.
type Ref struct {
	ID    string
	Title string
}

// RefOf returns the Ref of n.
func RefOf(n tree.Node) Ref {
	return Ref{ID: n.ID, Title: n.Title}
}

func (r Ref) record() registry.Record {
	return registry.Record{CollectionID: r.ID, Title: r.Title}
}

// Engine performs exchanges.
type Engine struct {
	tree     *tree.Adapter
	registry *registry.Registry
	log      *logrus.Entry
}

// New returns an Engine.
func New(adapter *tree.Adapter, reg *registry.Registry) *Engine {
	return &Engine{
		tree:     adapter,
		registry: reg,
		log:      logging.NewLogger("exchange"),
	}
}

// Exchange parks the visible bar's content in deactivate and brings the
// content of activate into the visible bar, then records activate as the
// active bar of scope and of the unscoped binding. A nil deactivate means the bar currently bound to
// scope.
//
// Nothing happens when both refs name the same bar or either one does not
// resolve. The returned bool reports whether the tree was touched. A
// dropped synchronized write of the new binding is logged, not returned.
func (e *Engine) Exchange(ctx context.Context, scope string, activate Ref, deactivate *Ref) (bool, error) {
	log := e.log.WithField("scope", scope)

	var outgoing tree.Node
	if deactivate == nil {
		n, err := e.registry.Resolve(ctx, scope)
		if err != nil {
			return false, fmt.Errorf("exchange: resolve active bar: %w", err)
		}
		outgoing = n
	} else {
		n, ok, err := e.registry.Lookup(ctx, deactivate.record())
		if err != nil {
			return false, fmt.Errorf("exchange: resolve deactivate: %w", err)
		}
		if !ok {
			log.WithField("deactivate", *deactivate).Debug("deactivate target not found, skipping")
			return false, nil
		}
		outgoing = n
	}

	incoming, ok, err := e.registry.Lookup(ctx, activate.record())
	if err != nil {
		return false, fmt.Errorf("exchange: resolve activate: %w", err)
	}
	if !ok {
		log.WithField("activate", activate).Debug("activate target not found, skipping")
		return false, nil
	}
	if incoming.ID == outgoing.ID {
		log.WithField("id", incoming.ID).Debug("already active")
		return false, nil
	}

	slotID, err := e.tree.VisibleSlotID(ctx)
	if err != nil {
		return false, err
	}
	// The slot has to be emptied before the incoming content arrives.
	parked, err := e.tree.MoveAllChildren(ctx, slotID, outgoing.ID)
	if err != nil {
		return true, fmt.Errorf("exchange: park %q: %w", outgoing.Title, err)
	}
	brought, err := e.tree.MoveAllChildren(ctx, incoming.ID, slotID)
	if err != nil {
		return true, fmt.Errorf("exchange: bring in %q: %w", incoming.Title, err)
	}

	// The unscoped record always names the bar in the slot.
	scopes := []string{scope}
	if scope != "" {
		scopes = append(scopes, "")
	}
	for _, sc := range scopes {
		if err := e.registry.Update(ctx, sc, incoming); err != nil {
			if !store.IsQuota(err) {
				return true, fmt.Errorf("exchange: record active bar: %w", err)
			}
			log.WithError(err).Warn("active bar saved locally only")
		}
	}
	log.WithFields(logrus.Fields{
		"from":    outgoing.Title,
		"to":      incoming.Title,
		"parked":  parked,
		"brought": brought,
	}).Info("exchanged bars")
	return true, nil
}
