package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"tableflip.dev/barswitch/pkg/names"
	"tableflip.dev/barswitch/pkg/tree"
)

// Attach subscribes the event handlers to n. The returned func detaches
// them.
func (s *Service) Attach(n tree.Notifier) func() {
	return n.Subscribe(s.onEvent)
}

func (s *Service) onEvent(ctx context.Context, ev tree.Event) {
	log := s.log.WithFields(logrus.Fields{"event": ev.Type, "id": ev.ID})
	if s.suppress.Load() {
		log.Debug("own change, ignored")
		return
	}
	var err error
	switch ev.Type {
	case tree.EventChanged:
		err = s.HandleChanged(ctx, ev)
	case tree.EventCreated:
		err = s.HandleCreated(ctx, ev)
	case tree.EventMoved:
		err = s.HandleMoved(ctx, ev)
	case tree.EventRemoved:
		err = s.HandleRemoved(ctx, ev)
	}
	if err != nil {
		log.WithError(err).Warn("event handling failed")
	}
}

// lookupRoot finds the collections root without creating it.
func (s *Service) lookupRoot(ctx context.Context) (string, bool) {
	id, ok, err := s.tree.LookupCollectionsRoot(ctx)
	if err != nil {
		s.log.WithError(err).Debug("collections root lookup failed")
		return "", false
	}
	return id, ok
}

// dedupe gives bar id a title unique among its siblings and returns the
// resulting node.
func (s *Service) dedupe(ctx context.Context, rootID, id string) (tree.Node, error) {
	n, ok := s.tree.FindByID(ctx, id, rootID)
	if !ok || !n.IsFolder() {
		return tree.Node{}, nil
	}
	siblings, err := s.tree.Store().GetChildren(ctx, rootID)
	if err != nil {
		return tree.Node{}, err
	}
	title := names.ResolveSibling(siblings, id, n.Title)
	if title == n.Title {
		return n, nil
	}
	s.log.WithFields(logrus.Fields{"id": id, "from": n.Title, "to": title}).Info("renaming duplicate bar")
	renamed, err := s.tree.Store().Update(ctx, id, title)
	if err != nil {
		return tree.Node{}, fmt.Errorf("app: rename duplicate: %w", err)
	}
	return renamed, nil
}

// HandleChanged reacts to a retitled node. A retitled collections root
// re-runs Init. A retitled bar gets a unique title; the active record and
// workspace links follow it.
func (s *Service) HandleChanged(ctx context.Context, ev tree.Event) error {
	return s.do(func() error {
		rootID, ok := s.lookupRoot(ctx)
		if !ok || ev.ID == rootID {
			return s.init(ctx)
		}
		scope := s.scope(ctx)
		rec, hasRec, err := s.registry.Peek(ctx, scope)
		if err != nil {
			hasRec = false
		}
		n, err := s.dedupe(ctx, rootID, ev.ID)
		if err != nil || n.ID == "" {
			return err
		}
		oldTitle := ""
		if hasRec && rec.CollectionID == n.ID {
			oldTitle = rec.Title
		}
		s.followRename(ctx, oldTitle, n)
		return nil
	})
}

// HandleCreated gives a bar created by someone else a unique title.
func (s *Service) HandleCreated(ctx context.Context, ev tree.Event) error {
	return s.do(func() error {
		if ev.Node.ParentID == "" || !ev.Node.IsFolder() {
			return nil
		}
		rootID, ok := s.lookupRoot(ctx)
		if !ok || ev.Node.ParentID != rootID {
			return nil
		}
		_, err := s.dedupe(ctx, rootID, ev.ID)
		return err
	})
}

// HandleMoved re-runs Init when the collections root moved and gives a
// folder moved into the root a unique title.
func (s *Service) HandleMoved(ctx context.Context, ev tree.Event) error {
	return s.do(func() error {
		rootID, ok := s.lookupRoot(ctx)
		if !ok || ev.ID == rootID {
			return s.init(ctx)
		}
		if ev.Node.ParentID != rootID || !ev.Node.IsFolder() {
			return nil
		}
		_, err := s.dedupe(ctx, rootID, ev.ID)
		return err
	})
}

// HandleRemoved re-runs Init when the collections root is gone. When the
// active bar was removed an empty bar with the same title takes its place.
func (s *Service) HandleRemoved(ctx context.Context, ev tree.Event) error {
	return s.do(func() error {
		rootID, ok := s.lookupRoot(ctx)
		if !ok || ev.ID == rootID {
			return s.init(ctx)
		}
		if ev.Node.ParentID != rootID || !ev.Node.IsFolder() {
			return nil
		}
		scope := s.scope(ctx)
		rec, ok, err := s.registry.Peek(ctx, scope)
		if err != nil || !ok {
			return err
		}
		if rec.CollectionID != ev.ID && rec.Title != ev.Node.Title {
			return nil
		}
		if _, found, err := s.registry.Lookup(ctx, rec); err != nil || found {
			return err
		}
		n, err := s.tree.Store().Create(ctx, tree.CreateSpec{ParentID: rootID, Title: ev.Node.Title})
		if err != nil {
			return fmt.Errorf("app: recreate active bar: %w", err)
		}
		s.log.WithField("title", n.Title).Info("active bar was removed, recreated it empty")
		return s.registry.Update(ctx, scope, n)
	})
}
