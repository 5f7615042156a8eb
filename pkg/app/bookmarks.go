package app

import (
	"context"
	"fmt"
	"strings"

	"tableflip.dev/barswitch/pkg/tree"
)

// holder returns the folder that holds the content of barID right now. The
// active bar's content sits in the visible slot; an empty barID also means
// the visible slot.
func (s *Service) holder(ctx context.Context, barID string) (string, error) {
	slotID, err := s.tree.VisibleSlotID(ctx)
	if err != nil {
		return "", err
	}
	if barID == "" {
		return slotID, nil
	}
	rootID, err := s.tree.CollectionsRoot(ctx)
	if err != nil {
		return "", err
	}
	n, ok := s.tree.FindByID(ctx, barID, rootID)
	if !ok || !n.IsFolder() {
		return "", ErrBarNotFound
	}
	active, err := s.registry.Resolve(ctx, s.scope(ctx))
	if err != nil {
		return "", err
	}
	if active.ID == n.ID {
		return slotID, nil
	}
	return n.ID, nil
}

// Bookmarks lists the content of barID, or of the visible bar when barID
// is empty.
func (s *Service) Bookmarks(ctx context.Context, barID string) ([]tree.Node, error) {
	var out []tree.Node
	err := s.do(func() error {
		id, err := s.holder(ctx, barID)
		if err != nil {
			return err
		}
		out, err = s.tree.Store().GetChildren(ctx, id)
		return err
	})
	return out, err
}

// AddBookmark appends a bookmark to barID, or to the visible bar when barID
// is empty.
func (s *Service) AddBookmark(ctx context.Context, barID, title, url string) (tree.Node, error) {
	if strings.TrimSpace(url) == "" {
		return tree.Node{}, fmt.Errorf("app: bookmark %q has no url", title)
	}
	var n tree.Node
	err := s.do(func() error {
		id, err := s.holder(ctx, barID)
		if err != nil {
			return err
		}
		n, err = s.tree.Store().Create(ctx, tree.CreateSpec{ParentID: id, Title: title, URL: url})
		return err
	})
	return n, err
}
