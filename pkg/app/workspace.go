package app

import (
	"context"

	"tableflip.dev/barswitch/pkg/registry"
	"tableflip.dev/barswitch/pkg/workspace"
)

// Workspaces lists known workspaces in the order they were first seen.
func (s *Service) Workspaces(ctx context.Context) ([]workspace.Entry, error) {
	var list []workspace.Entry
	err := s.do(func() error {
		var err error
		list, err = s.binder.Entries().List(ctx)
		return err
	})
	return list, err
}

// CurrentWorkspace is the id of the last activated workspace.
func (s *Service) CurrentWorkspace(ctx context.Context) (string, error) {
	return s.binder.Last(ctx)
}

// LinkWorkspace pins the bar titled title to workspace id.
func (s *Service) LinkWorkspace(ctx context.Context, id, title string) error {
	if !s.workspaces {
		return ErrWorkspacesDisabled
	}
	return s.do(func() error {
		n, ok, err := s.registry.Lookup(ctx, registry.Record{Title: title})
		if err != nil {
			return err
		}
		if !ok {
			return ErrBarNotFound
		}
		return s.binder.Entries().Link(ctx, id, n.ID, n.Title)
	})
}

// UnlinkWorkspace removes the pinned bar of workspace id.
func (s *Service) UnlinkWorkspace(ctx context.Context, id string) error {
	if !s.workspaces {
		return ErrWorkspacesDisabled
	}
	return s.do(func() error {
		return s.binder.Entries().Unlink(ctx, id)
	})
}

// ForgetWorkspace drops workspace id and its bar binding.
func (s *Service) ForgetWorkspace(ctx context.Context, id string) error {
	if !s.workspaces {
		return ErrWorkspacesDisabled
	}
	return s.do(func() error {
		return s.binder.Forget(ctx, id)
	})
}
