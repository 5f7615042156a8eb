package app

import (
	"context"
	"fmt"

	"tableflip.dev/barswitch/pkg/config"
	"tableflip.dev/barswitch/pkg/store"
	"tableflip.dev/barswitch/pkg/tree"
	"tableflip.dev/barswitch/pkg/tree/sqlitetree"
)

// Open builds a Service on the on-disk tree and tiers named by cfg, attaches
// the event handlers and runs Init. Close releases everything.
func Open(ctx context.Context, cfg *config.Config) (*Service, error) {
	bookmarks, err := sqlitetree.Open(cfg.TreePath)
	if err != nil {
		return nil, err
	}
	local, err := store.NewLocal(cfg.LocalPath())
	if err != nil {
		_ = bookmarks.Close()
		return nil, err
	}
	synced, err := store.NewSynced(cfg.SyncPath, store.SyncedOptions{WritesPerMinute: cfg.SyncWritesPerMin})
	if err != nil {
		_ = bookmarks.Close()
		return nil, err
	}

	s := New(Options{
		Tree: bookmarks,
		TreeOptions: tree.Options{
			Vendor:          cfg.Vendor,
			OtherItemsIndex: cfg.OtherItemsIndex,
			RootTitle:       cfg.RootTitle,
		},
		Local:         local,
		Synced:        synced,
		DefaultTitle:  cfg.DefaultTitle,
		ShortcutDelay: cfg.ShortcutDelay,
		Workspaces:    cfg.Workspaces,
	})
	s.paths = &Paths{Tree: bookmarks.Path(), Local: local.BasePath(), Synced: synced.Dir()}
	detach := s.Attach(bookmarks)
	s.closers = append(s.closers, bookmarks.Close, func() error { detach(); return nil })

	if err := s.Init(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("app: init: %w", err)
	}
	return s, nil
}
