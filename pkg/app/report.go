package app

import (
	"context"

	"tableflip.dev/barswitch/pkg/workspace"
)

// Paths locates the on-disk state opened by Open.
type Paths struct {
	Tree   string `json:"tree"`
	Local  string `json:"local"`
	Synced string `json:"synced"`
}

// Status summarizes the current state.
type Status struct {
	Bars         []Bar             `json:"bars"`
	Active       Bar               `json:"active"`
	SlotItems    int               `json:"slotItems"`
	Scope        string            `json:"scope,omitempty"`
	Workspaces   []workspace.Entry `json:"workspaces,omitempty"`
	RootTitle    string            `json:"rootTitle"`
	DefaultTitle string            `json:"defaultTitle"`
	Paths        *Paths            `json:"paths,omitempty"`
}

// Status reports the bars, the active one and what the visible bar holds.
func (s *Service) Status(ctx context.Context) (Status, error) {
	var st Status
	err := s.do(func() error {
		bars, err := s.list(ctx)
		if err != nil {
			return err
		}
		st.Bars = bars
		for _, b := range bars {
			if b.Active {
				st.Active = b
			}
		}
		slotID, err := s.tree.VisibleSlotID(ctx)
		if err != nil {
			return err
		}
		items, err := s.tree.Store().GetChildren(ctx, slotID)
		if err != nil {
			return err
		}
		st.SlotItems = len(items)
		st.Scope = s.scope(ctx)
		st.RootTitle = s.tree.RootTitle()
		st.DefaultTitle = s.registry.DefaultTitle()
		st.Paths = s.paths
		if s.workspaces {
			if st.Workspaces, err = s.binder.Entries().List(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	return st, err
}
