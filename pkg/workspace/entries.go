// Package workspace binds bars to host workspaces and switches the visible
// bar when the active workspace changes.
package workspace

import (
	"context"
	"errors"

	"tableflip.dev/barswitch/pkg/store"
)

const (
	entriesKey = "workspaces"
	lastKey    = "lastWorkspaceId"
)

// ErrUnknown is returned for a workspace id that has no entry.
var ErrUnknown = errors.New("workspace: unknown workspace")

// Entry is what is remembered about a workspace.
type Entry struct {
	WorkspaceID   string `json:"workspaceId"`
	WorkspaceName string `json:"workspaceName"`
	// LinkedBarTitle, when set, names the bar the workspace always shows.
	LinkedBarTitle string `json:"linkedBarTitle,omitempty"`
	// LinkedBarID is the id of that bar. Links saved before ids were kept
	// have only the title.
	LinkedBarID string `json:"linkedBarId,omitempty"`
}

// Entries is the ordered list of known workspaces.
type Entries struct {
	store *store.DualTier
}

// NewEntries returns Entries kept in st.
func NewEntries(st *store.DualTier) *Entries {
	return &Entries{store: st}
}

// List returns every entry in the order they were first seen.
func (e *Entries) List(ctx context.Context) ([]Entry, error) {
	list, _, err := store.Get[[]Entry](ctx, e.store, entriesKey)
	return list, err
}

// Get returns the entry of id.
func (e *Entries) Get(ctx context.Context, id string) (Entry, bool, error) {
	list, err := e.List(ctx)
	if err != nil {
		return Entry{}, false, err
	}
	if i := indexOf(list, id); i >= 0 {
		return list[i], true, nil
	}
	return Entry{}, false, nil
}

// Upsert records id under name, appending new workspaces. It does not write
// when nothing changed.
func (e *Entries) Upsert(ctx context.Context, id, name string) error {
	return e.update(ctx, func(list []Entry) ([]Entry, bool, error) {
		if i := indexOf(list, id); i >= 0 {
			if list[i].WorkspaceName == name || name == "" {
				return list, false, nil
			}
			list[i].WorkspaceName = name
			return list, true, nil
		}
		return append(list, Entry{WorkspaceID: id, WorkspaceName: name}), true, nil
	})
}

// Link pins bar barID, titled title, to workspace id.
func (e *Entries) Link(ctx context.Context, id, barID, title string) error {
	return e.update(ctx, func(list []Entry) ([]Entry, bool, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, false, ErrUnknown
		}
		if list[i].LinkedBarTitle == title && list[i].LinkedBarID == barID {
			return list, false, nil
		}
		list[i].LinkedBarTitle = title
		list[i].LinkedBarID = barID
		return list, true, nil
	})
}

// Unlink removes the pinned bar of workspace id.
func (e *Entries) Unlink(ctx context.Context, id string) error {
	return e.Link(ctx, id, "", "")
}

// Forget drops the entry of id.
func (e *Entries) Forget(ctx context.Context, id string) error {
	return e.update(ctx, func(list []Entry) ([]Entry, bool, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, false, ErrUnknown
		}
		return append(list[:i], list[i+1:]...), true, nil
	})
}

// RenameLinks gives links to bar barID the title newTitle and reports how
// many entries changed. Links without an id match on oldTitle and pick up
// barID. An empty oldTitle matches ids only.
func (e *Entries) RenameLinks(ctx context.Context, barID, oldTitle, newTitle string) (int, error) {
	var n int
	err := e.update(ctx, func(list []Entry) ([]Entry, bool, error) {
		for i := range list {
			l := &list[i]
			if l.LinkedBarTitle == "" || l.LinkedBarTitle == newTitle {
				continue
			}
			byID := barID != "" && l.LinkedBarID == barID
			byTitle := l.LinkedBarID == "" && oldTitle != "" && l.LinkedBarTitle == oldTitle
			if !byID && !byTitle {
				continue
			}
			l.LinkedBarID = barID
			l.LinkedBarTitle = newTitle
			n++
		}
		return list, n > 0, nil
	})
	return n, err
}

func (e *Entries) update(ctx context.Context, fn func([]Entry) ([]Entry, bool, error)) error {
	list, err := e.List(ctx)
	if err != nil {
		return err
	}
	list, changed, err := fn(list)
	if err != nil || !changed {
		return err
	}
	return store.Set(ctx, e.store, entriesKey, list)
}

func indexOf(list []Entry, id string) int {
	for i, e := range list {
		if e.WorkspaceID == id {
			return i
		}
	}
	return -1
}
