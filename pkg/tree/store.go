package tree

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when an id does not resolve.
var ErrNotFound = errors.New("tree: node not found")

// Append asks Move to place a node after the existing children.
const Append = -1

// CreateSpec describes a node to create. An empty URL creates a folder.
type CreateSpec struct {
	ParentID string
	Title    string
	URL      string
}

// Destination is where Move places a node. Index follows host semantics:
// it is a position among the destination children counted before the moved
// node is taken out, so moving down inside one folder lands at Index-1.
type Destination struct {
	ParentID string
	Index    int
}

// AppendTo returns a Destination at the end of parentID.
func AppendTo(parentID string) Destination {
	return Destination{ParentID: parentID, Index: Append}
}

// Store is the host bookmark tree.
type Store interface {
	// Roots returns the top-level children of the tree root. Slot 0 is the
	// visible bookmarks bar; the "other items" container sits at a
	// vendor-specific index.
	Roots(ctx context.Context) ([]Node, error)
	Get(ctx context.Context, id string) ([]Node, error)
	GetChildren(ctx context.Context, id string) ([]Node, error)
	Create(ctx context.Context, spec CreateSpec) (Node, error)
	Update(ctx context.Context, id string, title string) (Node, error)
	Move(ctx context.Context, id string, dest Destination) (Node, error)
	RemoveTree(ctx context.Context, id string) error
}

// EventType describes a host tree notification.
type EventType int

const (
	EventCreated EventType = iota
	EventChanged
	EventMoved
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventChanged:
		return "changed"
	case EventMoved:
		return "moved"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is pushed by the host after a tree mutation. Node is the state of
// the node after the change, or the removed node for EventRemoved.
type Event struct {
	Type        EventType
	ID          string
	Node        Node
	OldParentID string
}

// Listener handles a host tree event.
type Listener func(ctx context.Context, ev Event)

// Notifier is implemented by stores that push events. The returned func
// removes the listener.
type Notifier interface {
	Subscribe(fn Listener) (cancel func())
}
