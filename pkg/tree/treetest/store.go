// Package treetest provides an in-memory tree.Store for tests.
package treetest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tableflip.dev/barswitch/pkg/tree"
)

// Well-known ids of the seeded top-level folders.
const (
	RootID   = "0"
	BarID    = "1"
	OtherID  = "2"
	MobileID = "3"
)

type entry struct {
	node     tree.Node
	children []string
}

// Store is a tree.Store and tree.Notifier kept in memory. Listeners run
// synchronously after the mutation, outside the store lock.
type Store struct {
	mu        sync.Mutex
	nodes     map[string]*entry
	nextID    int
	mutations int
	listeners map[int]tree.Listener
	nextSub   int

	// GetErr, when set, is returned by Get for every lookup.
	GetErr error
}

var _ tree.Store = (*Store)(nil)
var _ tree.Notifier = (*Store)(nil)

// New returns a store seeded with a root and three top-level folders.
func New() *Store {
	s := &Store{
		nodes:     make(map[string]*entry),
		nextID:    100,
		listeners: make(map[int]tree.Listener),
	}
	s.nodes[RootID] = &entry{node: tree.Node{ID: RootID, Kind: tree.KindFolder}}
	for _, seed := range []struct{ id, title string }{
		{BarID, "Bookmarks bar"},
		{OtherID, "Other bookmarks"},
		{MobileID, "Mobile bookmarks"},
	} {
		s.insert(tree.Node{ID: seed.id, ParentID: RootID, Title: seed.title, Kind: tree.KindFolder}, tree.Append)
	}
	return s
}

// Mutations counts Create, Update, Move and RemoveTree calls that succeeded.
func (s *Store) Mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutations
}

// ResetMutations zeroes the mutation counter.
func (s *Store) ResetMutations() {
	s.mu.Lock()
	s.mutations = 0
	s.mu.Unlock()
}

// Subscribe registers fn for tree events.
func (s *Store) Subscribe(fn tree.Listener) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) emit(ctx context.Context, ev tree.Event) {
	s.mu.Lock()
	fns := make([]tree.Listener, 0, len(s.listeners))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ctx, ev)
	}
}

func (s *Store) snapshot(id string) tree.Node {
	e := s.nodes[id]
	n := e.node
	if parent, ok := s.nodes[n.ParentID]; ok {
		for i, c := range parent.children {
			if c == id {
				n.Index = i
			}
		}
	}
	return n
}

func (s *Store) insert(n tree.Node, index int) {
	s.nodes[n.ID] = &entry{node: n}
	parent := s.nodes[n.ParentID]
	if index < 0 || index > len(parent.children) {
		index = len(parent.children)
	}
	parent.children = append(parent.children, "")
	copy(parent.children[index+1:], parent.children[index:])
	parent.children[index] = n.ID
}

func (s *Store) detach(id string) int {
	e := s.nodes[id]
	parent := s.nodes[e.node.ParentID]
	for i, c := range parent.children {
		if c == id {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			return i
		}
	}
	return -1
}

// Roots returns the top-level folders.
func (s *Store) Roots(_ context.Context) ([]tree.Node, error) {
	return s.GetChildren(context.Background(), RootID)
}

// Get returns the node for id.
func (s *Store) Get(_ context.Context, id string) ([]tree.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	if _, ok := s.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: %s", tree.ErrNotFound, id)
	}
	return []tree.Node{s.snapshot(id)}, nil
}

// GetChildren returns the ordered children of id.
func (s *Store) GetChildren(_ context.Context, id string) ([]tree.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", tree.ErrNotFound, id)
	}
	out := make([]tree.Node, 0, len(e.children))
	for _, c := range e.children {
		out = append(out, s.snapshot(c))
	}
	return out, nil
}

// Create adds a folder or bookmark at the end of spec.ParentID.
func (s *Store) Create(ctx context.Context, spec tree.CreateSpec) (tree.Node, error) {
	s.mu.Lock()
	parent, ok := s.nodes[spec.ParentID]
	if !ok {
		s.mu.Unlock()
		return tree.Node{}, fmt.Errorf("%w: parent %s", tree.ErrNotFound, spec.ParentID)
	}
	if !parent.node.IsFolder() {
		s.mu.Unlock()
		return tree.Node{}, errors.New("treetest: parent is not a folder")
	}
	s.nextID++
	n := tree.Node{
		ID:       fmt.Sprintf("%d", s.nextID),
		ParentID: spec.ParentID,
		Title:    spec.Title,
		URL:      spec.URL,
		Kind:     tree.KindOf(spec.URL),
	}
	s.insert(n, tree.Append)
	s.mutations++
	n = s.snapshot(n.ID)
	s.mu.Unlock()

	s.emit(ctx, tree.Event{Type: tree.EventCreated, ID: n.ID, Node: n})
	return n, nil
}

// Update retitles id.
func (s *Store) Update(ctx context.Context, id string, title string) (tree.Node, error) {
	s.mu.Lock()
	e, ok := s.nodes[id]
	if !ok || id == RootID {
		s.mu.Unlock()
		return tree.Node{}, fmt.Errorf("%w: %s", tree.ErrNotFound, id)
	}
	e.node.Title = title
	s.mutations++
	n := s.snapshot(id)
	s.mu.Unlock()

	s.emit(ctx, tree.Event{Type: tree.EventChanged, ID: id, Node: n})
	return n, nil
}

// Move relocates id under dest.ParentID.
func (s *Store) Move(ctx context.Context, id string, dest tree.Destination) (tree.Node, error) {
	s.mu.Lock()
	e, ok := s.nodes[id]
	if !ok || id == RootID {
		s.mu.Unlock()
		return tree.Node{}, fmt.Errorf("%w: %s", tree.ErrNotFound, id)
	}
	if _, ok := s.nodes[dest.ParentID]; !ok {
		s.mu.Unlock()
		return tree.Node{}, fmt.Errorf("%w: parent %s", tree.ErrNotFound, dest.ParentID)
	}
	for p := dest.ParentID; p != ""; p = s.nodes[p].node.ParentID {
		if p == id {
			s.mu.Unlock()
			return tree.Node{}, errors.New("treetest: cannot move a node into itself")
		}
	}
	oldParent := e.node.ParentID
	oldIndex := s.detach(id)
	index := dest.Index
	if oldParent == dest.ParentID && index > oldIndex {
		index--
	}
	e.node.ParentID = dest.ParentID
	parent := s.nodes[dest.ParentID]
	if index < 0 || index > len(parent.children) {
		index = len(parent.children)
	}
	parent.children = append(parent.children, "")
	copy(parent.children[index+1:], parent.children[index:])
	parent.children[index] = id
	s.mutations++
	n := s.snapshot(id)
	s.mu.Unlock()

	s.emit(ctx, tree.Event{Type: tree.EventMoved, ID: id, Node: n, OldParentID: oldParent})
	return n, nil
}

// RemoveTree deletes id and everything below it.
func (s *Store) RemoveTree(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.nodes[id]; !ok || id == RootID {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", tree.ErrNotFound, id)
	}
	n := s.snapshot(id)
	s.detach(id)
	var drop func(string)
	drop = func(id string) {
		for _, c := range s.nodes[id].children {
			drop(c)
		}
		delete(s.nodes, id)
	}
	drop(id)
	s.mutations++
	s.mu.Unlock()

	s.emit(ctx, tree.Event{Type: tree.EventRemoved, ID: id, Node: n})
	return nil
}

// Folder creates a folder and panics on failure. Test setup helper.
func (s *Store) Folder(parentID, title string) tree.Node {
	n, err := s.Create(context.Background(), tree.CreateSpec{ParentID: parentID, Title: title})
	if err != nil {
		panic(err)
	}
	return n
}

// Bookmark creates a bookmark and panics on failure. Test setup helper.
func (s *Store) Bookmark(parentID, title, url string) tree.Node {
	n, err := s.Create(context.Background(), tree.CreateSpec{ParentID: parentID, Title: title, URL: url})
	if err != nil {
		panic(err)
	}
	return n
}

// ChildTitles lists the titles under id, or nil when id is unknown.
func (s *Store) ChildTitles(id string) []string {
	children, err := s.GetChildren(context.Background(), id)
	if err != nil {
		return nil
	}
	return tree.Titles(children)
}
