package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"tableflip.dev/barswitch/pkg/config"
	"tableflip.dev/barswitch/pkg/exchange"
	"tableflip.dev/barswitch/pkg/logging"
	"tableflip.dev/barswitch/pkg/names"
	"tableflip.dev/barswitch/pkg/registry"
	"tableflip.dev/barswitch/pkg/shortcut"
	"tableflip.dev/barswitch/pkg/store"
	"tableflip.dev/barswitch/pkg/tree"
	"tableflip.dev/barswitch/pkg/workspace"
)

var (
	ErrBarNotFound        = errors.New("app: bar not found")
	ErrEmptyTitle         = errors.New("app: title is empty")
	ErrWorkspacesDisabled = errors.New("app: workspaces are disabled")
)

// Bar is a saved bar as shown to the user.
type Bar struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Index  int    `json:"index"`
	Active bool   `json:"active"`
}

// Options wire a Service.
type Options struct {
	Tree        tree.Store
	TreeOptions tree.Options
	Local       store.Tier
	Synced      store.Tier
	// DefaultTitle names the bar created when there is none.
	DefaultTitle  string
	ShortcutDelay time.Duration
	// Workspaces scopes the active bar per workspace.
	Workspaces bool
}

// Service provides the bar operations used by the CLI and the handlers for
// host tree events. Operations run one at a time.
type Service struct {
	mu sync.Mutex
	// suppress is set while an operation runs. Tree events raised by the
	// operation's own writes are ignored while it is set.
	suppress atomic.Bool

	tree       *tree.Adapter
	store      *store.DualTier
	registry   *registry.Registry
	engine     *exchange.Engine
	binder     *workspace.Binder
	shortcuts  *shortcut.Dispatcher
	workspaces bool
	log        *logrus.Entry
	closers    []func() error
	paths      *Paths
}

// New returns a Service over the given collaborators.
func New(opts Options) *Service {
	adapter := tree.NewAdapter(opts.Tree, opts.TreeOptions)
	st := store.NewDualTier(opts.Local, opts.Synced)
	title := strings.TrimSpace(opts.DefaultTitle)
	if title == "" {
		title = config.DefaultBarTitle
	}
	reg := registry.New(adapter, st, title)
	engine := exchange.New(adapter, reg)
	s := &Service{
		tree:       adapter,
		store:      st,
		registry:   reg,
		engine:     engine,
		binder:     workspace.NewBinder(st, reg, engine),
		workspaces: opts.Workspaces,
		log:        logging.NewLogger("app"),
	}
	s.shortcuts = shortcut.NewDispatcher(opts.ShortcutDelay, s.fire)
	return s
}

// do runs fn as one serialized operation.
func (s *Service) do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppress.Store(true)
	defer s.suppress.Store(false)
	return fn()
}

// scope is the registry scope of the current workspace, or the unscoped
// binding when workspaces are off.
func (s *Service) scope(ctx context.Context) string {
	if !s.workspaces {
		return ""
	}
	last, err := s.binder.Last(ctx)
	if err != nil {
		s.log.WithError(err).Warn("current workspace unreadable, using unscoped bar")
		return ""
	}
	return last
}

// Init locates the collections root, migrates legacy state and makes sure
// an active bar is bound.
func (s *Service) Init(ctx context.Context) error {
	return s.do(func() error { return s.init(ctx) })
}

func (s *Service) init(ctx context.Context) error {
	if err := s.migrateLegacy(ctx); err != nil {
		s.log.WithError(err).Warn("legacy state not migrated")
	}
	_, err := s.registry.Resolve(ctx, s.scope(ctx))
	return err
}

// List returns the bars in tree order with the active one flagged.
func (s *Service) List(ctx context.Context) ([]Bar, error) {
	var bars []Bar
	err := s.do(func() error {
		var err error
		bars, err = s.list(ctx)
		return err
	})
	return bars, err
}

func (s *Service) list(ctx context.Context) ([]Bar, error) {
	active, err := s.registry.Resolve(ctx, s.scope(ctx))
	if err != nil {
		return nil, err
	}
	nodes, err := s.tree.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	bars := make([]Bar, len(nodes))
	for i, n := range nodes {
		bars[i] = Bar{ID: n.ID, Title: n.Title, Index: n.Index, Active: n.ID == active.ID}
	}
	return bars, nil
}

// Exchange makes ref the visible bar.
func (s *Service) Exchange(ctx context.Context, ref exchange.Ref) (bool, error) {
	var changed bool
	err := s.do(func() error {
		var err error
		changed, err = s.engine.Exchange(ctx, s.scope(ctx), ref, nil)
		return err
	})
	return changed, err
}

// Add creates an empty bar. A taken title gets a numeric suffix.
func (s *Service) Add(ctx context.Context, title string) (Bar, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Bar{}, ErrEmptyTitle
	}
	var bar Bar
	err := s.do(func() error {
		rootID, err := s.tree.CollectionsRoot(ctx)
		if err != nil {
			return err
		}
		siblings, err := s.tree.SiblingTitles(ctx, rootID, "")
		if err != nil {
			return err
		}
		n, err := s.tree.Store().Create(ctx, tree.CreateSpec{ParentID: rootID, Title: names.Resolve(siblings, title)})
		if err != nil {
			return fmt.Errorf("app: create bar: %w", err)
		}
		bar = Bar{ID: n.ID, Title: n.Title, Index: n.Index}
		return nil
	})
	return bar, err
}

// Rename retitles bar id. A taken title gets a numeric suffix. The active
// bar record and workspace links follow the new title.
func (s *Service) Rename(ctx context.Context, id, title string) (Bar, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Bar{}, ErrEmptyTitle
	}
	var bar Bar
	err := s.do(func() error {
		rootID, err := s.tree.CollectionsRoot(ctx)
		if err != nil {
			return err
		}
		n, ok := s.tree.FindByID(ctx, id, rootID)
		if !ok || !n.IsFolder() {
			return ErrBarNotFound
		}
		siblings, err := s.tree.SiblingTitles(ctx, rootID, id)
		if err != nil {
			return err
		}
		title = names.Resolve(siblings, title)
		renamed := n
		if title != n.Title {
			if renamed, err = s.tree.Store().Update(ctx, id, title); err != nil {
				return fmt.Errorf("app: rename bar: %w", err)
			}
			s.followRename(ctx, n.Title, renamed)
		}
		bar = Bar{ID: renamed.ID, Title: renamed.Title, Index: renamed.Index}
		return nil
	})
	return bar, err
}

// followRename keeps the active record and workspace links pointing at a
// bar that changed title. An empty oldTitle means it is unknown.
func (s *Service) followRename(ctx context.Context, oldTitle string, n tree.Node) {
	scope := s.scope(ctx)
	rec, ok, err := s.registry.Peek(ctx, scope)
	if err == nil && ok && rec.CollectionID == n.ID && rec.Title != n.Title {
		if err := s.registry.Update(ctx, scope, n); err != nil {
			s.log.WithError(err).Warn("active bar title not updated")
		}
	}
	if oldTitle == n.Title {
		return
	}
	if _, err := s.binder.Entries().RenameLinks(ctx, n.ID, oldTitle, n.Title); err != nil {
		s.log.WithError(err).Warn("workspace links not updated")
	}
}

// Reorder moves the bar at position from to position to, both indexes into
// List. It returns the bars in their new order.
func (s *Service) Reorder(ctx context.Context, from, to int) ([]Bar, error) {
	var bars []Bar
	err := s.do(func() error {
		var err error
		if bars, err = s.list(ctx); err != nil {
			return err
		}
		if from == to || from < 0 || to < 0 || from >= len(bars) || to >= len(bars) {
			return nil
		}
		rootID, err := s.tree.CollectionsRoot(ctx)
		if err != nil {
			return err
		}
		// Host indexes count the moved bar, so moving down targets the
		// slot after the destination.
		index := bars[to].Index
		if to > from {
			index++
		}
		if _, err := s.tree.Store().Move(ctx, bars[from].ID, tree.Destination{ParentID: rootID, Index: index}); err != nil {
			return fmt.Errorf("app: reorder: %w", err)
		}
		bars, err = s.list(ctx)
		return err
	})
	return bars, err
}

// Remove deletes bar id and its content. The last remaining bar is never
// removed. Removing the active bar first switches to the one before it,
// wrapping to the last. It reports whether a bar was removed.
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := s.do(func() error {
		bars, err := s.list(ctx)
		if err != nil {
			return err
		}
		if len(bars) <= 1 {
			s.log.WithField("id", id).Info("not removing the last bar")
			return nil
		}
		at := -1
		for i, b := range bars {
			if b.ID == id {
				at = i
			}
		}
		if at < 0 {
			return nil
		}
		if bars[at].Active {
			prev := bars[(at-1+len(bars))%len(bars)]
			if _, err := s.engine.Exchange(ctx, s.scope(ctx), exchange.Ref{ID: prev.ID, Title: prev.Title}, nil); err != nil {
				return err
			}
		}
		if err := s.tree.Store().RemoveTree(ctx, id); err != nil {
			return fmt.Errorf("app: remove bar: %w", err)
		}
		removed = true
		return nil
	})
	return removed, err
}

// Command schedules a keyboard command. Rapid commands collapse into the
// last one.
func (s *Service) Command(name string) error {
	cmd, err := shortcut.ParseCommand(name)
	if err != nil {
		return err
	}
	s.shortcuts.Dispatch(cmd)
	return nil
}

// WaitCommands blocks until scheduled commands have run.
func (s *Service) WaitCommands() {
	s.shortcuts.Wait()
}

// fire runs a debounced command against the bars as they are now.
func (s *Service) fire(cmd shortcut.Command) {
	ctx := context.Background()
	err := s.do(func() error {
		scope := s.scope(ctx)
		active, err := s.registry.Resolve(ctx, scope)
		if err != nil {
			return err
		}
		bars, err := s.tree.ListCollections(ctx)
		if err != nil {
			return err
		}
		target, ok := shortcut.Target(bars, active.ID, cmd)
		if !ok || target.ID == active.ID {
			return nil
		}
		_, err = s.engine.Exchange(ctx, scope, exchange.RefOf(target), nil)
		return err
	})
	if err != nil {
		s.log.WithError(err).WithField("command", cmd).Warn("command failed")
	}
}

// WorkspaceActivated switches to the bar of workspace id.
func (s *Service) WorkspaceActivated(ctx context.Context, id, name string) (bool, error) {
	if !s.workspaces {
		return false, ErrWorkspacesDisabled
	}
	var changed bool
	err := s.do(func() error {
		var err error
		changed, err = s.binder.Activate(ctx, id, name)
		return err
	})
	return changed, err
}

// Changes reports changes made to the synchronized state by other
// installations.
func (s *Service) Changes(ctx context.Context) (<-chan store.Event, error) {
	return s.store.Watch(ctx)
}

// Close stops pending commands and releases what Open acquired.
func (s *Service) Close() error {
	s.shortcuts.Stop()
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FindBar picks the bar matching key by id, then by title, then by its
// 1-based position in bars.
func FindBar(bars []Bar, key string) (Bar, bool) {
	for _, b := range bars {
		if b.ID == key {
			return b, true
		}
	}
	for _, b := range bars {
		if b.Title == key {
			return b, true
		}
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(bars) {
		return bars[n-1], true
	}
	return Bar{}, false
}

// Bar finds the bar named by key using FindBar. An empty key means the
// active bar. It also returns the bar's position in List.
func (s *Service) Bar(ctx context.Context, key string) (Bar, int, error) {
	bars, err := s.List(ctx)
	if err != nil {
		return Bar{}, -1, err
	}
	if key == "" {
		for i, b := range bars {
			if b.Active {
				return b, i, nil
			}
		}
		return Bar{}, -1, ErrBarNotFound
	}
	b, ok := FindBar(bars, key)
	if !ok {
		return Bar{}, -1, fmt.Errorf("%w: %q", ErrBarNotFound, key)
	}
	for i := range bars {
		if bars[i].ID == b.ID {
			return b, i, nil
		}
	}
	return b, -1, nil
}
