// Package sqlitetree is a bookmark tree kept in a SQLite file. It behaves
// like a host browser tree: a root with fixed top-level folders, positional
// children and events after every mutation.
package sqlitetree

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"tableflip.dev/barswitch/pkg/logging"
	"tableflip.dev/barswitch/pkg/tree"
)

// Ids of the seeded nodes.
const (
	RootID   = "0"
	BarID    = "1"
	OtherID  = "2"
	MobileID = "3"
)

var seed = []struct{ id, title string }{
	{BarID, "Bookmarks bar"},
	{OtherID, "Other bookmarks"},
	{MobileID, "Mobile bookmarks"},
}

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id        TEXT PRIMARY KEY,
	parent_id TEXT,
	position  INTEGER NOT NULL DEFAULT 0,
	title     TEXT NOT NULL DEFAULT '',
	url       TEXT
);
CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id, position);
`

// Store is a tree.Store and tree.Notifier backed by SQLite.
type Store struct {
	conn *sql.DB
	path string
	log  *logrus.Entry

	mu        sync.Mutex
	listeners map[int]tree.Listener
	nextSub   int
}

var _ tree.Store = (*Store)(nil)
var _ tree.Notifier = (*Store)(nil)

// Open opens or creates the tree at path and seeds the top-level folders.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlitetree: create dir: %w", err)
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitetree: open: %w", err)
	}
	// One writer keeps position updates serial.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("sqlitetree: set pragma: %w", err)
		}
	}

	s := &Store{
		conn:      conn,
		path:      path,
		log:       logging.NewLogger("sqlitetree").WithField("path", path),
		listeners: make(map[int]tree.Listener),
	}
	if err := s.initialize(context.Background()); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("sqlitetree: schema: %w", err)
		}
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE id = ?`, RootID).Scan(&n); err != nil {
			return fmt.Errorf("sqlitetree: check seed: %w", err)
		}
		if n > 0 {
			return nil
		}
		s.log.Info("seeding new bookmark tree")
		if _, err := tx.ExecContext(ctx, `INSERT INTO nodes (id, parent_id, position, title) VALUES (?, NULL, 0, '')`, RootID); err != nil {
			return fmt.Errorf("sqlitetree: seed root: %w", err)
		}
		for i, f := range seed {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO nodes (id, parent_id, position, title) VALUES (?, ?, ?, ?)`,
				f.id, RootID, i, f.title); err != nil {
				return fmt.Errorf("sqlitetree: seed %s: %w", f.title, err)
			}
		}
		return nil
	})
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path is the database file.
func (s *Store) Path() string {
	return s.path
}

// withTx runs fn in a transaction, rolling back when fn fails.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitetree: begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.WithError(rbErr).Error("rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlitetree: commit: %w", err)
	}
	return nil
}

// Subscribe registers fn for tree events. Listeners run synchronously on
// the mutating goroutine after the change is committed.
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
	s.log.WithFields(logrus.Fields{"event": ev.Type, "id": ev.ID}).Debug("emit")
	for _, fn := range fns {
		fn(ctx, ev)
	}
}
