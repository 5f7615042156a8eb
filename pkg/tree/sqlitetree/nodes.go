package sqlitetree

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tableflip.dev/barswitch/pkg/tree"
)

var (
	errNotFolder = errors.New("sqlitetree: parent is not a folder")
	errCycle     = errors.New("sqlitetree: cannot move a node into itself")
	errRoot      = errors.New("sqlitetree: the root cannot be changed")
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const nodeColumns = `id, COALESCE(parent_id, ''), position, title, url`

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (tree.Node, error) {
	var (
		n   tree.Node
		url sql.NullString
	)
	if err := row.Scan(&n.ID, &n.ParentID, &n.Index, &n.Title, &url); err != nil {
		return tree.Node{}, err
	}
	n.URL = url.String
	n.Kind = tree.KindOf(n.URL)
	if url.Valid && n.Kind == tree.KindFolder {
		n.URL = ""
	}
	return n, nil
}

func getNode(ctx context.Context, q querier, id string) (tree.Node, error) {
	n, err := scanNode(q.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return tree.Node{}, fmt.Errorf("%w: %s", tree.ErrNotFound, id)
	}
	if err != nil {
		return tree.Node{}, fmt.Errorf("sqlitetree: get %s: %w", id, err)
	}
	return n, nil
}

func children(ctx context.Context, q querier, id string) ([]tree.Node, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE parent_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlitetree: children of %s: %w", id, err)
	}
	defer rows.Close()
	var out []tree.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlitetree: scan: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func childCount(ctx context.Context, tx *sql.Tx, parentID, skipID string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE parent_id = ? AND id != ?`, parentID, skipID).Scan(&n)
	return n, err
}

// Roots returns the top-level folders.
func (s *Store) Roots(ctx context.Context) ([]tree.Node, error) {
	return s.GetChildren(ctx, RootID)
}

// Get returns the node for id.
func (s *Store) Get(ctx context.Context, id string) ([]tree.Node, error) {
	n, err := getNode(ctx, s.conn, id)
	if err != nil {
		return nil, err
	}
	return []tree.Node{n}, nil
}

// GetChildren returns the ordered children of id.
func (s *Store) GetChildren(ctx context.Context, id string) ([]tree.Node, error) {
	if _, err := getNode(ctx, s.conn, id); err != nil {
		return nil, err
	}
	return children(ctx, s.conn, id)
}

// Create appends a folder or bookmark to spec.ParentID.
func (s *Store) Create(ctx context.Context, spec tree.CreateSpec) (tree.Node, error) {
	var created tree.Node
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		parent, err := getNode(ctx, tx, spec.ParentID)
		if err != nil {
			return err
		}
		if !parent.IsFolder() {
			return errNotFolder
		}
		pos, err := childCount(ctx, tx, spec.ParentID, "")
		if err != nil {
			return fmt.Errorf("sqlitetree: count children: %w", err)
		}
		var url sql.NullString
		if tree.KindOf(spec.URL) == tree.KindBookmark {
			url = sql.NullString{String: spec.URL, Valid: true}
		}
		id := uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO nodes (id, parent_id, position, title, url) VALUES (?, ?, ?, ?, ?)`,
			id, spec.ParentID, pos, spec.Title, url); err != nil {
			return fmt.Errorf("sqlitetree: insert: %w", err)
		}
		created, err = getNode(ctx, tx, id)
		return err
	})
	if err != nil {
		return tree.Node{}, err
	}
	s.emit(ctx, tree.Event{Type: tree.EventCreated, ID: created.ID, Node: created})
	return created, nil
}

// Update retitles id.
func (s *Store) Update(ctx context.Context, id string, title string) (tree.Node, error) {
	if id == RootID {
		return tree.Node{}, errRoot
	}
	var updated tree.Node
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE nodes SET title = ? WHERE id = ?`, title, id)
		if err != nil {
			return fmt.Errorf("sqlitetree: update %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", tree.ErrNotFound, id)
		}
		updated, err = getNode(ctx, tx, id)
		return err
	})
	if err != nil {
		return tree.Node{}, err
	}
	s.emit(ctx, tree.Event{Type: tree.EventChanged, ID: id, Node: updated})
	return updated, nil
}

// Move relocates id. dest.Index counts positions before id is taken out of
// its current parent; Append or an out-of-range index puts it last.
func (s *Store) Move(ctx context.Context, id string, dest tree.Destination) (tree.Node, error) {
	if id == RootID {
		return tree.Node{}, errRoot
	}
	var (
		moved     tree.Node
		oldParent string
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		n, err := getNode(ctx, tx, id)
		if err != nil {
			return err
		}
		parent, err := getNode(ctx, tx, dest.ParentID)
		if err != nil {
			return err
		}
		if !parent.IsFolder() {
			return errNotFolder
		}
		for p := parent; ; {
			if p.ID == id {
				return errCycle
			}
			if p.ParentID == "" {
				break
			}
			if p, err = getNode(ctx, tx, p.ParentID); err != nil {
				return err
			}
		}
		oldParent = n.ParentID

		if _, err := tx.ExecContext(ctx,
			`UPDATE nodes SET position = position - 1 WHERE parent_id = ? AND position > ?`,
			n.ParentID, n.Index); err != nil {
			return fmt.Errorf("sqlitetree: close gap: %w", err)
		}
		index := dest.Index
		if n.ParentID == dest.ParentID && index > n.Index {
			index--
		}
		count, err := childCount(ctx, tx, dest.ParentID, id)
		if err != nil {
			return fmt.Errorf("sqlitetree: count children: %w", err)
		}
		if index < 0 || index > count {
			index = count
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE nodes SET position = position + 1 WHERE parent_id = ? AND position >= ? AND id != ?`,
			dest.ParentID, index, id); err != nil {
			return fmt.Errorf("sqlitetree: open gap: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE nodes SET parent_id = ?, position = ? WHERE id = ?`,
			dest.ParentID, index, id); err != nil {
			return fmt.Errorf("sqlitetree: move %s: %w", id, err)
		}
		moved, err = getNode(ctx, tx, id)
		return err
	})
	if err != nil {
		return tree.Node{}, err
	}
	s.emit(ctx, tree.Event{Type: tree.EventMoved, ID: id, Node: moved, OldParentID: oldParent})
	return moved, nil
}

// RemoveTree deletes id and everything below it.
func (s *Store) RemoveTree(ctx context.Context, id string) error {
	if id == RootID {
		return errRoot
	}
	var removed tree.Node
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if removed, err = getNode(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			WITH RECURSIVE sub(id) AS (
				SELECT ?
				UNION ALL
				SELECT n.id FROM nodes n JOIN sub ON n.parent_id = sub.id
			)
			DELETE FROM nodes WHERE id IN (SELECT id FROM sub)`, id); err != nil {
			return fmt.Errorf("sqlitetree: remove %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE nodes SET position = position - 1 WHERE parent_id = ? AND position > ?`,
			removed.ParentID, removed.Index); err != nil {
			return fmt.Errorf("sqlitetree: close gap: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.emit(ctx, tree.Event{Type: tree.EventRemoved, ID: id, Node: removed})
	return nil
}
