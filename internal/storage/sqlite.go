package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bm/internal/model"
)

const currentSchemaVersion = 2

// SQLiteStorage implements Store using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Pragmas are per connection, keep a single one
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if version < currentSchemaVersion {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema. A node without url is a folder.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY NOT NULL,
			parent_id TEXT,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			url TEXT,
			date_added TEXT NOT NULL,
			FOREIGN KEY (parent_id) REFERENCES nodes(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_parent_position ON nodes(parent_id, position);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds the folder modification timestamp.
func (s *SQLiteStorage) migrateV2() error {
	migration := `
		ALTER TABLE nodes ADD COLUMN date_group_modified TEXT;
		UPDATE schema_version SET version = 2;
	`
	_, err := s.db.Exec(migration)
	return err
}

const nodeColumns = `id, parent_id, position, title, url, date_added, date_group_modified`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*model.Node, error) {
	var (
		id, title     string
		parentID, url sql.NullString
		position      int
		dateAdded     string
		groupModified sql.NullString
	)

	if err := row.Scan(&id, &parentID, &position, &title, &url, &dateAdded, &groupModified); err != nil {
		return nil, err
	}

	var parent *string
	if parentID.Valid {
		p := parentID.String
		parent = &p
	}
	index := position

	var n *model.Node
	if url.Valid {
		n = model.NewBookmark(model.NewBookmarkParams{
			ID: id, ParentID: parent, Index: &index, Title: title, URL: url.String,
		})
	} else {
		n = model.NewFolder(model.NewFolderParams{
			ID: id, ParentID: parent, Index: &index, Title: title,
		})
	}

	if t, err := time.Parse(time.RFC3339, dateAdded); err == nil {
		n.DateAdded = &t
	}
	if groupModified.Valid {
		if t, err := time.Parse(time.RFC3339, groupModified.String); err == nil {
			n.DateGroupModified = &t
		}
	}

	return n, nil
}

// GetTree loads the whole tree, siblings ordered by position.
func (s *SQLiteStorage) GetTree(ctx context.Context) ([]*model.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+nodeColumns+`
		FROM nodes
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []*model.Node
	byID := make(map[string]*model.Node)
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, n)
		byID[n.ID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tree := []*model.Node{}
	for _, n := range all {
		if n.ParentID == nil {
			tree = append(tree, n)
			continue
		}
		parent, ok := byID[*n.ParentID]
		if !ok || !parent.IsFolder() {
			// Orphans surface at the top level rather than vanish
			tree = append(tree, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	return tree, nil
}

// GetNode loads a single node. Folder children are not populated.
func (s *SQLiteStorage) GetNode(ctx context.Context, id string) (*model.Node, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return n, err
}

// Move reparents and/or reorders a node.
//
// Like the browser bookmark store, an index in the node's current parent is
// read against the order before the node is taken out, so moving a node from
// position 0 to index 3 lands it at position 2.
func (s *SQLiteStorage) Move(ctx context.Context, id string, params MoveParams) (*model.Node, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := getNodeTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	oldParent := current.ParentID
	oldPos := current.IndexOr(0)

	newParent := oldParent
	switch {
	case params.ToRoot:
		newParent = nil
	case params.ParentID != nil:
		newParent = params.ParentID
	}

	if newParent != nil {
		if err := checkFolder(ctx, tx, *newParent); err != nil {
			return nil, err
		}
		if current.IsFolder() {
			inside, err := isWithin(ctx, tx, *newParent, id)
			if err != nil {
				return nil, err
			}
			if inside {
				return nil, fmt.Errorf("%w: folder %s cannot move into its own subtree", ErrInvalidMove, id)
			}
		}
	}

	total, err := countChildren(ctx, tx, newParent)
	if err != nil {
		return nil, err
	}

	sameParent := ptrEqual(oldParent, newParent)
	index := total
	if params.Index != nil {
		index = clamp(*params.Index, 0, total)
	}
	if sameParent && index > oldPos {
		index--
	}

	// Close the gap left behind
	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET position = position - 1 WHERE parent_id IS ? AND position > ? AND id != ?`,
		oldParent, oldPos, id,
	); err != nil {
		return nil, err
	}

	// Open a slot at the destination
	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET position = position + 1 WHERE parent_id IS ? AND position >= ? AND id != ?`,
		newParent, index, id,
	); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET parent_id = ?, position = ? WHERE id = ?`,
		newParent, index, id,
	); err != nil {
		return nil, err
	}

	if err := s.touchFolders(ctx, tx, oldParent, newParent); err != nil {
		return nil, err
	}

	moved, err := getNodeTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return moved, nil
}

// Create inserts a folder (empty URL) or bookmark.
func (s *SQLiteStorage) Create(ctx context.Context, params CreateParams) (*model.Node, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if params.ParentID != nil {
		if err := checkFolder(ctx, tx, *params.ParentID); err != nil {
			return nil, err
		}
	}

	total, err := countChildren(ctx, tx, params.ParentID)
	if err != nil {
		return nil, err
	}
	index := total
	if params.Index != nil {
		index = clamp(*params.Index, 0, total)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET position = position + 1 WHERE parent_id IS ? AND position >= ?`,
		params.ParentID, index,
	); err != nil {
		return nil, err
	}

	var url *string
	if params.URL != "" {
		url = &params.URL
	}

	added := s.now()
	if params.DateAdded != nil {
		added = *params.DateAdded
	}

	id := model.GenerateID()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO nodes (id, parent_id, position, title, url, date_added) VALUES (?, ?, ?, ?, ?, ?)`,
		id, params.ParentID, index, params.Title, url, added.Format(time.RFC3339),
	); err != nil {
		return nil, err
	}

	if err := s.touchFolders(ctx, tx, params.ParentID); err != nil {
		return nil, err
	}

	created, err := getNodeTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

// Delete removes a node. Folders are removed with their whole subtree.
func (s *SQLiteStorage) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	n, err := getNodeTx(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		WITH RECURSIVE subtree(id) AS (
			SELECT ?
			UNION ALL
			SELECT nodes.id FROM nodes JOIN subtree ON nodes.parent_id = subtree.id
		)
		DELETE FROM nodes WHERE id IN (SELECT id FROM subtree)
	`, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET position = position - 1 WHERE parent_id IS ? AND position > ?`,
		n.ParentID, n.IndexOr(0),
	); err != nil {
		return err
	}

	if err := s.touchFolders(ctx, tx, n.ParentID); err != nil {
		return err
	}

	return tx.Commit()
}

// touchFolders stamps date_group_modified on the given folders.
func (s *SQLiteStorage) touchFolders(ctx context.Context, tx *sql.Tx, ids ...*string) error {
	now := s.now().Format(time.RFC3339)
	for _, id := range ids {
		if id == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, `UPDATE nodes SET date_group_modified = ? WHERE id = ?`, now, *id); err != nil {
			return err
		}
	}
	return nil
}

func getNodeTx(ctx context.Context, tx *sql.Tx, id string) (*model.Node, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return n, err
}

// checkFolder verifies id exists and is a folder.
func checkFolder(ctx context.Context, tx *sql.Tx, id string) error {
	n, err := getNodeTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if !n.IsFolder() {
		return fmt.Errorf("%w: %s is not a folder", ErrInvalidMove, id)
	}
	return nil
}

// isWithin reports whether folder lies in the subtree rooted at ancestor.
func isWithin(ctx context.Context, tx *sql.Tx, folder, ancestor string) (bool, error) {
	var found int
	err := tx.QueryRowContext(ctx, `
		WITH RECURSIVE chain(id, parent_id) AS (
			SELECT id, parent_id FROM nodes WHERE id = ?
			UNION ALL
			SELECT nodes.id, nodes.parent_id FROM nodes JOIN chain ON nodes.id = chain.parent_id
		)
		SELECT COUNT(*) FROM chain WHERE id = ?
	`, folder, ancestor).Scan(&found)
	if err != nil {
		return false, err
	}
	return found > 0, nil
}

func countChildren(ctx context.Context, tx *sql.Tx, parentID *string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE parent_id IS ?`, parentID).Scan(&n)
	return n, err
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ptrEqual compares two string pointers for equality.
func ptrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
