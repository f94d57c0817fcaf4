package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/nikbrunner/bm/internal/model"
)

var (
	ErrUnavailable = errors.New("bookmark store unavailable")
	ErrNotFound    = errors.New("bookmark node not found")
	ErrInvalidMove = errors.New("invalid move")
)

// Store is the host bookmark store. It is authoritative: callers refetch the
// tree after every successful mutation instead of patching their copy.
type Store interface {
	GetTree(ctx context.Context) ([]*model.Node, error)
	GetNode(ctx context.Context, id string) (*model.Node, error)
	Move(ctx context.Context, id string, params MoveParams) (*model.Node, error)
	Create(ctx context.Context, params CreateParams) (*model.Node, error)
	Delete(ctx context.Context, id string) error
}

// MoveParams describes a move destination.
type MoveParams struct {
	ParentID *string // nil = keep the current parent
	ToRoot   bool    // move to top level, ParentID is ignored
	Index    *int    // nil = append at the end
}

// CreateParams holds parameters for creating a node.
// An empty URL creates a folder.
type CreateParams struct {
	ParentID  *string // nil = top level
	Title     string
	URL       string
	Index     *int       // nil = append at the end
	DateAdded *time.Time // nil = now
}

// Unavailable is the Store used when no bookmark store can be reached.
// Every call fails fast with ErrUnavailable.
type Unavailable struct{}

func (Unavailable) GetTree(context.Context) ([]*model.Node, error) {
	return nil, ErrUnavailable
}

func (Unavailable) GetNode(context.Context, string) (*model.Node, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Move(context.Context, string, MoveParams) (*model.Node, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Create(context.Context, CreateParams) (*model.Node, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Delete(context.Context, string) error {
	return ErrUnavailable
}

// Open opens the SQLite store at path.
// An empty path yields Unavailable.
func Open(path string) (Store, error) {
	if path == "" {
		return Unavailable{}, nil
	}
	return NewSQLiteStorage(path)
}

// DefaultSQLitePath returns the default SQLite database path: ~/.config/bm/bookmarks.db
func DefaultSQLitePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bm", "bookmarks.db"), nil
}
