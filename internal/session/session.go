// Package session owns the state a bm front end works against for its
// lifetime: the last fetched tree, settings and recently used folders. It is
// the only place that talks to the bookmark store.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bm/internal/config"
	"github.com/nikbrunner/bm/internal/dnd"
	"github.com/nikbrunner/bm/internal/logging"
	"github.com/nikbrunner/bm/internal/model"
	"github.com/nikbrunner/bm/internal/storage"
)

var (
	ErrTemporaryNode = errors.New("temporary node cannot be stored")
	ErrEmptyTitle    = errors.New("title must not be empty")
)

// Session is created by the top level command and discarded on exit.
// It is safe for concurrent use; the most recent refetch wins.
type Session struct {
	store      storage.Store
	log        *logrus.Entry
	controller *dnd.Controller

	mu       sync.Mutex
	tree     []*model.Node
	settings config.Settings
	recent   []string // folder ids, most recent first
}

// Params holds parameters for creating a Session.
type Params struct {
	Store    storage.Store
	Settings config.Settings
	Logger   logrus.FieldLogger // optional, discards if nil
}

// New creates a Session. The tree is empty until Refresh is called.
func New(params Params) *Session {
	store := params.Store
	if store == nil {
		store = storage.Unavailable{}
	}

	var logger logrus.FieldLogger = params.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Session{
		store:      store,
		log:        logging.Component(logger, "session"),
		controller: dnd.NewController(),
		tree:       []*model.Node{},
		settings:   params.Settings,
	}
}

// Tree returns the last successfully fetched tree.
func (s *Session) Tree() []*model.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Settings returns the current settings.
func (s *Session) Settings() config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the settings, e.g. after the config file changed.
func (s *Session) UpdateSettings(settings config.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.recent = trimRecent(s.recent, settings.RecentFolders)
}

// Controller returns the drop controller shared by all gesture paths.
func (s *Session) Controller() *dnd.Controller {
	return s.controller
}

// Refresh refetches the whole tree from the store.
// An unavailable store yields an empty tree without error. Any other failure
// keeps the previous tree and is returned.
func (s *Session) Refresh(ctx context.Context) ([]*model.Node, error) {
	tree, err := s.store.GetTree(ctx)
	if errors.Is(err, storage.ErrUnavailable) {
		s.log.Warn("bookmark store unavailable, showing empty tree")
		tree, err = []*model.Node{}, nil
	}
	if err != nil {
		s.log.WithError(err).Error("fetch tree")
		return s.Tree(), fmt.Errorf("fetch tree: %w", err)
	}

	s.mu.Lock()
	s.tree = tree
	s.mu.Unlock()

	return tree, nil
}

// Apply executes a drop operation against the store and refetches the tree.
// On failure the previous tree is kept and the error returned; nothing is
// retried.
func (s *Session) Apply(ctx context.Context, op dnd.Operation) ([]*model.Node, error) {
	if model.IsTemporaryID(op.SourceID) || model.IsTemporaryID(op.TargetID) || model.IsTemporaryID(op.TargetParentID) {
		return s.Tree(), fmt.Errorf("%s: %w", op.Type, ErrTemporaryNode)
	}

	index := op.TargetIndex
	params := storage.MoveParams{Index: &index}
	if op.TargetParentID == dnd.RootID {
		params.ToRoot = true
	} else {
		parentID := op.TargetParentID
		params.ParentID = &parentID
	}

	log := s.log.WithFields(logrus.Fields{
		"type":   op.Type,
		"source": op.SourceID,
		"parent": op.TargetParentID,
		"index":  op.TargetIndex,
	})

	if _, err := s.store.Move(ctx, op.SourceID, params); err != nil {
		log.WithError(err).Warn("move failed")
		return s.Tree(), fmt.Errorf("move %s: %w", op.SourceID, err)
	}
	log.Debug("moved")

	if op.Type.IsMove() {
		s.remember(op.TargetParentID)
	}

	return s.Refresh(ctx)
}

// Drop resolves a drop of sourceID onto targetID through the drop controller
// and applies it. applied is false when the gesture was ignored.
func (s *Session) Drop(ctx context.Context, sourceID, targetID string, edge dnd.Edge) (op dnd.Operation, applied bool, err error) {
	tree := s.Tree()
	source := model.Find(tree, sourceID)
	if source == nil {
		return op, false, fmt.Errorf("drop source %s: %w", sourceID, storage.ErrNotFound)
	}
	target := model.Find(tree, targetID)
	if target == nil {
		return op, false, fmt.Errorf("drop target %s: %w", targetID, storage.ErrNotFound)
	}

	op, ok := s.controller.FromZone(dnd.NewEndpoint(source), dnd.NewEndpoint(target), edge)
	if !ok {
		return op, false, nil
	}

	if _, err := s.Apply(ctx, op); err != nil {
		return op, false, err
	}
	return op, true, nil
}

// CreateFolder commits a placeholder folder under its parent with title.
func (s *Session) CreateFolder(ctx context.Context, placeholder *model.Node, title string) (*model.Node, error) {
	return s.create(ctx, placeholder.ParentID, title, "")
}

// CreateBookmark adds a bookmark under parentID (nil = top level).
func (s *Session) CreateBookmark(ctx context.Context, parentID *string, title, url string) (*model.Node, error) {
	if url == "" {
		return nil, errors.New("bookmark url must not be empty")
	}
	return s.create(ctx, parentID, title, url)
}

func (s *Session) create(ctx context.Context, parentID *string, title, url string) (*model.Node, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if parentID != nil && model.IsTemporaryID(*parentID) {
		return nil, ErrTemporaryNode
	}

	n, err := s.store.Create(ctx, storage.CreateParams{ParentID: parentID, Title: title, URL: url})
	if err != nil {
		s.log.WithError(err).WithField("title", title).Warn("create failed")
		return nil, fmt.Errorf("create %q: %w", title, err)
	}

	if _, err := s.Refresh(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// Delete removes a node (folders recursively) and refetches the tree.
func (s *Session) Delete(ctx context.Context, id string) error {
	if model.IsTemporaryID(id) {
		return ErrTemporaryNode
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.log.WithError(err).WithField("id", id).Warn("delete failed")
		return fmt.Errorf("delete %s: %w", id, err)
	}

	_, err := s.Refresh(ctx)
	return err
}

// Import creates nodes (with their subtrees) under parentID and refetches.
// Returns the number of folders and bookmarks created before any error.
func (s *Session) Import(ctx context.Context, nodes []*model.Node, parentID *string) (folders, bookmarks int, err error) {
	var create func(nodes []*model.Node, parentID *string) error
	create = func(nodes []*model.Node, parentID *string) error {
		for _, n := range nodes {
			created, err := s.store.Create(ctx, storage.CreateParams{
				ParentID:  parentID,
				Title:     n.Title,
				URL:       n.URL,
				DateAdded: n.DateAdded,
			})
			if err != nil {
				return fmt.Errorf("import %q: %w", n.Title, err)
			}
			if !n.IsFolder() {
				bookmarks++
				continue
			}
			folders++
			if err := create(n.Children, &created.ID); err != nil {
				return err
			}
		}
		return nil
	}

	err = create(nodes, parentID)
	if _, refreshErr := s.Refresh(ctx); err == nil {
		err = refreshErr
	}
	return folders, bookmarks, err
}

// RecentFolders returns recently used move destinations that still exist.
func (s *Session) RecentFolders() []model.FolderPath {
	s.mu.Lock()
	recent := append([]string(nil), s.recent...)
	tree := s.tree
	s.mu.Unlock()

	paths := make(map[string]string)
	for _, f := range model.Folders(tree) {
		paths[f.ID] = f.Path
	}

	var result []model.FolderPath
	for _, id := range recent {
		if path, ok := paths[id]; ok {
			result = append(result, model.FolderPath{ID: id, Path: path})
		}
	}
	return result
}

func (s *Session) remember(folderID string) {
	if folderID == dnd.RootID {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recent := []string{folderID}
	for _, id := range s.recent {
		if id != folderID {
			recent = append(recent, id)
		}
	}
	s.recent = trimRecent(recent, s.settings.RecentFolders)
}

func trimRecent(recent []string, max int) []string {
	if len(recent) > max {
		return recent[:max]
	}
	return recent
}
