package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bm/internal/model"
	"github.com/nikbrunner/bm/internal/storage"
)

func intPtr(i int) *int { return &i }

func newTestStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "bookmarks.db"))
	assert.NilError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreate(t *testing.T, s storage.Store, parentID *string, title, url string) *model.Node {
	t.Helper()
	n, err := s.Create(context.Background(), storage.CreateParams{ParentID: parentID, Title: title, URL: url})
	assert.NilError(t, err)
	return n
}

// titles returns the child titles of parentID (nil = top level) in order.
func titles(t *testing.T, s storage.Store, parentID *string) []string {
	t.Helper()
	tree, err := s.GetTree(context.Background())
	assert.NilError(t, err)

	nodes := tree
	if parentID != nil {
		parent := model.Find(tree, *parentID)
		assert.Assert(t, parent != nil)
		nodes = parent.Children
	}

	out := []string{}
	for i, n := range nodes {
		assert.Equal(t, n.IndexOr(-1), i, "index of %s", n.Title)
		out = append(out, n.Title)
	}
	return out
}

func TestSQLiteStorage_EmptyDatabase(t *testing.T) {
	s := newTestStorage(t)

	tree, err := s.GetTree(context.Background())
	assert.NilError(t, err)
	assert.Check(t, is.Len(tree, 0))
	assert.Check(t, tree != nil)
}

func TestSQLiteStorage_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "bookmarks.db")

	s, err := storage.NewSQLiteStorage(dbPath)
	assert.NilError(t, err)
	defer s.Close()

	assert.Equal(t, s.Path(), dbPath)
}

func TestSQLiteStorage_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bookmarks.db")

	s, err := storage.NewSQLiteStorage(dbPath)
	assert.NilError(t, err)
	mustCreate(t, s, nil, "Dev", "")
	assert.NilError(t, s.Close())

	reopened, err := storage.NewSQLiteStorage(dbPath)
	assert.NilError(t, err)
	defer reopened.Close()

	assert.DeepEqual(t, titles(t, reopened, nil), []string{"Dev"})
}

func TestSQLiteStorage_CreateBuildsTree(t *testing.T) {
	s := newTestStorage(t)

	dev := mustCreate(t, s, nil, "Development", "")
	goDir := mustCreate(t, s, &dev.ID, "Go", "")
	mustCreate(t, s, &goDir.ID, "Go Docs", "https://go.dev")
	gh := mustCreate(t, s, &dev.ID, "GitHub", "https://github.com")
	mustCreate(t, s, nil, "Hacker News", "https://news.ycombinator.com")

	tree, err := s.GetTree(context.Background())
	assert.NilError(t, err)

	assert.Assert(t, is.Len(tree, 2))
	assert.Check(t, tree[0].IsFolder())
	assert.Check(t, is.Nil(tree[0].ParentID))
	assert.Check(t, tree[0].DateAdded != nil)
	assert.Assert(t, is.Len(tree[0].Children, 2))
	assert.Equal(t, tree[0].Children[0].Title, "Go")
	assert.Equal(t, *tree[0].Children[1].ParentID, dev.ID)
	assert.Equal(t, tree[0].Children[1].URL, "https://github.com")
	assert.Check(t, !tree[1].IsFolder())

	// Folders always carry a defined children slice
	empty := mustCreate(t, s, nil, "Empty", "")
	tree, err = s.GetTree(context.Background())
	assert.NilError(t, err)
	assert.Check(t, model.Find(tree, empty.ID).Children != nil)

	got, err := s.GetNode(context.Background(), gh.ID)
	assert.NilError(t, err)
	assert.Equal(t, got.Title, "GitHub")
	assert.Equal(t, got.IndexOr(-1), 1)

	parent, err := s.GetNode(context.Background(), dev.ID)
	assert.NilError(t, err)
	assert.Check(t, parent.DateGroupModified != nil)
}

func TestSQLiteStorage_CreateAtIndex(t *testing.T) {
	s := newTestStorage(t)
	mustCreate(t, s, nil, "a", "https://a")
	mustCreate(t, s, nil, "c", "https://c")

	_, err := s.Create(context.Background(), storage.CreateParams{Title: "b", URL: "https://b", Index: intPtr(1)})
	assert.NilError(t, err)

	assert.DeepEqual(t, titles(t, s, nil), []string{"a", "b", "c"})
}

func TestSQLiteStorage_CreateKeepsDateAdded(t *testing.T) {
	s := newTestStorage(t)
	added := time.Date(2019, 3, 14, 9, 26, 53, 0, time.UTC)

	n, err := s.Create(context.Background(), storage.CreateParams{Title: "old", URL: "https://old.example", DateAdded: &added})
	assert.NilError(t, err)
	assert.Assert(t, n.DateAdded != nil)
	assert.Check(t, n.DateAdded.Equal(added))
}

func TestSQLiteStorage_CreateErrors(t *testing.T) {
	s := newTestStorage(t)
	b := mustCreate(t, s, nil, "leaf", "https://leaf")
	missing := "missing"

	_, err := s.Create(context.Background(), storage.CreateParams{ParentID: &missing, Title: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.Create(context.Background(), storage.CreateParams{ParentID: &b.ID, Title: "x"})
	assert.ErrorIs(t, err, storage.ErrInvalidMove)
}

func TestSQLiteStorage_MoveWithinParent(t *testing.T) {
	tests := []struct {
		name  string
		from  int
		index *int
		want  []string
	}{
		{name: "down, read against pre-removal order", from: 0, index: intPtr(3), want: []string{"b", "c", "a", "d"}},
		{name: "to end", from: 0, index: intPtr(4), want: []string{"b", "c", "d", "a"}},
		{name: "up", from: 3, index: intPtr(1), want: []string{"a", "d", "b", "c"}},
		{name: "no index appends", from: 1, index: nil, want: []string{"a", "c", "d", "b"}},
		{name: "same slot is a no-op", from: 1, index: intPtr(2), want: []string{"a", "b", "c", "d"}},
		{name: "index beyond end is clamped", from: 0, index: intPtr(99), want: []string{"b", "c", "d", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStorage(t)
			dir := mustCreate(t, s, nil, "dir", "")
			var nodes []*model.Node
			for _, name := range []string{"a", "b", "c", "d"} {
				nodes = append(nodes, mustCreate(t, s, &dir.ID, name, "https://"+name))
			}

			_, err := s.Move(context.Background(), nodes[tt.from].ID, storage.MoveParams{Index: tt.index})
			assert.NilError(t, err)

			assert.DeepEqual(t, titles(t, s, &dir.ID), tt.want)
		})
	}
}

func TestSQLiteStorage_MoveAcrossParents(t *testing.T) {
	s := newTestStorage(t)
	src := mustCreate(t, s, nil, "src", "")
	dst := mustCreate(t, s, nil, "dst", "")
	a := mustCreate(t, s, &src.ID, "a", "https://a")
	mustCreate(t, s, &src.ID, "b", "https://b")
	mustCreate(t, s, &dst.ID, "x", "https://x")
	mustCreate(t, s, &dst.ID, "y", "https://y")

	moved, err := s.Move(context.Background(), a.ID, storage.MoveParams{ParentID: &dst.ID, Index: intPtr(1)})
	assert.NilError(t, err)

	assert.Equal(t, *moved.ParentID, dst.ID)
	assert.DeepEqual(t, titles(t, s, &src.ID), []string{"b"})
	assert.DeepEqual(t, titles(t, s, &dst.ID), []string{"x", "a", "y"})
}

func TestSQLiteStorage_MoveToRoot(t *testing.T) {
	s := newTestStorage(t)
	dir := mustCreate(t, s, nil, "dir", "")
	mustCreate(t, s, nil, "top", "https://top")
	a := mustCreate(t, s, &dir.ID, "a", "https://a")

	moved, err := s.Move(context.Background(), a.ID, storage.MoveParams{ToRoot: true, Index: intPtr(0)})
	assert.NilError(t, err)

	assert.Check(t, is.Nil(moved.ParentID))
	assert.DeepEqual(t, titles(t, s, nil), []string{"a", "dir", "top"})
	assert.DeepEqual(t, titles(t, s, &dir.ID), []string{})
}

func TestSQLiteStorage_MoveErrors(t *testing.T) {
	s := newTestStorage(t)
	outer := mustCreate(t, s, nil, "outer", "")
	inner := mustCreate(t, s, &outer.ID, "inner", "")
	leaf := mustCreate(t, s, nil, "leaf", "https://leaf")
	missing := "missing"

	tests := []struct {
		name   string
		id     string
		params storage.MoveParams
		want   error
	}{
		{name: "stale source id", id: missing, params: storage.MoveParams{ParentID: &outer.ID}, want: storage.ErrNotFound},
		{name: "stale destination id", id: leaf.ID, params: storage.MoveParams{ParentID: &missing}, want: storage.ErrNotFound},
		{name: "destination is a bookmark", id: inner.ID, params: storage.MoveParams{ParentID: &leaf.ID}, want: storage.ErrInvalidMove},
		{name: "folder into itself", id: outer.ID, params: storage.MoveParams{ParentID: &outer.ID}, want: storage.ErrInvalidMove},
		{name: "folder into descendant", id: outer.ID, params: storage.MoveParams{ParentID: &inner.ID}, want: storage.ErrInvalidMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Move(context.Background(), tt.id, tt.params)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// Failed moves leave the tree untouched
	assert.DeepEqual(t, titles(t, s, nil), []string{"outer", "leaf"})
	assert.DeepEqual(t, titles(t, s, &outer.ID), []string{"inner"})
}

func TestSQLiteStorage_DeleteSubtree(t *testing.T) {
	s := newTestStorage(t)
	a := mustCreate(t, s, nil, "a", "")
	child := mustCreate(t, s, &a.ID, "child", "")
	deep := mustCreate(t, s, &child.ID, "deep", "https://deep")
	mustCreate(t, s, nil, "b", "https://b")

	assert.NilError(t, s.Delete(context.Background(), a.ID))

	assert.DeepEqual(t, titles(t, s, nil), []string{"b"})
	_, err := s.GetNode(context.Background(), deep.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = s.Delete(context.Background(), a.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUnavailable(t *testing.T) {
	var s storage.Store = storage.Unavailable{}
	ctx := context.Background()

	_, err := s.GetTree(ctx)
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	_, err = s.GetNode(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	_, err = s.Move(ctx, "x", storage.MoveParams{})
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	_, err = s.Create(ctx, storage.CreateParams{})
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.ErrorIs(t, s.Delete(ctx, "x"), storage.ErrUnavailable)
}

func TestOpen(t *testing.T) {
	s, err := storage.Open("")
	assert.NilError(t, err)
	_, unavailable := s.(storage.Unavailable)
	assert.Check(t, unavailable)

	s, err = storage.Open(filepath.Join(t.TempDir(), "bm.db"))
	assert.NilError(t, err)
	sqlite, ok := s.(*storage.SQLiteStorage)
	assert.Assert(t, ok)
	_ = sqlite.Close()
}
