package model_test

import (
	"encoding/json"
	"testing"

	"github.com/nikbrunner/bm/internal/model"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// Helper functions for pointers
func stringPtr(s string) *string { return &s }
func intPtr(i int) *int          { return &i }

// sampleTree builds:
//
//	Development/
//	  Go/
//	    Go Docs
//	  GitHub
//	Hacker News
func sampleTree() []*model.Node {
	return []*model.Node{
		model.NewFolder(model.NewFolderParams{
			ID: "f1", Title: "Development", Index: intPtr(0),
			Children: []*model.Node{
				model.NewFolder(model.NewFolderParams{
					ID: "f2", Title: "Go", ParentID: stringPtr("f1"), Index: intPtr(0),
					Children: []*model.Node{
						model.NewBookmark(model.NewBookmarkParams{ID: "b1", Title: "Go Docs", URL: "https://go.dev", ParentID: stringPtr("f2"), Index: intPtr(0)}),
					},
				}),
				model.NewBookmark(model.NewBookmarkParams{ID: "b2", Title: "GitHub", URL: "https://github.com", ParentID: stringPtr("f1"), Index: intPtr(1)}),
			},
		}),
		model.NewBookmark(model.NewBookmarkParams{ID: "b3", Title: "Hacker News", URL: "https://news.ycombinator.com", Index: intPtr(1)}),
	}
}

func TestNewFolder_ChildrenNeverNil(t *testing.T) {
	f := model.NewFolder(model.NewFolderParams{ID: "f1", Title: "Empty"})

	assert.Assert(t, f.IsFolder())
	assert.Assert(t, f.Children != nil, "folder children must be defined even when empty")
	assert.Check(t, is.Len(f.Children, 0))
}

func TestNewBookmark_IsLeaf(t *testing.T) {
	b := model.NewBookmark(model.NewBookmarkParams{ID: "b1", Title: "GitHub", URL: "https://github.com"})

	assert.Assert(t, !b.IsFolder())
	assert.Check(t, b.Children == nil)
	assert.Equal(t, b.URL, "https://github.com")
}

func TestNode_ParentOrIndexOr(t *testing.T) {
	top := model.NewBookmark(model.NewBookmarkParams{ID: "b1", URL: "u"})
	nested := model.NewBookmark(model.NewBookmarkParams{ID: "b2", URL: "u", ParentID: stringPtr("f1"), Index: intPtr(3)})

	assert.Equal(t, top.ParentOr("root"), "root")
	assert.Equal(t, top.IndexOr(-1), -1)
	assert.Equal(t, nested.ParentOr("root"), "f1")
	assert.Equal(t, nested.IndexOr(-1), 3)
}

func TestNode_JSONOmitsViewState(t *testing.T) {
	f := model.NewFolder(model.NewFolderParams{ID: "f1", Title: "Dev"})
	f.IsOpen = true
	f.IsTemporary = true

	data, err := json.Marshal(f)
	assert.NilError(t, err)

	var raw map[string]any
	assert.NilError(t, json.Unmarshal(data, &raw))
	assert.Check(t, is.Equal(raw["id"], "f1"))
	_, hasOpen := raw["IsOpen"]
	_, hasTemp := raw["IsTemporary"]
	assert.Check(t, !hasOpen)
	assert.Check(t, !hasTemp)
}

func TestClone_OwnChildrenSlice(t *testing.T) {
	tree := sampleTree()
	c := tree[0].Clone()
	c.Children[0] = model.NewBookmark(model.NewBookmarkParams{ID: "x", URL: "u"})

	assert.Equal(t, tree[0].Children[0].ID, "f2", "original children must not change")
}

func TestDeepCopy_Independent(t *testing.T) {
	tree := sampleTree()
	cp := model.DeepCopy(tree)

	cp[0].Children[0].Title = "Changed"
	cp[0].IsOpen = true

	assert.Equal(t, tree[0].Children[0].Title, "Go")
	assert.Check(t, !tree[0].IsOpen)
	assert.Check(t, model.DeepCopy(nil) == nil)
}

func TestFind(t *testing.T) {
	tree := sampleTree()

	tests := []struct {
		name  string
		id    string
		title string
	}{
		{name: "top level folder", id: "f1", title: "Development"},
		{name: "nested folder", id: "f2", title: "Go"},
		{name: "deep bookmark", id: "b1", title: "Go Docs"},
		{name: "top level bookmark", id: "b3", title: "Hacker News"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := model.Find(tree, tt.id)
			assert.Assert(t, n != nil)
			assert.Equal(t, n.Title, tt.title)
		})
	}

	assert.Check(t, model.Find(tree, "nonexistent") == nil)
}

func TestWalk_SkipChildren(t *testing.T) {
	var visited []string
	model.Walk(sampleTree(), func(n *model.Node, depth int) bool {
		visited = append(visited, n.ID)
		return n.ID != "f2"
	})

	assert.DeepEqual(t, visited, []string{"f1", "f2", "b2", "b3"})
}

func TestFolders_Paths(t *testing.T) {
	folders := model.Folders(sampleTree())

	assert.DeepEqual(t, folders, []model.FolderPath{
		{ID: "f1", Path: "/Development"},
		{ID: "f2", Path: "/Development/Go"},
	})
}

func TestFolderByPath(t *testing.T) {
	tree := sampleTree()

	f := model.FolderByPath(tree, "development/go/")
	assert.Assert(t, f != nil)
	assert.Equal(t, f.ID, "f2")

	assert.Check(t, model.FolderByPath(tree, "/Nope") == nil)
}

func TestParentPath(t *testing.T) {
	tree := sampleTree()

	assert.Equal(t, model.ParentPath(tree, "b1"), "/Development/Go")
	assert.Equal(t, model.ParentPath(tree, "f2"), "/Development")
	assert.Equal(t, model.ParentPath(tree, "b3"), "/")
	assert.Equal(t, model.ParentPath(tree, "missing"), "")
}

func TestInsertTemporary(t *testing.T) {
	tree := sampleTree()

	t.Run("top level", func(t *testing.T) {
		out, tmp := model.InsertTemporary(tree, nil)
		assert.Equal(t, len(out), 3)
		assert.Equal(t, out[0], tmp)
		assert.Assert(t, tmp.IsTemporary)
		assert.Assert(t, model.IsTemporaryID(tmp.ID))
		assert.Equal(t, len(tree), 2, "original must be untouched")
	})

	t.Run("nested", func(t *testing.T) {
		out, tmp := model.InsertTemporary(tree, stringPtr("f2"))
		f2 := model.Find(out, "f2")
		assert.Equal(t, len(f2.Children), 2)
		assert.Equal(t, f2.Children[0], tmp)
		assert.Equal(t, len(model.Find(tree, "f2").Children), 1, "original must be untouched")
	})

	t.Run("temporary folders are not listed", func(t *testing.T) {
		out, _ := model.InsertTemporary(tree, nil)
		assert.Equal(t, len(model.Folders(out)), 2)
	})
}

func TestIsTemporaryID(t *testing.T) {
	assert.Check(t, !model.IsTemporaryID(model.GenerateID()))
	assert.Check(t, model.IsTemporaryID(model.NewTemporaryFolder(nil).ID))
}

func TestCount(t *testing.T) {
	folders, bookmarks := model.Count(sampleTree())
	assert.Equal(t, folders, 2)
	assert.Equal(t, bookmarks, 3)
}

func TestTitles(t *testing.T) {
	assert.DeepEqual(t, model.Titles(sampleTree()), map[string]string{
		"f1": "Development",
		"f2": "Go",
		"b1": "Go Docs",
		"b2": "GitHub",
		"b3": "Hacker News",
	})
}
