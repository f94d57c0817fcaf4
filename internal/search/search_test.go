package search

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bm/internal/model"
)

var folders = []model.FolderPath{
	{ID: "dev", Path: "/Development"},
	{ID: "go", Path: "/Development/Go"},
	{ID: "react", Path: "/Development/React"},
	{ID: "design", Path: "/Design"},
}

func TestFuzzySearchFolders_EmptyQuery(t *testing.T) {
	assert.Assert(t, FuzzySearchFolders(folders, "") == nil)
}

func TestFuzzySearchFolders_NoMatch(t *testing.T) {
	assert.Equal(t, len(FuzzySearchFolders(folders, "zzz")), 0)
}

func TestFuzzySearchFolders_BestMatchFirst(t *testing.T) {
	results := FuzzySearchFolders(folders, "react")

	assert.Assert(t, len(results) >= 1)
	assert.Equal(t, results[0].Folder.ID, "react")
}

func TestFuzzySearchFolders_FuzzyMatch(t *testing.T) {
	results := FuzzySearchFolders(folders, "dvgo")

	assert.Equal(t, len(results), 1)
	assert.Equal(t, results[0].Folder.Path, "/Development/Go")
	assert.Equal(t, len(results[0].MatchedIndexes), 4)
}

func TestFuzzySearchFolders_CaseInsensitive(t *testing.T) {
	results := FuzzySearchFolders(folders, "design")

	assert.Assert(t, len(results) >= 1)
	assert.Equal(t, results[0].Folder.ID, "design")
}
