package search

import (
	"github.com/nikbrunner/bm/internal/model"
	"github.com/sahilm/fuzzy"
)

// FolderResult represents a fuzzy search match on a folder path.
type FolderResult struct {
	Folder         model.FolderPath
	MatchedIndexes []int // byte offsets into Folder.Path
	Score          int
}

// folderPaths implements fuzzy.Source for folder paths.
type folderPaths []model.FolderPath

func (fp folderPaths) String(i int) string {
	return fp[i].Path
}

func (fp folderPaths) Len() int {
	return len(fp)
}

// FuzzySearchFolders searches folders by path using fuzzy matching.
// Returns results sorted by match score (best first), nil for an empty query.
func FuzzySearchFolders(folders []model.FolderPath, query string) []FolderResult {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, folderPaths(folders))

	results := make([]FolderResult, len(matches))
	for i, m := range matches {
		results[i] = FolderResult{
			Folder:         folders[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
