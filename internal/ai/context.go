package ai

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/bm/internal/model"
)

const maxSampleTitles = 3

// BuildContext generates a compressed representation of the tree suitable for
// AI context: every folder path with a few sample bookmark titles.
func BuildContext(tree []*model.Node) string {
	var sb strings.Builder

	sb.WriteString("Available folders (with sample bookmarks):\n")
	buildFolderTree(&sb, tree, "")

	return sb.String()
}

func buildFolderTree(sb *strings.Builder, nodes []*model.Node, path string) {
	for _, folder := range nodes {
		if !folder.IsFolder() || folder.IsTemporary {
			continue
		}
		currentPath := path + "/" + folder.Title

		sb.WriteString(currentPath)
		sb.WriteString("\n")

		var titles []string
		for _, child := range folder.Children {
			if len(titles) == maxSampleTitles {
				break
			}
			if !child.IsFolder() {
				titles = append(titles, fmt.Sprintf("%q", child.Title))
			}
		}
		if len(titles) > 0 {
			sb.WriteString("  - ")
			sb.WriteString(strings.Join(titles, ", "))
			sb.WriteString("\n")
		}

		buildFolderTree(sb, folder.Children, currentPath)
	}
}
