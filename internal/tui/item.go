package tui

import "github.com/nikbrunner/bm/internal/model"

// Row is one visible line of the tree pane.
type Row struct {
	Node  *model.Node
	Depth int
	// Title is the stored title. Node.Title carries highlight markup during a
	// search and differs from Title exactly when the row matched.
	Title string
}

// ID returns the node id of the row.
func (r Row) ID() string {
	return r.Node.ID
}

// IsFolder returns true if the row shows a folder.
func (r Row) IsFolder() bool {
	return r.Node.IsFolder()
}

// Matched returns true if the filter highlighted the row's title.
func (r Row) Matched() bool {
	return r.Node.Title != r.Title
}

// visibleRows flattens tree into rows, descending only into expanded folders.
// titles maps node ids to stored titles; nodes missing from it keep their own.
func visibleRows(tree []*model.Node, expanded map[string]bool, titles map[string]string) []Row {
	var rows []Row
	model.Walk(tree, func(n *model.Node, depth int) bool {
		title, ok := titles[n.ID]
		if !ok {
			title = n.Title
		}
		rows = append(rows, Row{Node: n, Depth: depth, Title: title})
		return n.IsFolder() && expanded[n.ID]
	})
	return rows
}

// rowIndex returns the index of the row showing id, or -1.
func rowIndex(rows []Row, id string) int {
	for i, r := range rows {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

// subtreeIDs returns the id of n and of every node below it.
func subtreeIDs(n *model.Node) map[string]bool {
	ids := make(map[string]bool)
	model.Walk([]*model.Node{n}, func(c *model.Node, _ int) bool {
		ids[c.ID] = true
		return true
	})
	return ids
}

// folderIDs returns the ids of every folder in tree.
func folderIDs(tree []*model.Node) map[string]bool {
	ids := make(map[string]bool)
	model.Walk(tree, func(n *model.Node, _ int) bool {
		if n.IsFolder() {
			ids[n.ID] = true
		}
		return true
	})
	return ids
}
