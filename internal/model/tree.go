package model

import "strings"

// FolderPath pairs a folder with its slash separated path from the top level.
type FolderPath struct {
	ID   string
	Path string
}

// DeepCopy returns a fully independent copy of the tree.
func DeepCopy(tree []*Node) []*Node {
	if tree == nil {
		return nil
	}

	out := make([]*Node, len(tree))
	for i, n := range tree {
		c := *n
		if n.Children != nil {
			c.Children = DeepCopy(n.Children)
		}
		out[i] = &c
	}
	return out
}

// Walk visits every node depth first, parents before children.
// Returning false from fn skips the node's children.
func Walk(tree []*Node, fn func(n *Node, depth int) bool) {
	walk(tree, 0, fn)
}

func walk(tree []*Node, depth int, fn func(*Node, int) bool) {
	for _, n := range tree {
		if fn(n, depth) && n.IsFolder() {
			walk(n.Children, depth+1, fn)
		}
	}
}

// Find returns the node with the given id, or nil if not found.
func Find(tree []*Node, id string) *Node {
	var found *Node
	Walk(tree, func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Folders returns every folder with its path, in tree order.
func Folders(tree []*Node) []FolderPath {
	var result []FolderPath
	collectFolders(tree, "", &result)
	return result
}

func collectFolders(tree []*Node, prefix string, result *[]FolderPath) {
	for _, n := range tree {
		if !n.IsFolder() || n.IsTemporary {
			continue
		}
		path := prefix + "/" + n.Title
		*result = append(*result, FolderPath{ID: n.ID, Path: path})
		collectFolders(n.Children, path, result)
	}
}

// FolderByPath finds a folder by its slash separated path.
// Matching is case-insensitive and ignores surrounding slashes.
func FolderByPath(tree []*Node, path string) *Node {
	want := "/" + strings.Trim(path, "/")
	for _, f := range Folders(tree) {
		if strings.EqualFold(f.Path, want) {
			return Find(tree, f.ID)
		}
	}
	return nil
}

// InsertTemporary returns a copy of tree with a placeholder folder prepended to
// the children of parentID (or to the top level when parentID is nil).
// The input tree is left untouched.
func InsertTemporary(tree []*Node, parentID *string) ([]*Node, *Node) {
	tmp := NewTemporaryFolder(parentID)

	if parentID == nil {
		return append([]*Node{tmp}, tree...), tmp
	}

	return insertUnder(tree, *parentID, tmp), tmp
}

func insertUnder(tree []*Node, parentID string, tmp *Node) []*Node {
	out := make([]*Node, len(tree))
	for i, n := range tree {
		switch {
		case n.ID == parentID:
			c := n.Clone()
			c.Children = append([]*Node{tmp}, n.Children...)
			out[i] = c
		case n.IsFolder():
			c := n.Clone()
			c.Children = insertUnder(n.Children, parentID, tmp)
			out[i] = c
		default:
			out[i] = n
		}
	}
	return out
}

// Titles maps every node id in tree to its title.
func Titles(tree []*Node) map[string]string {
	titles := make(map[string]string)
	Walk(tree, func(n *Node, _ int) bool {
		titles[n.ID] = n.Title
		return true
	})
	return titles
}

// Count returns the number of folders and bookmarks in the tree.
func Count(tree []*Node) (folders, bookmarks int) {
	Walk(tree, func(n *Node, _ int) bool {
		if n.IsFolder() {
			folders++
		} else {
			bookmarks++
		}
		return true
	})
	return folders, bookmarks
}

// ParentPath returns the path of the folder containing id, "/" for top level
// nodes and "" when id is not in the tree.
func ParentPath(tree []*Node, id string) string {
	n := Find(tree, id)
	if n == nil {
		return ""
	}
	if n.ParentID == nil {
		return "/"
	}
	for _, f := range Folders(tree) {
		if f.ID == *n.ParentID {
			return f.Path
		}
	}
	return "/"
}
