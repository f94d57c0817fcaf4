package model

import "time"

// Kind distinguishes folders from bookmarks.
type Kind int

const (
	KindFolder Kind = iota
	KindBookmark
)

// String returns the kind name used in drag operation types.
func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "bookmark"
}

// Node is a folder or a bookmark in the bookmark tree.
type Node struct {
	Kind              Kind       `json:"kind"`
	ID                string     `json:"id"`
	ParentID          *string    `json:"parentId,omitempty"` // nil = top level
	Index             *int       `json:"index,omitempty"`
	Title             string     `json:"title"`
	URL               string     `json:"url,omitempty"`
	DateAdded         *time.Time `json:"dateAdded,omitempty"`
	DateGroupModified *time.Time `json:"dateGroupModified,omitempty"`
	Children          []*Node    `json:"children,omitempty"`

	// View-only state, never persisted.
	IsOpen      bool `json:"-"`
	IsTemporary bool `json:"-"`
}

// NewFolderParams holds parameters for creating a folder Node.
type NewFolderParams struct {
	ID       string
	ParentID *string
	Index    *int
	Title    string
	Children []*Node
}

// NewFolder creates a folder. Children is never nil for a folder.
func NewFolder(params NewFolderParams) *Node {
	children := params.Children
	if children == nil {
		children = []*Node{}
	}

	return &Node{
		Kind:     KindFolder,
		ID:       params.ID,
		ParentID: params.ParentID,
		Index:    params.Index,
		Title:    params.Title,
		Children: children,
	}
}

// NewBookmarkParams holds parameters for creating a bookmark Node.
type NewBookmarkParams struct {
	ID       string
	ParentID *string
	Index    *int
	Title    string
	URL      string
}

// NewBookmark creates a bookmark leaf.
func NewBookmark(params NewBookmarkParams) *Node {
	return &Node{
		Kind:     KindBookmark,
		ID:       params.ID,
		ParentID: params.ParentID,
		Index:    params.Index,
		Title:    params.Title,
		URL:      params.URL,
	}
}

// NewTemporaryFolder creates a placeholder folder for a not yet committed
// "new folder" row. Its id is synthetic and must never reach the store.
func NewTemporaryFolder(parentID *string) *Node {
	folder := NewFolder(NewFolderParams{
		ID:       newTemporaryID(),
		ParentID: parentID,
	})
	folder.IsTemporary = true
	return folder
}

// IsFolder returns true if the node is a folder.
func (n *Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// ParentOr returns the parent id, or fallback for top level nodes.
func (n *Node) ParentOr(fallback string) string {
	if n.ParentID == nil {
		return fallback
	}
	return *n.ParentID
}

// IndexOr returns the sibling index, or fallback if the store did not report one.
func (n *Node) IndexOr(fallback int) int {
	if n.Index == nil {
		return fallback
	}
	return *n.Index
}

// Clone returns a shallow copy with its own children slice.
// The child nodes themselves are shared.
func (n *Node) Clone() *Node {
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		copy(c.Children, n.Children)
	}
	return &c
}
