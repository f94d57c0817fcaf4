// Package dnd turns drag gestures on the bookmark tree into move intents.
package dnd

import "github.com/nikbrunner/bm/internal/model"

// RootID is the parent id reported for top level nodes.
const RootID = "root"

// Edge is the half of the target row the pointer is closest to.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
)

// String returns "top" or "bottom".
func (e Edge) String() string {
	if e == EdgeBottom {
		return "bottom"
	}
	return "top"
}

// ParseEdge parses "top" or "bottom". ok is false for anything else.
func ParseEdge(s string) (Edge, bool) {
	switch s {
	case "top":
		return EdgeTop, true
	case "bottom":
		return EdgeBottom, true
	}
	return EdgeTop, false
}

// ClosestEdge applies the midpoint rule: a pointer in the upper half of the
// target box is EdgeTop, anything else EdgeBottom.
func ClosestEdge(pointerY, top, height float64) Edge {
	if pointerY-top < height/2 {
		return EdgeTop
	}
	return EdgeBottom
}

// OpType names the kind of mutation a drop produces.
type OpType string

const (
	FolderMove      OpType = "folder-move"
	FolderReorder   OpType = "folder-reorder"
	BookmarkMove    OpType = "bookmark-move"
	BookmarkReorder OpType = "bookmark-reorder"
)

// IsMove returns true when the source is moved into a folder rather than
// reordered among the target's siblings.
func (t OpType) IsMove() bool {
	return t == FolderMove || t == BookmarkMove
}

// Endpoint is one end of a drag gesture.
type Endpoint struct {
	Kind model.Kind
	Node *model.Node
}

// NewEndpoint builds an endpoint from a node, taking the kind from its tag.
func NewEndpoint(n *model.Node) Endpoint {
	return Endpoint{Kind: n.Kind, Node: n}
}

// Operation is the mutation intent for a drop.
type Operation struct {
	Type           OpType `json:"type"`
	SourceID       string `json:"sourceId"`
	SourceParentID string `json:"sourceParentId"`
	SourceIndex    int    `json:"sourceIndex"`
	TargetID       string `json:"targetId"`
	TargetParentID string `json:"targetParentId"`
	TargetIndex    int    `json:"targetIndex"`
}

// Resolve computes the operation for dropping source on target.
//
// Dropping on a folder moves the source to the end of that folder and ignores
// the edge. Dropping on a bookmark places the source next to it among its
// siblings: at the bookmark's index for EdgeTop, one past it for EdgeBottom.
// Self-drops must be filtered before calling Resolve.
func Resolve(source, target Endpoint, edge Edge) Operation {
	op := Operation{
		SourceID:       source.Node.ID,
		SourceParentID: source.Node.ParentOr(RootID),
		SourceIndex:    source.Node.IndexOr(0),
		TargetID:       target.Node.ID,
	}

	intoFolder := target.Node.IsFolder()
	op.Type = opType(source.Kind, intoFolder)

	if intoFolder {
		op.TargetParentID = target.Node.ID
		op.TargetIndex = len(target.Node.Children)
		return op
	}

	op.TargetParentID = target.Node.ParentOr(RootID)
	op.TargetIndex = target.Node.IndexOr(0)
	if edge == EdgeBottom {
		op.TargetIndex++
	}
	return op
}

func opType(source model.Kind, intoFolder bool) OpType {
	switch {
	case source == model.KindFolder && intoFolder:
		return FolderMove
	case source == model.KindFolder:
		return FolderReorder
	case intoFolder:
		return BookmarkMove
	default:
		return BookmarkReorder
	}
}
