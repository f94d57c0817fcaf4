package filter

import "github.com/nikbrunner/bm/internal/model"

// ExpandableIDs returns the ids of all folders in a filtered tree that the
// view should render expanded.
func ExpandableIDs(tree []*model.Node) map[string]bool {
	ids := make(map[string]bool)
	model.Walk(tree, func(n *model.Node, _ int) bool {
		if n.IsFolder() && n.IsOpen {
			ids[n.ID] = true
		}
		return true
	})
	return ids
}

// State is the search state a view keeps between filter passes.
type State struct {
	Query     string
	ExpandAll bool
}

// Result is the output of one filter pass.
type Result struct {
	Tree     []*model.Node
	Expanded map[string]bool
}

// SetQuery updates the query. Clearing it also turns expand-all off.
func (s *State) SetQuery(query string) {
	s.Query = query
	if query == "" {
		s.ExpandAll = false
	}
}

// ToggleExpandAll flips the expand-all override.
func (s *State) ToggleExpandAll() {
	s.ExpandAll = !s.ExpandAll
}

// Searching returns true while a query is active.
func (s State) Searching() bool {
	return s.Query != ""
}

// Apply filters tree with the current state. Without a query the expanded
// set is empty so every folder starts collapsed.
func (s State) Apply(tree []*model.Node) Result {
	filtered := Filter(tree, s.Query, s.ExpandAll)
	if !s.Searching() {
		return Result{Tree: filtered, Expanded: map[string]bool{}}
	}
	return Result{Tree: filtered, Expanded: ExpandableIDs(filtered)}
}
