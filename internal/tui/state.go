package tui

import (
	"github.com/nikbrunner/bm/internal/ai"
	"github.com/nikbrunner/bm/internal/config"
	"github.com/nikbrunner/bm/internal/dnd"
	"github.com/nikbrunner/bm/internal/model"
)

// Mode is the input mode of the App.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeNewFolder
	ModeConfirmDelete
	ModeMove
	ModeConfirmSuggest
	ModeHelp
)

// dragState tracks a mouse drag from press to release.
type dragState struct {
	active   bool
	sourceID string
	overID   string // row currently under the pointer
}

// suggestState holds an AI suggestion waiting for confirmation.
type suggestState struct {
	node       *model.Node
	folder     *model.Node // nil when the suggestion names no existing folder
	suggestion *ai.FolderSuggestion
}

// SettingsMsg delivers changed settings, e.g. from a config file watcher.
type SettingsMsg config.Settings

// treeMsg is sent after the session refetched the tree.
type treeMsg struct {
	err error
}

// mutationMsg is sent after a store mutation finished.
type mutationMsg struct {
	action   string
	op       *dnd.Operation // set for drops
	ignored  bool           // drop gesture resolved to nothing
	selectID string         // row to put the cursor on afterwards
	err      error
}

// filterTickMsg fires when the search debounce delay elapsed.
type filterTickMsg struct {
	seq int
}

// suggestionMsg carries the AI answer for a node.
type suggestionMsg struct {
	nodeID     string
	suggestion *ai.FolderSuggestion
	err        error
}
