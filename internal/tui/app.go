// Package tui is the interactive bookmark tree browser.
package tui

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bm/internal/ai"
	"github.com/nikbrunner/bm/internal/config"
	"github.com/nikbrunner/bm/internal/filter"
	"github.com/nikbrunner/bm/internal/logging"
	"github.com/nikbrunner/bm/internal/model"
	"github.com/nikbrunner/bm/internal/picker"
	"github.com/nikbrunner/bm/internal/session"
	"github.com/nikbrunner/bm/internal/tui/layout"
)

// FolderSuggester suggests a destination folder for a node.
type FolderSuggester interface {
	SuggestFolder(ctx context.Context, n *model.Node, currentPath, treeContext string) (*ai.FolderSuggestion, error)
}

// App is the main bubbletea model for the bookmark tree browser.
type App struct {
	ctx          context.Context
	session      *session.Session
	suggester    FolderSuggester
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig
	settings     config.Settings
	log          *logrus.Entry

	clipboard func(string) error
	openURL   func(string) error

	// Filter state
	filter      filter.State
	searchInput textinput.Model
	debounceSeq int

	// Displayed tree and rows
	display  []*model.Node
	titles   map[string]string // stored titles by id
	expanded map[string]bool
	rows     []Row
	cursor   int

	mode Mode

	// New folder
	folderInput textinput.Model
	placeholder *model.Node

	// Keyboard grab and mouse drag
	grabbedID string
	drag      dragState

	// Modals
	confirmID string
	picker    picker.Picker
	moveID    string
	suggest   suggestState

	status    string
	statusErr bool

	// For gg command
	lastKeyWasG bool

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Context      context.Context // optional, defaults to Background
	Session      *session.Session
	Suggester    FolderSuggester // optional, nil disables AI suggestions
	Keys         *KeyMap         // optional, uses default if nil
	Styles       *Styles         // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig
	Logger       logrus.FieldLogger
	Clipboard    func(string) error // optional, defaults to the system clipboard
	OpenURL      func(string) error // optional, defaults to the system browser
}

// NewApp creates a new App with the given parameters.
// The tree is loaded by Init.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutConfig := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutConfig = *params.LayoutConfig
	}

	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var logger logrus.FieldLogger = params.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	copyFn := params.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	openFn := params.OpenURL
	if openFn == nil {
		openFn = OpenInBrowser
	}

	searchInput := textinput.New()
	searchInput.Prompt = "/ "
	searchInput.Placeholder = "search bookmarks"
	searchInput.CharLimit = layoutConfig.Input.SearchCharLimit
	searchInput.Width = layoutConfig.Input.StandardWidth

	folderInput := textinput.New()
	folderInput.Prompt = ""
	folderInput.Placeholder = "New folder"
	folderInput.CharLimit = layoutConfig.Input.TitleCharLimit
	folderInput.Width = layoutConfig.Input.StandardWidth

	app := App{
		ctx:          ctx,
		session:      params.Session,
		suggester:    params.Suggester,
		keys:         keys,
		styles:       styles,
		layoutConfig: layoutConfig,
		settings:     params.Session.Settings(),
		log:          logging.Component(logger, "tui"),
		clipboard:    copyFn,
		openURL:      openFn,
		searchInput:  searchInput,
		folderInput:  folderInput,
		expanded:     map[string]bool{},
		width:        80,
		height:       24,
	}

	app.rebuild(false)
	return app
}

// WithDimensions returns a copy of the app with the given terminal size.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Rows returns the visible rows.
func (a App) Rows() []Row {
	return a.rows
}

// Mode returns the current input mode.
func (a App) Mode() Mode {
	return a.mode
}

// Query returns the active search query.
func (a App) Query() string {
	return a.filter.Query
}

// Expanded returns the ids of folders rendered open.
func (a App) Expanded() map[string]bool {
	return a.expanded
}

// Status returns the status line text and whether it reports an error.
func (a App) Status() (string, bool) {
	return a.status, a.statusErr
}

// Selected returns the node under the cursor, or nil for an empty tree.
func (a App) Selected() *model.Node {
	if a.cursor < 0 || a.cursor >= len(a.rows) {
		return nil
	}
	return a.rows[a.cursor].Node
}

// title returns the stored title of n, without highlight markup.
func (a App) title(n *model.Node) string {
	if t, ok := a.titles[n.ID]; ok {
		return t
	}
	return n.Title
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return a.refreshCmd()
}

// rebuild runs a filter pass over the session tree and recomputes rows.
// resetExpansion replaces the expanded set with the filter result; otherwise
// a search keeps following the filter while manual expansion is kept.
func (a *App) rebuild(resetExpansion bool) {
	selectedID := ""
	if n := a.Selected(); n != nil {
		selectedID = n.ID
	}

	tree := a.session.Tree()
	result := a.filter.Apply(tree)
	a.display = result.Tree
	a.titles = model.Titles(tree)

	if resetExpansion || a.filter.Searching() {
		a.expanded = result.Expanded
	} else {
		a.pruneExpanded()
	}

	if a.placeholder != nil {
		a.display, _ = insertPlaceholder(a.display, a.placeholder)
		if a.placeholder.ParentID != nil {
			a.expanded[*a.placeholder.ParentID] = true
		}
	}

	a.rows = visibleRows(a.display, a.expanded, a.titles)
	a.restoreCursor(selectedID)
}

// pruneExpanded drops expanded ids that no longer exist.
func (a *App) pruneExpanded() {
	for id := range a.expanded {
		if model.Find(a.display, id) == nil {
			delete(a.expanded, id)
		}
	}
}

func (a *App) restoreCursor(id string) {
	if id != "" {
		if i := rowIndex(a.rows, id); i >= 0 {
			a.cursor = i
			return
		}
	}
	if a.cursor >= len(a.rows) {
		a.cursor = len(a.rows) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// insertPlaceholder puts an existing placeholder node back into a freshly
// filtered tree under its parent.
func insertPlaceholder(tree []*model.Node, placeholder *model.Node) ([]*model.Node, *model.Node) {
	out, tmp := model.InsertTemporary(tree, placeholder.ParentID)
	// Keep the placeholder identity stable across rebuilds
	*tmp = *placeholder
	return out, tmp
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.statusErr = false
}

func (a *App) setError(msg string, err error) {
	a.log.WithError(err).Warn(msg)
	a.status = msg + ": " + err.Error()
	a.statusErr = true
}
