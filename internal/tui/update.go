package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bm/internal/config"
	"github.com/nikbrunner/bm/internal/dnd"
	"github.com/nikbrunner/bm/internal/model"
	"github.com/nikbrunner/bm/internal/picker"
	"github.com/nikbrunner/bm/internal/session"
	"github.com/nikbrunner/bm/internal/tui/layout"
)

// rowsTop is the terminal line of the first tree row:
// app padding (1) + header (1) + pane border (1).
const rowsTop = 3

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.mode == ModeMove {
			a.picker, _ = a.picker.UpdatePicker(msg)
		}
		return a, nil

	case SettingsMsg:
		a.settings = config.Settings(msg)
		a.session.UpdateSettings(a.settings)
		a.log.Debug("settings reloaded")
		return a, nil

	case treeMsg:
		if msg.err != nil {
			a.setError("load bookmarks", msg.err)
		}
		a.rebuild(false)
		return a, nil

	case mutationMsg:
		return a.handleMutation(msg), nil

	case filterTickMsg:
		// Stale ticks belong to keystrokes that were typed over
		if msg.seq == a.debounceSeq {
			a.applyQuery(a.searchInput.Value())
		}
		return a, nil

	case suggestionMsg:
		return a.handleSuggestion(msg), nil

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case tea.KeyMsg:
		switch a.mode {
		case ModeSearch:
			return a.handleSearchKey(msg)
		case ModeNewFolder:
			return a.handleNewFolderKey(msg)
		case ModeConfirmDelete:
			return a.handleConfirmDeleteKey(msg)
		case ModeMove:
			return a.handlePicker(msg)
		case ModeConfirmSuggest:
			return a.handleConfirmSuggestKey(msg)
		case ModeHelp:
			a.mode = ModeNormal
			return a, nil
		default:
			return a.handleNormalKey(msg)
		}
	}

	// Cursor blink and friends go to whichever input has focus
	var cmd tea.Cmd
	switch a.mode {
	case ModeSearch:
		a.searchInput, cmd = a.searchInput.Update(msg)
	case ModeNewFolder:
		a.folderInput, cmd = a.folderInput.Update(msg)
	case ModeMove:
		a.picker, cmd = a.picker.UpdatePicker(msg)
	}
	return a, cmd
}

func (a App) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg (go to top)
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = 0
			a.lastKeyWasG = false
		} else {
			a.lastKeyWasG = true
		}
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Cancel):
		switch {
		case a.grabbedID != "":
			a.grabbedID = ""
			a.setStatus("grab cancelled")
		case a.filter.Searching():
			a.clearQuery()
		default:
			a.status = ""
		}
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.rows)-1 {
			a.cursor++
		}
		return a, nil

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case key.Matches(msg, a.keys.Bottom):
		if len(a.rows) > 0 {
			a.cursor = len(a.rows) - 1
		}
		return a, nil

	case key.Matches(msg, a.keys.Expand):
		return a.expandOrOpen()

	case key.Matches(msg, a.keys.Collapse):
		a.collapseOrParent()
		return a, nil

	case key.Matches(msg, a.keys.ExpandAll):
		a.toggleExpandAll()
		return a, nil

	case key.Matches(msg, a.keys.Search):
		a.mode = ModeSearch
		a.searchInput.SetValue(a.filter.Query)
		a.searchInput.CursorEnd()
		cmd := a.searchInput.Focus()
		return a, cmd

	case key.Matches(msg, a.keys.Grab):
		n := a.Selected()
		if n == nil || n.IsTemporary {
			return a, nil
		}
		a.grabbedID = n.ID
		a.setStatus(fmt.Sprintf("grabbed %q, press p or P to drop", a.title(n)))
		return a, nil

	case key.Matches(msg, a.keys.DropAfter):
		return a.dropGrabbed(dnd.EdgeBottom)

	case key.Matches(msg, a.keys.DropBefore):
		return a.dropGrabbed(dnd.EdgeTop)

	case key.Matches(msg, a.keys.Move):
		return a.openMovePicker()

	case key.Matches(msg, a.keys.Suggest):
		return a.requestSuggestion()

	case key.Matches(msg, a.keys.AddFolder):
		return a.startNewFolder()

	case key.Matches(msg, a.keys.Delete):
		n := a.Selected()
		if n == nil || n.IsTemporary {
			return a, nil
		}
		if a.settings.ConfirmDelete {
			a.mode = ModeConfirmDelete
			a.confirmID = n.ID
			return a, nil
		}
		return a, a.deleteCmd(n.ID)

	case key.Matches(msg, a.keys.YankURL):
		n := a.Selected()
		if n == nil || n.IsFolder() {
			return a, nil
		}
		if err := a.clipboard(n.URL); err != nil {
			a.setError("copy URL", err)
			return a, nil
		}
		a.setStatus("copied " + n.URL)
		return a, nil

	case key.Matches(msg, a.keys.Open):
		if n := a.Selected(); n != nil && !n.IsFolder() {
			a.open(n)
		}
		return a, nil

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp
		return a, nil
	}

	return a, nil
}

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = ModeNormal
		a.searchInput.Blur()
		a.clearQuery()
		return a, nil

	case tea.KeyEnter:
		a.mode = ModeNormal
		a.searchInput.Blur()
		a.debounceSeq++
		a.applyQuery(a.searchInput.Value())
		return a, nil

	case tea.KeyCtrlE:
		a.toggleExpandAll()
		return a, nil

	case tea.KeyDown:
		if a.cursor < len(a.rows)-1 {
			a.cursor++
		}
		return a, nil

	case tea.KeyUp:
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	}

	before := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if a.searchInput.Value() == before {
		return a, cmd
	}

	a.debounceSeq++
	if a.settings.Debounce <= 0 {
		a.applyQuery(a.searchInput.Value())
		return a, cmd
	}
	return a, tea.Batch(cmd, a.debounceCmd(a.debounceSeq))
}

func (a App) handleNewFolderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.cancelNewFolder()
		return a, nil

	case tea.KeyEnter:
		title := strings.TrimSpace(a.folderInput.Value())
		if title == "" {
			a.setError("create folder", session.ErrEmptyTitle)
			return a, nil
		}
		placeholder := a.placeholder
		a.cancelNewFolder()
		return a, a.createFolderCmd(placeholder, title)
	}

	var cmd tea.Cmd
	a.folderInput, cmd = a.folderInput.Update(msg)
	return a, cmd
}

func (a App) handleConfirmDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		id := a.confirmID
		a.mode = ModeNormal
		a.confirmID = ""
		return a, a.deleteCmd(id)
	case "n", "esc", "q":
		a.mode = ModeNormal
		a.confirmID = ""
	}
	return a, nil
}

func (a App) handleConfirmSuggestKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		s := a.suggest
		a.mode = ModeNormal
		a.suggest = suggestState{}
		if s.folder == nil {
			return a, nil
		}
		return a, a.dropCmd(s.node.ID, s.folder.ID, dnd.EdgeBottom)
	case "n", "esc", "q":
		a.mode = ModeNormal
		a.suggest = suggestState{}
	}
	return a, nil
}

func (a App) handlePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.picker, cmd = a.picker.UpdatePicker(msg)
	if !a.picker.Done() {
		return a, cmd
	}

	a.mode = ModeNormal
	sourceID := a.moveID
	a.moveID = ""
	folder := a.picker.Selected()
	if folder == nil {
		return a, nil
	}
	return a, a.dropCmd(sourceID, folder.ID, dnd.EdgeBottom)
}

// handleMouse implements the pointer drag path: press picks up a row,
// release over another row resolves the drop from the pointer position.
func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.mode != ModeNormal {
		return a, nil
	}

	row, onRow := a.rowAt(msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.cursor > 0 {
				a.cursor--
			}
		case tea.MouseButtonWheelDown:
			if a.cursor < len(a.rows)-1 {
				a.cursor++
			}
		case tea.MouseButtonLeft:
			if !onRow || a.rows[row].Node.IsTemporary {
				return a, nil
			}
			id := a.rows[row].ID()
			a.cursor = row
			a.drag = dragState{active: true, sourceID: id, overID: id}
		}
		return a, nil

	case tea.MouseActionMotion:
		if a.drag.active && onRow {
			a.drag.overID = a.rows[row].ID()
		}
		return a, nil

	case tea.MouseActionRelease:
		if !a.drag.active {
			return a, nil
		}
		drag := a.drag
		a.drag = dragState{}
		if !onRow {
			return a, nil
		}

		tree := a.session.Tree()
		source := model.Find(tree, drag.sourceID)
		target := model.Find(tree, a.rows[row].ID())
		if source == nil || target == nil {
			return a, nil
		}

		// Rows are one cell high, so a release always lands in the top half of
		// its row. Alt moves the pointer to the midpoint to drop below instead.
		box := dnd.Box{Top: float64(a.rowLine(row)), Height: 1}
		pointerY := float64(msg.Y)
		if msg.Alt {
			pointerY += box.Height / 2
		}
		op, ok := a.session.Controller().FromPointer(dnd.NewEndpoint(source), dnd.NewEndpoint(target), pointerY, box)
		if !ok {
			// Released where it started: a plain click
			return a, nil
		}
		return a, a.applyCmd(op)
	}

	return a, nil
}

func (a App) handleMutation(msg mutationMsg) App {
	switch {
	case msg.ignored:
		a.setStatus("nothing to move")
	case msg.err != nil:
		a.setError(msg.action, msg.err)
	case msg.op != nil:
		a.setStatus(fmt.Sprintf("%s done", msg.op.Type))
	default:
		a.setStatus(msg.action + " done")
	}

	a.rebuild(false)
	if msg.selectID != "" {
		if i := rowIndex(a.rows, msg.selectID); i >= 0 {
			a.cursor = i
		}
	}
	return a
}

func (a App) handleSuggestion(msg suggestionMsg) App {
	if msg.err != nil {
		a.setError("AI suggestion", msg.err)
		return a
	}

	tree := a.session.Tree()
	n := model.Find(tree, msg.nodeID)
	if n == nil {
		return a
	}

	folder := model.FolderByPath(tree, msg.suggestion.FolderPath)
	if folder == nil || msg.suggestion.IsNewFolder {
		a.setStatus(fmt.Sprintf("AI suggests new folder %s", msg.suggestion.FolderPath))
		return a
	}
	if n.ParentID != nil && *n.ParentID == folder.ID {
		a.setStatus(fmt.Sprintf("already in %s", msg.suggestion.FolderPath))
		return a
	}

	a.status = ""
	a.mode = ModeConfirmSuggest
	a.suggest = suggestState{node: n, folder: folder, suggestion: msg.suggestion}
	return a
}

// applyQuery runs a filter pass for query if it changed.
func (a *App) applyQuery(query string) {
	if query == a.filter.Query {
		return
	}
	wasSearching := a.filter.Searching()
	a.filter.SetQuery(query)
	if !wasSearching && a.filter.Searching() {
		a.filter.ExpandAll = a.settings.ExpandAll
	}
	a.rebuild(true)
	a.cursor = 0
}

// clearQuery drops the search, collapsing every folder again.
func (a *App) clearQuery() {
	a.debounceSeq++
	a.searchInput.Reset()
	a.applyQuery("")
}

func (a *App) toggleExpandAll() {
	if a.filter.Searching() {
		a.filter.ToggleExpandAll()
		a.rebuild(true)
		return
	}

	if len(a.expanded) > 0 {
		a.expanded = map[string]bool{}
	} else {
		a.expanded = folderIDs(a.display)
	}
	a.refreshRows()
}

// refreshRows recomputes rows after a manual expansion change.
func (a *App) refreshRows() {
	selectedID := ""
	if n := a.Selected(); n != nil {
		selectedID = n.ID
	}
	a.rows = visibleRows(a.display, a.expanded, a.titles)
	a.restoreCursor(selectedID)
}

func (a App) expandOrOpen() (tea.Model, tea.Cmd) {
	if a.cursor >= len(a.rows) {
		return a, nil
	}
	row := a.rows[a.cursor]
	if !row.IsFolder() {
		a.open(row.Node)
		return a, nil
	}
	if a.expanded[row.ID()] {
		delete(a.expanded, row.ID())
	} else {
		a.expanded[row.ID()] = true
	}
	a.refreshRows()
	return a, nil
}

func (a *App) collapseOrParent() {
	if a.cursor >= len(a.rows) {
		return
	}
	row := a.rows[a.cursor]
	if row.IsFolder() && a.expanded[row.ID()] {
		delete(a.expanded, row.ID())
		a.refreshRows()
		return
	}
	if row.Node.ParentID != nil {
		if i := rowIndex(a.rows, *row.Node.ParentID); i >= 0 {
			a.cursor = i
		}
	}
}

func (a *App) open(n *model.Node) {
	if err := a.openURL(n.URL); err != nil {
		a.setError("open URL", err)
		return
	}
	a.setStatus("opened " + n.URL)
}

func (a App) dropGrabbed(edge dnd.Edge) (tea.Model, tea.Cmd) {
	if a.grabbedID == "" {
		a.setStatus("nothing grabbed, press x on a row first")
		return a, nil
	}
	target := a.Selected()
	if target == nil || target.IsTemporary {
		return a, nil
	}
	sourceID := a.grabbedID
	a.grabbedID = ""
	return a, a.dropCmd(sourceID, target.ID, edge)
}

func (a App) openMovePicker() (tea.Model, tea.Cmd) {
	n := a.Selected()
	if n == nil || n.IsTemporary {
		return a, nil
	}

	// A folder cannot move into itself or its descendants
	exclude := subtreeIDs(n)
	var folders []model.FolderPath
	for _, f := range model.Folders(a.session.Tree()) {
		if !exclude[f.ID] {
			folders = append(folders, f)
		}
	}
	var recent []model.FolderPath
	for _, f := range a.session.RecentFolders() {
		if !exclude[f.ID] {
			recent = append(recent, f)
		}
	}

	a.picker = picker.New(picker.Params{
		Title:   fmt.Sprintf("Move %q to", a.title(n)),
		Folders: folders,
		Recent:  recent,
		MaxRows: a.layoutConfig.Modal.PickerMaxVisible,
	})
	a.picker, _ = a.picker.UpdatePicker(tea.WindowSizeMsg{
		Width:  layout.CalculateModalWidth(a.width, a.layoutConfig.Modal),
		Height: a.height,
	})
	a.moveID = n.ID
	a.mode = ModeMove
	return a, a.picker.Init()
}

func (a App) requestSuggestion() (tea.Model, tea.Cmd) {
	n := a.Selected()
	if n == nil || n.IsTemporary {
		return a, nil
	}
	if a.suggester == nil {
		a.setStatus("AI suggestions need ANTHROPIC_API_KEY")
		return a, nil
	}
	if stored := model.Find(a.session.Tree(), n.ID); stored != nil {
		n = stored
	}
	a.setStatus("asking AI for a folder...")
	return a, a.suggestCmd(n)
}

func (a App) startNewFolder() (tea.Model, tea.Cmd) {
	if a.placeholder != nil {
		return a, nil
	}

	var parentID *string
	if n := a.Selected(); n != nil {
		if n.IsTemporary {
			return a, nil
		}
		if n.IsFolder() {
			id := n.ID
			parentID = &id
		} else {
			parentID = n.ParentID
		}
	}

	a.placeholder = model.NewTemporaryFolder(parentID)
	a.rebuild(false)
	if i := rowIndex(a.rows, a.placeholder.ID); i >= 0 {
		a.cursor = i
	}
	a.mode = ModeNewFolder
	a.folderInput.Reset()
	cmd := a.folderInput.Focus()
	return a, cmd
}

func (a *App) cancelNewFolder() {
	a.mode = ModeNormal
	a.folderInput.Blur()
	a.placeholder = nil
	a.rebuild(false)
}

// viewport returns the first visible row and the number of visible rows.
func (a App) viewport() (offset, visible int) {
	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	visible = layout.CalculateVisibleHeight(paneHeight, 0)
	offset = layout.CalculateViewportOffset(a.cursor, len(a.rows), visible)
	return offset, visible
}

// rowAt maps a terminal line to a row index.
func (a App) rowAt(y int) (int, bool) {
	offset, visible := a.viewport()
	return layout.RowAtY(y, rowsTop, offset, visible, len(a.rows))
}

// rowLine returns the terminal line a row is drawn on.
func (a App) rowLine(row int) int {
	offset, _ := a.viewport()
	return rowsTop + row - offset
}
