package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bm/internal/filter"
	"github.com/nikbrunner/bm/internal/model"
	"github.com/nikbrunner/bm/internal/tui/layout"
)

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}

// renderView creates the complete tree view.
func (a App) renderView() string {
	switch a.mode {
	case ModeConfirmDelete, ModeMove, ModeConfirmSuggest:
		return a.renderModal()
	case ModeHelp:
		return a.renderHelpOverlay()
	}

	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	paneWidth := layout.CalculatePaneWidth(a.width, a.layoutConfig.Pane)

	content := a.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		a.renderTreePane(paneWidth, paneHeight),
		a.renderStatusLine(),
		a.renderHints(a.hints()),
	))

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader shows the search input while searching, otherwise the path of
// the folder holding the cursor row.
func (a App) renderHeader() string {
	// Terminal width minus app padding: left=2, right=2
	availableWidth := a.width - 4

	if a.mode == ModeSearch {
		return a.searchInput.View()
	}
	if a.filter.Searching() {
		header := a.styles.Breadcrumb.Render("/" + a.filter.Query)
		if a.filter.ExpandAll {
			header += " " + a.styles.Empty.Render("[expand all]")
		}
		return header
	}

	path := "bm"
	if n := a.Selected(); n != nil && n.ParentID != nil {
		path = "bm" + model.ParentPath(a.session.Tree(), n.ID)
	}
	path = layout.TruncatePathFromLeft(path, availableWidth, a.layoutConfig.Text)
	return a.styles.Breadcrumb.Render(path)
}

func (a App) renderTreePane(width, height int) string {
	var content strings.Builder

	visibleHeight := layout.CalculateVisibleHeight(height, 0)
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)

	if len(a.rows) == 0 {
		if a.filter.Searching() {
			content.WriteString(a.styles.Empty.Render("(no matches)"))
		} else {
			content.WriteString(a.styles.Empty.Render("(no bookmarks)"))
		}
	} else {
		offset := layout.CalculateViewportOffset(a.cursor, len(a.rows), visibleHeight)
		end := min(offset+visibleHeight, len(a.rows))
		for i := offset; i < end; i++ {
			content.WriteString(a.renderRow(a.rows[i], i == a.cursor, itemWidth))
			content.WriteString("\n")
		}
	}

	return a.styles.PaneActive.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

func (a App) renderRow(row Row, isCursor bool, maxWidth int) string {
	n := row.Node
	indent := strings.Repeat(" ", row.Depth*a.layoutConfig.Pane.IndentWidth)

	marker := "  "
	switch {
	case n.ID == a.grabbedID:
		marker = "» "
	case n.IsFolder() && a.expanded[n.ID]:
		marker = "▾ "
	case n.IsFolder():
		marker = "▸ "
	}

	// The placeholder row is edited in place
	if n.IsTemporary {
		return a.styles.Item.Render(indent + marker + a.folderInput.View())
	}

	if isCursor {
		line := indent + marker + row.Title
		if n.IsFolder() {
			line += "/"
		}
		line, _ = layout.TruncateText(line, maxWidth, a.layoutConfig.Text)
		return a.styles.ItemSelected.Render(layout.PadRight(line, maxWidth))
	}

	line := indent + marker + a.renderTitle(row)
	line = layout.TruncateANSIAware(line, maxWidth, a.layoutConfig.Text)

	switch {
	case a.drag.active && a.drag.overID == n.ID && a.drag.sourceID != n.ID:
		return a.styles.DropTarget.Render(layout.StripANSI(line))
	case n.ID == a.grabbedID || (a.drag.active && a.drag.sourceID == n.ID):
		return a.styles.Grabbed.Render(layout.StripANSI(line))
	}
	return a.styles.Item.Render(line)
}

// renderTitle styles a row's title, marking query matches on rows the filter
// highlighted. Titles are never parsed for markup.
func (a App) renderTitle(row Row) string {
	base := a.styles.Bookmark
	suffix := ""
	if row.IsFolder() {
		base = a.styles.Folder
		suffix = "/"
	}

	var b strings.Builder
	query := ""
	if row.Matched() {
		query = a.filter.Query
	}
	for _, seg := range filter.Segments(row.Title, query) {
		if seg.Highlight {
			b.WriteString(a.styles.Match.Render(seg.Text))
		} else {
			b.WriteString(base.Render(seg.Text))
		}
	}
	if suffix != "" {
		b.WriteString(base.Render(suffix))
	}
	return b.String()
}

// renderStatusLine shows the last status message or the tree totals.
func (a App) renderStatusLine() string {
	if a.status != "" {
		if a.statusErr {
			return a.styles.StatusError.Render("✗ " + a.status)
		}
		return a.styles.Status.Render(a.status)
	}

	folders, bookmarks := model.Count(a.session.Tree())
	return a.styles.Status.Render(fmt.Sprintf("%d folders, %d bookmarks", folders, bookmarks))
}

func (a App) renderModal() string {
	var title, content strings.Builder

	modalWidth := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal)
	modalStyle := a.styles.Modal.Width(modalWidth)

	switch a.mode {
	case ModeConfirmDelete:
		n := model.Find(a.session.Tree(), a.confirmID)
		if n == nil {
			return a.renderView()
		}
		if n.IsFolder() {
			folders, bookmarks := model.Count(n.Children)
			title.WriteString("Delete Folder\n\n")
			content.WriteString(fmt.Sprintf("Delete %q", n.Title))
			if folders+bookmarks > 0 {
				content.WriteString(fmt.Sprintf(" and the %d items inside", folders+bookmarks))
			}
			content.WriteString("?")
		} else {
			title.WriteString("Delete Bookmark\n\n")
			content.WriteString(fmt.Sprintf("Delete %q?\n", n.Title))
			content.WriteString(a.styles.Empty.Render(n.URL))
		}
		content.WriteString("\n\n")
		content.WriteString(a.renderHintsInline([]Hint{{"y", "delete"}, {"n", "cancel"}}))

	case ModeMove:
		content.WriteString(a.picker.View())

	case ModeConfirmSuggest:
		s := a.suggest
		title.WriteString("AI Suggestion\n\n")
		content.WriteString(fmt.Sprintf("Move %q to\n", s.node.Title))
		content.WriteString(a.styles.Breadcrumb.Render(s.suggestion.FolderPath))
		content.WriteString("\n")
		content.WriteString(a.styles.Empty.Render("confidence: "+s.suggestion.Confidence))
		content.WriteString("\n\n")
		content.WriteString(a.renderHintsInline([]Hint{{"y", "move"}, {"n", "cancel"}}))
	}

	modalContent := a.styles.Title.Render(title.String()) + content.String()

	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Center,
		lipgloss.Center,
		modalStyle.Render(modalContent),
	)
}

// renderHelpOverlay lists every key binding in two columns.
func (a App) renderHelpOverlay() string {
	bindings := a.keys.HelpBindings()
	half := (len(bindings) + 1) / 2

	column := func(heading string, from, to int) string {
		var b strings.Builder
		b.WriteString(a.styles.Title.Render(heading) + "\n")
		for _, binding := range bindings[from:to] {
			h := binding.Help()
			b.WriteString(a.styles.HintKey.Render(layout.PadRight(h.Key, 8)))
			b.WriteString(a.styles.HintDesc.Render(h.Desc))
			b.WriteString("\n")
		}
		return b.String()
	}

	cols := lipgloss.JoinHorizontal(lipgloss.Top,
		column("keys", 0, half),
		"    ",
		column("", half, len(bindings)),
	)
	body := cols + "\n" + a.renderHintsInline([]Hint{{"any key", "close"}})

	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(body),
	)
}
