// Package picker is a fuzzy folder chooser used as the "move to folder"
// destination prompt.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/bm/internal/model"
	"github.com/nikbrunner/bm/internal/search"
	"github.com/nikbrunner/bm/internal/tui/layout"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	recentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)
)

// Item is one row in the picker.
type Item struct {
	Folder         model.FolderPath
	Recent         bool
	MatchedIndexes []int
}

// Params holds parameters for creating a Picker.
type Params struct {
	Title      string
	Folders    []model.FolderPath
	Recent     []model.FolderPath // listed first while the query is empty
	QuitOnDone bool               // return tea.Quit on select/cancel (standalone program)
	MaxRows    int
}

// Picker lets the user narrow folders with a fuzzy query and pick one.
type Picker struct {
	title      string
	input      textinput.Model
	folders    []model.FolderPath
	recent     []model.FolderPath
	items      []Item
	cursor     int
	selected   bool
	cancelled  bool
	quitOnDone bool
	maxRows    int
	width      int
}

// New creates a Picker showing all folders, recent ones first.
func New(params Params) Picker {
	input := textinput.New()
	input.Placeholder = "filter folders"
	input.Prompt = "/ "
	input.Focus()

	title := params.Title
	if title == "" {
		title = "Move to folder"
	}
	maxRows := params.MaxRows
	if maxRows <= 0 {
		maxRows = 10
	}

	p := Picker{
		title:      title,
		input:      input,
		folders:    params.Folders,
		recent:     params.Recent,
		quitOnDone: params.QuitOnDone,
		maxRows:    maxRows,
		width:      80,
	}
	p.refresh()
	return p
}

// refresh rebuilds the visible items from the current query.
func (p *Picker) refresh() {
	query := strings.TrimSpace(p.input.Value())
	p.items = nil

	if query == "" {
		seen := make(map[string]bool)
		for _, f := range p.recent {
			p.items = append(p.items, Item{Folder: f, Recent: true})
			seen[f.ID] = true
		}
		for _, f := range p.folders {
			if !seen[f.ID] {
				p.items = append(p.items, Item{Folder: f})
			}
		}
	} else {
		for _, r := range search.FuzzySearchFolders(p.folders, query) {
			p.items = append(p.items, Item{Folder: r.Folder, MatchedIndexes: r.MatchedIndexes})
		}
	}

	if p.cursor >= len(p.items) {
		p.cursor = max(len(p.items)-1, 0)
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return p.update(msg)
}

// UpdatePicker is Update for callers embedding the picker in their own model.
func (p Picker) UpdatePicker(msg tea.Msg) (Picker, tea.Cmd) {
	return p.update(msg)
}

func (p Picker) update(msg tea.Msg) (Picker, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		return p, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			p.cancelled = true
			return p, p.done()

		case tea.KeyEnter:
			if len(p.items) == 0 {
				return p, nil
			}
			p.selected = true
			return p, p.done()

		case tea.KeyDown, tea.KeyCtrlN, tea.KeyTab:
			if p.cursor < len(p.items)-1 {
				p.cursor++
			}
			return p, nil

		case tea.KeyUp, tea.KeyCtrlP, tea.KeyShiftTab:
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		}
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.cursor = 0
		p.refresh()
	}
	return p, cmd
}

func (p Picker) done() tea.Cmd {
	if p.quitOnDone {
		return tea.Quit
	}
	return nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d folders)", p.title, len(p.items))))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	start, end := layout.CalculateVisibleListItems(p.maxRows, p.cursor, len(p.items))

	for i := start; i < end; i++ {
		item := p.items[i]
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		b.WriteString(cursor)
		b.WriteString(renderPath(item.Folder.Path, item.MatchedIndexes, style))
		if item.Recent {
			b.WriteString(" ")
			b.WriteString(recentStyle.Render("recent"))
		}
		b.WriteString("\n")
	}

	if len(p.items) == 0 {
		b.WriteString(recentStyle.Render("  no matching folders"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("↑/↓: move  Enter: select  Esc: cancel"))

	return b.String()
}

func renderPath(path string, matched []int, style lipgloss.Style) string {
	if len(matched) == 0 {
		return style.Render(path)
	}

	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range path {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(style.Render(string(r)))
		}
	}
	return b.String()
}

// Selected returns the chosen folder, or nil if cancelled or still open.
func (p Picker) Selected() *model.FolderPath {
	if p.cancelled || !p.selected || p.cursor >= len(p.items) {
		return nil
	}
	f := p.items[p.cursor].Folder
	return &f
}

// Done returns true once the user selected or cancelled.
func (p Picker) Done() bool {
	return p.selected || p.cancelled
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}

// Items returns the rows currently listed.
func (p Picker) Items() []Item {
	return p.items
}
