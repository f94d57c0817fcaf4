package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the tree browser.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Expand     key.Binding
	Collapse   key.Binding
	ExpandAll  key.Binding
	Search     key.Binding
	Grab       key.Binding
	DropAfter  key.Binding
	DropBefore key.Binding
	Move       key.Binding
	Suggest    key.Binding
	AddFolder  key.Binding
	Delete     key.Binding
	YankURL    key.Binding
	Open       key.Binding
	Cancel     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "go to bottom"),
		),
		Expand: key.NewBinding(
			key.WithKeys("l", "right", "enter"),
			key.WithHelp("l/enter", "toggle folder / open"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h", "collapse / parent"),
		),
		ExpandAll: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "expand all"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Grab: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "grab"),
		),
		DropAfter: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "drop below / into"),
		),
		DropBefore: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "drop above / into"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move to folder"),
		),
		Suggest: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "AI suggest folder"),
		),
		AddFolder: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "new folder"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		YankURL: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "yank URL"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HelpBindings returns the bindings listed in the help overlay, in order.
func (k KeyMap) HelpBindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Top, k.Bottom, k.Expand, k.Collapse, k.ExpandAll,
		k.Search, k.Grab, k.DropAfter, k.DropBefore, k.Move, k.Suggest,
		k.AddFolder, k.Delete, k.YankURL, k.Open, k.Cancel, k.Quit,
	}
}
