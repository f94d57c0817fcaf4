package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for the bottom bar.
func (a App) renderHints(hints []Hint) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints in inline format for modals: "Enter confirm  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// hints returns the bottom bar hints for the current mode.
func (a App) hints() []Hint {
	switch a.mode {
	case ModeSearch:
		return []Hint{{"Enter", "keep"}, {"Esc", "clear"}, {"ctrl+e", "expand all"}}
	case ModeNewFolder:
		return []Hint{{"Enter", "create"}, {"Esc", "cancel"}}
	}

	if a.grabbedID != "" {
		return []Hint{{"j/k", "move"}, {"p", "drop below"}, {"P", "drop above"}, {"Esc", "cancel"}}
	}

	hints := []Hint{{"j/k", "move"}, {"l", "open"}, {"/", "search"}}
	if a.filter.Searching() {
		hints = append(hints, Hint{"E", "expand all"}, Hint{"Esc", "clear"})
	}
	hints = append(hints,
		Hint{"x", "grab"},
		Hint{"m", "move"},
		Hint{"A", "folder"},
		Hint{"d", "delete"},
		Hint{"?", "help"},
		Hint{"q", "quit"},
	)
	return hints
}
