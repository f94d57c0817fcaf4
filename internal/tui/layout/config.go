package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane  PaneConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// PaneConfig holds tree pane dimension configuration.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// Accounts for: app padding (1) + header (1) + pane borders (2) + status (1) + help bar (1) + bottom margin (1) = 7
	HeightReduction int

	// MinHeight is the minimum pane height.
	MinHeight int

	// WidthOffset is subtracted from terminal width for the pane.
	// Accounts for app padding and pane borders.
	WidthOffset int

	// MinWidth is the minimum pane width.
	MinWidth int

	// ContentPadding is subtracted from pane width for row rendering.
	ContentPadding int

	// IndentWidth is the number of columns per tree depth level.
	IndentWidth int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// WidthPercent is the modal width as percentage of terminal width.
	WidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// PickerMaxVisible: max folders shown in the move picker.
	PickerMaxVisible int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	TitleCharLimit  int
	SearchCharLimit int
	StandardWidth   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction: 7,
			MinHeight:       5,
			WidthOffset:     8,
			MinWidth:        30,
			ContentPadding:  2,
			IndentWidth:     2,
		},
		Modal: ModalConfig{
			WidthPercent:     50,
			MinWidth:         40,
			MaxWidth:         80,
			PickerMaxVisible: 8,
		},
		Input: InputConfig{
			TitleCharLimit:  100,
			SearchCharLimit: 100,
			StandardWidth:   40,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
