package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bm/internal/ai"
	"github.com/nikbrunner/bm/internal/config"
	"github.com/nikbrunner/bm/internal/logging"
	"github.com/nikbrunner/bm/internal/tui"
)

func main() {
	e := &env{}
	err := newRootCmd(e).Execute()
	e.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(e *env) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "bm",
		Short: "vim-style bookmark tree manager",
		Long: `bm - vim-style bookmark tree manager

Run without arguments to open the interactive tree browser.
Nodes are addressed by id (see "bm tree --ids") or, for folders, by path
such as /Development/Go.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd.Context(), configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, e)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/bm/config.yaml)")

	cmd.AddCommand(
		newTreeCmd(e),
		newSearchCmd(e),
		newMoveCmd(e),
		newMkdirCmd(e),
		newAddCmd(e),
		newRmCmd(e),
		newImportCmd(e),
		newExportCmd(e),
		newSuggestCmd(e),
		newConfigCmd(e),
	)
	return cmd
}

// newSuggester returns the AI client, or nil when no API key is configured.
func newSuggester(e *env) tui.FolderSuggester {
	client, err := ai.NewClient(ai.Params{Model: e.settings.AIModel})
	if err != nil {
		if !errors.Is(err, ai.ErrNoAPIKey) {
			e.log.WithError(err).Warn("AI client unavailable")
		}
		return nil
	}
	return client
}

// runTUI runs the full interactive tree browser.
func runTUI(cmd *cobra.Command, e *env) error {
	app := tui.NewApp(tui.AppParams{
		Context:   cmd.Context(),
		Session:   e.sess,
		Suggester: newSuggester(e),
		Logger:    e.log,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	log := logging.Component(e.log, "config")
	e.cfg.Watch(func(s config.Settings) {
		log.WithField("file", e.cfg.File()).Info("config changed")
		p.Send(tui.SettingsMsg(s))
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}
