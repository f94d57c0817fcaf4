package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bm/internal/ai"
	"github.com/nikbrunner/bm/internal/dnd"
	"github.com/nikbrunner/bm/internal/exporter"
	"github.com/nikbrunner/bm/internal/filter"
	"github.com/nikbrunner/bm/internal/importer"
	"github.com/nikbrunner/bm/internal/model"
	"github.com/nikbrunner/bm/internal/picker"
)

func newTreeCmd(e *env) *cobra.Command {
	var opts printOptions

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the whole bookmark tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree := e.sess.Tree()
			if len(tree) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no bookmarks)")
				return nil
			}
			printTree(cmd.OutOrStdout(), tree, func(*model.Node) bool { return true }, opts)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.ids, "ids", false, "show node ids")
	return cmd
}

func newSearchCmd(e *env) *cobra.Command {
	var (
		opts      printOptions
		expandAll bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Filter the tree by title",
		Long: `Filter the tree by a case-insensitive literal title match.

Matching bookmarks are kept with their ancestors opened. A matching folder is
kept with all of its children but stays closed unless one of its child
folders matches too. --expand-all ignores matching and prints the whole
tree open.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree := e.sess.Tree()
			state := filter.State{Query: strings.Join(args, " "), ExpandAll: expandAll}
			result := state.Apply(tree)
			if !opts.markup {
				opts.titles = model.Titles(tree)
			}

			if len(result.Tree) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no matches)")
				return nil
			}
			printTree(cmd.OutOrStdout(), result.Tree, func(n *model.Node) bool { return result.Expanded[n.ID] }, opts)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&expandAll, "expand-all", "e", false, "print the whole tree open, ignoring matches")
	cmd.Flags().BoolVar(&opts.ids, "ids", false, "show node ids")
	cmd.Flags().BoolVar(&opts.markup, "markup", false, "keep <b> highlight markup")
	return cmd
}

func newMoveCmd(e *env) *cobra.Command {
	var edgeName string

	cmd := &cobra.Command{
		Use:   "move <node> [target]",
		Short: "Move a node next to or into a target",
		Long: `Move a node the way a drop in the tree browser does.

Dropping on a folder appends the node to it. Dropping on a bookmark places
the node above (--edge top) or below (--edge bottom) it. The target "root"
moves the node to the end of the top level. Without a target a folder
picker opens.`,
		Example: `  bm move 3f2a... /Development/Go
  bm move 3f2a... 9bc1... --edge top
  bm move /Archive root`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			edge, ok := dnd.ParseEdge(edgeName)
			if !ok {
				return fmt.Errorf("invalid edge %q, want top or bottom", edgeName)
			}

			tree := e.sess.Tree()
			source, err := resolveNode(tree, args[0])
			if err != nil {
				return err
			}

			var targetID string
			switch {
			case len(args) == 2 && args[1] == dnd.RootID:
				return moveToRoot(cmd, e, source)
			case len(args) == 2:
				target, err := resolveNode(tree, args[1])
				if err != nil {
					return err
				}
				targetID = target.ID
			default:
				folder, err := pickFolder(e, source)
				if err != nil || folder == nil {
					return err
				}
				targetID = folder.ID
			}

			op, applied, err := e.sess.Drop(cmd.Context(), source.ID, targetID, edge)
			if err != nil {
				return err
			}
			if !applied {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to move")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", op.Type, source.Title, model.ParentPath(e.sess.Tree(), source.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&edgeName, "edge", "bottom", "drop edge on a bookmark target: top or bottom")
	return cmd
}

func moveToRoot(cmd *cobra.Command, e *env, source *model.Node) error {
	op := dnd.Operation{
		Type:           dnd.BookmarkReorder,
		SourceID:       source.ID,
		SourceParentID: source.ParentOr(dnd.RootID),
		SourceIndex:    source.IndexOr(0),
		TargetID:       dnd.RootID,
		TargetParentID: dnd.RootID,
		TargetIndex:    len(e.sess.Tree()),
	}
	if source.IsFolder() {
		op.Type = dnd.FolderReorder
	}

	if _, err := e.sess.Apply(cmd.Context(), op); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> /\n", op.Type, source.Title)
	return nil
}

// pickFolder runs the folder picker for source. Returns nil when cancelled.
func pickFolder(e *env, source *model.Node) (*model.FolderPath, error) {
	exclude := map[string]bool{}
	model.Walk([]*model.Node{source}, func(n *model.Node, _ int) bool {
		exclude[n.ID] = true
		return true
	})

	var folders []model.FolderPath
	for _, f := range model.Folders(e.sess.Tree()) {
		if !exclude[f.ID] {
			folders = append(folders, f)
		}
	}

	p := picker.New(picker.Params{
		Title:      fmt.Sprintf("Move %q to", source.Title),
		Folders:    folders,
		Recent:     e.sess.RecentFolders(),
		QuitOnDone: true,
	})
	final, err := tea.NewProgram(p).Run()
	if err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}
	return final.(picker.Picker).Selected(), nil
}

func newMkdirCmd(e *env) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "mkdir <title>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := resolveParent(e.sess.Tree(), parent)
			if err != nil {
				return err
			}
			folder, err := e.sess.CreateFolder(cmd.Context(), model.NewTemporaryFolder(parentID), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), folder.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent folder id or path")
	return cmd
}

func newAddCmd(e *env) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "add <url> [title]",
		Short: "Add a bookmark",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := resolveParent(e.sess.Tree(), parent)
			if err != nil {
				return err
			}
			url := args[0]
			title := url
			if len(args) == 2 {
				title = args[1]
			}
			bookmark, err := e.sess.CreateBookmark(cmd.Context(), parentID, title, url)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), bookmark.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent folder id or path")
	return cmd
}

func newRmCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <node>",
		Short: "Delete a bookmark or a folder with everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := resolveNode(e.sess.Tree(), args[0])
			if err != nil {
				return err
			}
			if err := e.sess.Delete(cmd.Context(), n.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", n.Title)
			return nil
		},
	}
}

func newImportCmd(e *env) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "import <file.html>",
		Short: "Import bookmarks from a Netscape bookmark HTML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := resolveParent(e.sess.Tree(), parent)
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer file.Close()

			nodes, err := importer.ParseHTMLBookmarks(file)
			if err != nil {
				return fmt.Errorf("parse HTML: %w", err)
			}

			folders, bookmarks, err := e.sess.Import(cmd.Context(), nodes, parentID)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bookmarks, %d folders\n", bookmarks, folders)
			return err
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "import into this folder (id or path)")
	return cmd
}

func newExportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Export bookmarks to a Netscape bookmark HTML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var outputPath string
			if len(args) == 1 {
				outputPath = args[0]
			} else {
				var err error
				outputPath, err = exporter.DefaultExportPath()
				if err != nil {
					return fmt.Errorf("default export path: %w", err)
				}
			}

			tree := e.sess.Tree()
			if err := os.WriteFile(outputPath, []byte(exporter.ExportHTML(tree)), 0644); err != nil {
				return fmt.Errorf("write file: %w", err)
			}

			folders, bookmarks := model.Count(tree)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks, %d folders to %s\n", bookmarks, folders, outputPath)
			return nil
		},
	}
}

func newSuggestCmd(e *env) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "suggest <node>",
		Short: "Ask AI which folder a node belongs in",
		Long: `Ask AI which folder a node belongs in.

Requires ANTHROPIC_API_KEY. With --apply the node is moved when the
suggested folder already exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ai.NewClient(ai.Params{Model: e.settings.AIModel})
			if err != nil {
				return err
			}

			tree := e.sess.Tree()
			n, err := resolveNode(tree, args[0])
			if err != nil {
				return err
			}

			s, err := client.SuggestFolder(cmd.Context(), n, model.ParentPath(tree, n.ID), ai.BuildContext(tree))
			if err != nil {
				return err
			}

			label := "existing"
			if s.IsNewFolder {
				label = "new"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s folder, %s confidence)\n", s.FolderPath, label, s.Confidence)

			if !apply {
				return nil
			}
			folder := model.FolderByPath(tree, s.FolderPath)
			if folder == nil {
				return errors.New("suggested folder does not exist, create it with bm mkdir first")
			}
			if _, _, err := e.sess.Drop(cmd.Context(), n.ID, folder.ID, dnd.EdgeBottom); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %s to %s\n", n.Title, s.FolderPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "move the node to the suggested folder")
	return cmd
}

func newConfigCmd(e *env) *cobra.Command {
	var pathOnly bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pathOnly {
				fmt.Fprintln(cmd.OutOrStdout(), e.cfg.File())
				return nil
			}
			data, err := e.settings.YAML()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", e.cfg.File(), data)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pathOnly, "path", false, "print only the config file path")
	return cmd
}
