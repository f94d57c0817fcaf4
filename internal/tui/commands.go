package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bm/internal/ai"
	"github.com/nikbrunner/bm/internal/dnd"
	"github.com/nikbrunner/bm/internal/model"
)

// refreshCmd refetches the tree from the store.
func (a App) refreshCmd() tea.Cmd {
	sess, ctx := a.session, a.ctx
	return func() tea.Msg {
		_, err := sess.Refresh(ctx)
		return treeMsg{err: err}
	}
}

// debounceCmd schedules a filter pass for the current query.
func (a App) debounceCmd(seq int) tea.Cmd {
	return tea.Tick(a.settings.Debounce, func(time.Time) tea.Msg {
		return filterTickMsg{seq: seq}
	})
}

// dropCmd drops sourceID on targetID the way a keyboard drop zone does.
func (a App) dropCmd(sourceID, targetID string, edge dnd.Edge) tea.Cmd {
	sess, ctx := a.session, a.ctx
	return func() tea.Msg {
		op, applied, err := sess.Drop(ctx, sourceID, targetID, edge)
		if err == nil && !applied {
			return mutationMsg{action: "move", ignored: true}
		}
		return mutationMsg{action: "move", op: &op, selectID: sourceID, err: err}
	}
}

// applyCmd applies an operation resolved from a mouse drag.
func (a App) applyCmd(op dnd.Operation) tea.Cmd {
	sess, ctx := a.session, a.ctx
	return func() tea.Msg {
		_, err := sess.Apply(ctx, op)
		return mutationMsg{action: "move", op: &op, selectID: op.SourceID, err: err}
	}
}

func (a App) createFolderCmd(placeholder *model.Node, title string) tea.Cmd {
	sess, ctx := a.session, a.ctx
	return func() tea.Msg {
		folder, err := sess.CreateFolder(ctx, placeholder, title)
		msg := mutationMsg{action: "create folder", err: err}
		if folder != nil {
			msg.selectID = folder.ID
		}
		return msg
	}
}

func (a App) deleteCmd(id string) tea.Cmd {
	sess, ctx := a.session, a.ctx
	return func() tea.Msg {
		return mutationMsg{action: "delete", err: sess.Delete(ctx, id)}
	}
}

// suggestCmd asks the suggester for a destination folder of n.
func (a App) suggestCmd(n *model.Node) tea.Cmd {
	suggester, ctx := a.suggester, a.ctx
	tree := a.session.Tree()
	return func() tea.Msg {
		s, err := suggester.SuggestFolder(ctx, n, model.ParentPath(tree, n.ID), ai.BuildContext(tree))
		return suggestionMsg{nodeID: n.ID, suggestion: s, err: err}
	}
}
