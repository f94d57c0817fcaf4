package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bm/internal/config"
	"github.com/nikbrunner/bm/internal/logging"
	"github.com/nikbrunner/bm/internal/model"
	"github.com/nikbrunner/bm/internal/session"
	"github.com/nikbrunner/bm/internal/storage"
)

// env holds what every command needs. It is set up once by the root command.
type env struct {
	cfg      *config.Config
	settings config.Settings
	log      *logrus.Logger
	sess     *session.Session
	closers  []io.Closer
}

func (e *env) setup(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	e.cfg = cfg
	e.settings = cfg.Settings()

	logger, closer, err := logging.New(logging.Params{Level: e.settings.LogLevel, Path: e.settings.LogFile})
	e.log = logger
	e.closers = append(e.closers, closer)
	if err != nil {
		logger.WithError(err).Warn("log file unavailable, logging to stderr")
	}

	store, err := storage.Open(e.settings.DBPath)
	if err != nil {
		// Non-fatal: the tree shows empty and mutations fail with ErrUnavailable
		logger.WithError(err).WithField("path", e.settings.DBPath).Warn("open bookmark store")
		store = storage.Unavailable{}
	}
	if c, ok := store.(io.Closer); ok {
		e.closers = append(e.closers, c)
	}

	e.sess = session.New(session.Params{Store: store, Settings: e.settings, Logger: logger})
	_, err = e.sess.Refresh(ctx)
	return err
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
	e.closers = nil
}

// resolveNode finds a node by id, or a folder by its path ("/Development/Go").
func resolveNode(tree []*model.Node, ref string) (*model.Node, error) {
	if n := model.Find(tree, ref); n != nil {
		return n, nil
	}
	if strings.HasPrefix(ref, "/") {
		if f := model.FolderByPath(tree, ref); f != nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", ref, storage.ErrNotFound)
}

// resolveParent resolves an optional --parent flag. Empty means top level.
func resolveParent(tree []*model.Node, ref string) (*string, error) {
	if ref == "" || ref == "/" {
		return nil, nil
	}
	n, err := resolveNode(tree, ref)
	if err != nil {
		return nil, err
	}
	if !n.IsFolder() {
		return nil, fmt.Errorf("%s is not a folder", ref)
	}
	return &n.ID, nil
}

type printOptions struct {
	ids    bool
	markup bool // keep <b> highlight markup
	// titles replaces node titles by id; search output uses it to print
	// stored titles instead of highlighted ones
	titles map[string]string
}

// printTree writes one line per node, descending into folders open reports true for.
func printTree(w io.Writer, tree []*model.Node, open func(*model.Node) bool, opts printOptions) {
	model.Walk(tree, func(n *model.Node, depth int) bool {
		title := n.Title
		if t, ok := opts.titles[n.ID]; ok {
			title = t
		}

		line := strings.Repeat("  ", depth) + title
		if n.IsFolder() {
			line += "/"
		} else {
			line += "  " + n.URL
		}
		if opts.ids {
			line += "  [" + n.ID + "]"
		}
		fmt.Fprintln(w, line)

		return n.IsFolder() && open(n)
	})
}
