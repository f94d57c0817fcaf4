// Package filter narrows a bookmark tree down to the nodes matching a search
// query and decides which folders the view should open.
package filter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nikbrunner/bm/internal/model"
)

// Filter returns a filtered, annotated copy of tree for query.
//
// An empty query returns tree unchanged. With forceExpandAll every folder of a
// full copy is opened and matching is skipped. Otherwise bookmarks are kept
// when their title contains query (case-insensitive) and folders are kept when
// their title matches or a descendant is kept. Matches are wrapped in <b></b>.
func Filter(tree []*model.Node, query string, forceExpandAll bool) []*model.Node {
	if query == "" {
		return tree
	}

	if forceExpandAll {
		return expandAll(tree)
	}

	m := newMatcher(query)
	return m.prune(tree)
}

// expandAll deep copies tree with every folder open.
func expandAll(tree []*model.Node) []*model.Node {
	out := model.DeepCopy(tree)
	model.Walk(out, func(n *model.Node, _ int) bool {
		if n.IsFolder() {
			n.IsOpen = true
		}
		return true
	})
	return out
}

// matcher holds the compiled case-insensitive pattern for one query.
type matcher struct {
	re *regexp.Regexp
}

func newMatcher(query string) matcher {
	return matcher{re: regexp.MustCompile("(?i)" + regexp.QuoteMeta(validUTF8(query)))}
}

// validUTF8 replaces every invalid byte of s with utf8.RuneError, the rune the
// regexp engine decodes invalid bytes of a title to.
func validUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		b.WriteRune(r)
		i += size
	}
	return b.String()
}

func (m matcher) matches(title string) bool {
	return m.re.MatchString(title)
}

func (m matcher) highlight(title string) string {
	return m.re.ReplaceAllString(title, highlightOpen+"$0"+highlightClose)
}

func (m matcher) prune(nodes []*model.Node) []*model.Node {
	result := []*model.Node{}

	for _, n := range nodes {
		if !n.IsFolder() {
			if m.matches(n.Title) {
				c := n.Clone()
				c.Title = m.highlight(n.Title)
				result = append(result, c)
			}
			continue
		}

		if m.matches(n.Title) {
			result = append(result, m.revealFolder(n))
			continue
		}

		children := m.prune(n.Children)
		if len(children) > 0 {
			c := n.Clone()
			c.Children = children
			c.IsOpen = true
			result = append(result, c)
		}
	}

	return result
}

// revealFolder handles a folder whose own title matched: all direct children
// are kept, and only child folders with matching titles are touched.
func (m matcher) revealFolder(n *model.Node) *model.Node {
	c := n.Clone()
	c.Title = m.highlight(n.Title)
	c.IsOpen = false

	for i, child := range n.Children {
		if child.IsFolder() && m.matches(child.Title) {
			cc := child.Clone()
			cc.Title = m.highlight(child.Title)
			cc.IsOpen = true
			c.Children[i] = cc
			c.IsOpen = true
		}
	}

	return c
}
