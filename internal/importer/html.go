package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nikbrunner/bm/internal/model"
	"golang.org/x/net/html"
)

// ParseHTMLBookmarks parses Netscape bookmark HTML into a node tree.
// Document order is kept. Nodes carry generated ids and no parent or index;
// the store assigns those when the tree is imported.
func ParseHTMLBookmarks(r io.Reader) ([]*model.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := model.NewFolder(model.NewFolderParams{})

	// Stack of folders whose DL we are inside; root is always at the bottom
	stack := []*model.Node{root}
	var pendingFolder *model.Node // folder waiting to be pushed on next DL

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			current := stack[len(stack)-1]

			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name != "" {
					folder := model.NewFolder(model.NewFolderParams{
						ID:    model.GenerateID(),
						Title: name,
					})
					folder.DateAdded = parseDate(getAttr(n, "add_date"))
					current.Children = append(current.Children, folder)

					// Pushed when we see the next DL
					pendingFolder = folder
				}
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href
				}

				bookmark := model.NewBookmark(model.NewBookmarkParams{
					ID:    model.GenerateID(),
					Title: title,
					URL:   href,
				})
				bookmark.DateAdded = parseDate(getAttr(n, "add_date"))
				current.Children = append(current.Children, bookmark)
				return

			case "dl":
				pushed := false
				if pendingFolder != nil {
					stack = append(stack, pendingFolder)
					pendingFolder = nil
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					stack = stack[:len(stack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return root.Children, nil
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	t := time.Unix(ts, 0)
	return &t
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
