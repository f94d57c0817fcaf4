package importer_test

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bm/internal/importer"
	"github.com/nikbrunner/bm/internal/model"
)

func TestParseHTML_SingleBookmark(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`

	nodes, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	assert.NilError(t, err)
	assert.Equal(t, len(nodes), 1)

	b := nodes[0]
	assert.Equal(t, b.Kind, model.KindBookmark)
	assert.Equal(t, b.Title, "Example Site")
	assert.Equal(t, b.URL, "https://example.com")
	assert.Assert(t, b.ParentID == nil)
	assert.Assert(t, b.ID != "")
	assert.Equal(t, b.DateAdded.Unix(), int64(1234567890))
}

func TestParseHTML_NestedFolders(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1234567890">React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev" ADD_DATE="1234567890">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com" ADD_DATE="1234567890">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com" ADD_DATE="1234567890">Google</A>
</DL><p>`

	nodes, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	assert.NilError(t, err)

	assert.Equal(t, len(nodes), 2)
	dev := nodes[0]
	assert.Assert(t, dev.IsFolder())
	assert.Equal(t, dev.Title, "Development")
	assert.Equal(t, nodes[1].Title, "Google")

	assert.Equal(t, len(dev.Children), 2)
	react := dev.Children[0]
	assert.Assert(t, react.IsFolder())
	assert.Equal(t, react.Title, "React")
	assert.Equal(t, dev.Children[1].Title, "GitHub")

	assert.Equal(t, len(react.Children), 1)
	assert.Equal(t, react.Children[0].URL, "https://react.dev")

	folders, bookmarks := model.Count(nodes)
	assert.Equal(t, folders, 2)
	assert.Equal(t, bookmarks, 3)
}

func TestParseHTML_EmptyFolderHasChildren(t *testing.T) {
	html := `<DL><p>
    <DT><H3>Empty</H3>
    <DL><p>
    </DL><p>
</DL><p>`

	nodes, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	assert.NilError(t, err)
	assert.Equal(t, len(nodes), 1)
	assert.Assert(t, nodes[0].Children != nil)
	assert.Equal(t, len(nodes[0].Children), 0)
}

func TestParseHTML_SkipsBookmarksWithoutURL(t *testing.T) {
	html := `<DL><p>
    <DT><A>No URL</A>
    <DT><A HREF="https://valid.com">Valid</A>
</DL><p>`

	nodes, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	assert.NilError(t, err)
	assert.Equal(t, len(nodes), 1)
	assert.Equal(t, nodes[0].Title, "Valid")
}

func TestParseHTML_TitleFallsBackToURL(t *testing.T) {
	html := `<DL><p>
    <DT><A HREF="https://untitled.com" ADD_DATE="bogus"></A>
</DL><p>`

	nodes, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	assert.NilError(t, err)
	assert.Equal(t, len(nodes), 1)
	assert.Equal(t, nodes[0].Title, "https://untitled.com")
	assert.Assert(t, nodes[0].DateAdded == nil)
}

func TestParseHTML_CaseInsensitiveTags(t *testing.T) {
	html := `<dl><p>
    <dt><h3>lowercase folder</h3>
    <dl><p>
        <dt><a href="https://example.com">Link</a>
    </dl><p>
</dl><p>`

	nodes, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	assert.NilError(t, err)
	assert.Equal(t, len(nodes), 1)
	assert.Equal(t, nodes[0].Title, "lowercase folder")
	assert.Equal(t, len(nodes[0].Children), 1)
	assert.Equal(t, nodes[0].Children[0].Title, "Link")
}
