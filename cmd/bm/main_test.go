package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// testConfig writes a config pointing the database and log into a temp dir.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "db_path: " + filepath.Join(dir, "bookmarks.db") + "\n" +
		"log_file: " + filepath.Join(dir, "bm.log") + "\n" +
		"debounce: 0s\n"
	assert.NilError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

// bm runs the CLI with args and returns its trimmed output.
func bm(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	e := &env{}
	defer e.close()
	cmd := newRootCmd(e)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func mustBM(t *testing.T, configPath string, args ...string) string {
	t.Helper()
	out, err := bm(t, configPath, args...)
	assert.NilError(t, err, out)
	return out
}

func TestCLI_EmptyTree(t *testing.T) {
	cfg := testConfig(t)
	assert.Equal(t, mustBM(t, cfg, "tree"), "(no bookmarks)")
}

func TestCLI_MkdirAddTree(t *testing.T) {
	cfg := testConfig(t)

	devID := mustBM(t, cfg, "mkdir", "Development")
	mustBM(t, cfg, "mkdir", "Go", "--parent", "/Development")
	mustBM(t, cfg, "add", "https://go.dev/doc", "Go Docs", "--parent", "/Development/Go")
	mustBM(t, cfg, "add", "https://github.com", "GitHub")

	out := mustBM(t, cfg, "tree")
	assert.DeepEqual(t, out, strings.Join([]string{
		"Development/",
		"  Go/",
		"    Go Docs  https://go.dev/doc",
		"GitHub  https://github.com",
	}, "\n"))

	out = mustBM(t, cfg, "tree", "--ids")
	assert.Check(t, is.Contains(out, "["+devID+"]"))
}

func TestCLI_MkdirErrors(t *testing.T) {
	cfg := testConfig(t)

	_, err := bm(t, cfg, "mkdir", "  ")
	assert.Check(t, err != nil)

	_, err = bm(t, cfg, "mkdir", "Go", "--parent", "/Missing")
	assert.Check(t, err != nil)
}

func TestCLI_Search(t *testing.T) {
	cfg := testConfig(t)
	mustBM(t, cfg, "mkdir", "Development")
	mustBM(t, cfg, "mkdir", "Go", "--parent", "/Development")
	mustBM(t, cfg, "add", "https://go.dev/doc", "Go Docs", "--parent", "/Development/Go")
	mustBM(t, cfg, "add", "https://github.com", "GitHub")

	// Go matches by title: kept closed under its opened ancestor
	assert.Equal(t, mustBM(t, cfg, "search", "go"), "Development/\n  Go/")

	assert.Equal(t, mustBM(t, cfg, "search", "go", "--markup"), "Development/\n  <b>Go</b>/")

	// Expand-all ignores matching
	out := mustBM(t, cfg, "search", "go", "--expand-all")
	assert.DeepEqual(t, out, strings.Join([]string{
		"Development/",
		"  Go/",
		"    Go Docs  https://go.dev/doc",
		"GitHub  https://github.com",
	}, "\n"))

	assert.Equal(t, mustBM(t, cfg, "search", "zzz"), "(no matches)")
	assert.Equal(t, mustBM(t, cfg, "search", "\xff"), "(no matches)")
}

func TestCLI_TitleWithLiteralMarkup(t *testing.T) {
	cfg := testConfig(t)
	mustBM(t, cfg, "add", "https://developer.mozilla.org/b", "The <b> element")

	line := "The <b> element  https://developer.mozilla.org/b"
	assert.Equal(t, mustBM(t, cfg, "tree"), line)
	assert.Equal(t, mustBM(t, cfg, "search", "element"), line)
	assert.Equal(t, mustBM(t, cfg, "search", "element", "--markup"), "The <b> <b>element</b>  https://developer.mozilla.org/b")
}

func TestCLI_Move(t *testing.T) {
	cfg := testConfig(t)
	mustBM(t, cfg, "mkdir", "Development")
	a := mustBM(t, cfg, "add", "https://a.example", "a", "--parent", "/Development")
	b := mustBM(t, cfg, "add", "https://b.example", "b", "--parent", "/Development")
	top := mustBM(t, cfg, "add", "https://top.example", "top")

	// Into a folder appends
	out := mustBM(t, cfg, "move", top, "/Development")
	assert.Check(t, is.Contains(out, "bookmark-move"))

	// Above a bookmark reorders
	mustBM(t, cfg, "move", b, a, "--edge", "top")
	assert.DeepEqual(t, mustBM(t, cfg, "tree"), strings.Join([]string{
		"Development/",
		"  b  https://b.example",
		"  a  https://a.example",
		"  top  https://top.example",
	}, "\n"))

	// Back to the top level
	mustBM(t, cfg, "move", top, "root")
	assert.DeepEqual(t, mustBM(t, cfg, "tree"), strings.Join([]string{
		"Development/",
		"  b  https://b.example",
		"  a  https://a.example",
		"top  https://top.example",
	}, "\n"))

	// Onto itself nothing happens
	assert.Equal(t, mustBM(t, cfg, "move", a, a), "nothing to move")

	_, err := bm(t, cfg, "move", a, b, "--edge", "middle")
	assert.Check(t, err != nil)
}

func TestCLI_MoveFolderIntoOwnSubtreeFails(t *testing.T) {
	cfg := testConfig(t)
	mustBM(t, cfg, "mkdir", "Development")
	mustBM(t, cfg, "mkdir", "Go", "--parent", "/Development")

	_, err := bm(t, cfg, "move", "/Development", "/Development/Go")
	assert.Check(t, err != nil)
	assert.Equal(t, mustBM(t, cfg, "tree"), "Development/\n  Go/")
}

func TestCLI_Rm(t *testing.T) {
	cfg := testConfig(t)
	mustBM(t, cfg, "mkdir", "Development")
	mustBM(t, cfg, "add", "https://a.example", "a", "--parent", "/Development")

	assert.Equal(t, mustBM(t, cfg, "rm", "/Development"), "deleted Development")
	assert.Equal(t, mustBM(t, cfg, "tree"), "(no bookmarks)")

	_, err := bm(t, cfg, "rm", "nope")
	assert.Check(t, err != nil)
}

func TestCLI_ImportExport(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()

	input := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3>Development</H3>
    <DL><p>
        <DT><A HREF="https://go.dev">Go</A>
    </DL><p>
    <DT><A HREF="https://github.com">GitHub</A>
</DL><p>`
	inputPath := filepath.Join(dir, "in.html")
	assert.NilError(t, os.WriteFile(inputPath, []byte(input), 0644))

	assert.Equal(t, mustBM(t, cfg, "import", inputPath), "Imported 2 bookmarks, 1 folders")

	outputPath := filepath.Join(dir, "out.html")
	assert.Equal(t, mustBM(t, cfg, "export", outputPath), "Exported 2 bookmarks, 1 folders to "+outputPath)

	data, err := os.ReadFile(outputPath)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(string(data), `<A HREF="https://go.dev" ADD_DATE=`))
	assert.Check(t, is.Contains(string(data), `>Development</H3>`))
}

func TestCLI_Config(t *testing.T) {
	cfg := testConfig(t)

	assert.Equal(t, mustBM(t, cfg, "config", "--path"), cfg)

	out := mustBM(t, cfg, "config")
	assert.Check(t, is.Contains(out, "confirm_delete: true"))
	assert.Check(t, is.Contains(out, "debounce: 0s"))
}

func TestCLI_SuggestNeedsKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := testConfig(t)
	id := mustBM(t, cfg, "add", "https://a.example", "a")

	_, err := bm(t, cfg, "suggest", id)
	assert.Check(t, err != nil)
}
