package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bm/internal/model"
)

func strPtr(s string) *string { return &s }

func testTree() []*model.Node {
	return []*model.Node{
		model.NewFolder(model.NewFolderParams{ID: "dev", Title: "Development", Children: []*model.Node{
			model.NewFolder(model.NewFolderParams{ID: "go", ParentID: strPtr("dev"), Title: "Go", Children: []*model.Node{
				model.NewBookmark(model.NewBookmarkParams{ID: "docs", ParentID: strPtr("go"), Title: "Go Docs", URL: "https://go.dev"}),
			}}),
			model.NewBookmark(model.NewBookmarkParams{ID: "gh", ParentID: strPtr("dev"), Title: "GitHub", URL: "https://github.com"}),
		}}),
		model.NewBookmark(model.NewBookmarkParams{ID: "hn", Title: "Hacker News", URL: "https://news.ycombinator.com"}),
	}
}

func TestBuildContext(t *testing.T) {
	got := BuildContext(testTree())

	assert.Check(t, is.Contains(got, "/Development\n  - \"GitHub\"\n"))
	assert.Check(t, is.Contains(got, "/Development/Go\n  - \"Go Docs\"\n"))
	assert.Check(t, !strings.Contains(got, "Hacker News"))
}

func TestNewClient_RequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewClient(Params{})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	c, err := NewClient(Params{})
	assert.NilError(t, err)
	assert.Equal(t, c.apiKey, "from-env")
	assert.Equal(t, c.model, DefaultModel)
}

func TestSuggestFolder(t *testing.T) {
	var got apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.URL.Path, messagesPath)
		assert.Equal(t, r.Header.Get("x-api-key"), "test-key")
		assert.Equal(t, r.Header.Get("anthropic-version"), apiVersion)
		assert.NilError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(apiResponse{
			Content: []contentBlock{{
				Type: "text",
				Text: `{"folderPath":"/Development/Go","isNewFolder":false,"confidence":"high"}`,
			}},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Params{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"})
	assert.NilError(t, err)

	tree := testTree()
	n := model.Find(tree, "gh")
	suggestion, err := c.SuggestFolder(context.Background(), n, model.ParentPath(tree, "gh"), BuildContext(tree))
	assert.NilError(t, err)

	assert.Equal(t, suggestion.FolderPath, "/Development/Go")
	assert.Check(t, !suggestion.IsNewFolder)
	assert.Equal(t, suggestion.Confidence, "high")

	assert.Equal(t, got.Model, "test-model")
	assert.Assert(t, is.Len(got.Messages, 1))
	assert.Check(t, is.Contains(got.Messages[0].Content, "Analyze this bookmark"))
	assert.Check(t, is.Contains(got.Messages[0].Content, "- URL: https://github.com"))
	assert.Check(t, is.Contains(got.Messages[0].Content, "- Current folder: /Development"))
}

func TestSuggestFolder_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "http error", status: http.StatusTooManyRequests, body: `{"error":"slow down"}`, want: ErrAPIRequest},
		{name: "no content", status: http.StatusOK, body: `{"content":[]}`, want: ErrInvalidResponse},
		{name: "empty path", status: http.StatusOK, body: `{"content":[{"type":"text","text":"{\"folderPath\":\"\"}"}]}`, want: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(Params{APIKey: "k", BaseURL: srv.URL})
			assert.NilError(t, err)

			n := model.NewBookmark(model.NewBookmarkParams{ID: "x", Title: "x", URL: "https://x"})
			_, err = c.SuggestFolder(context.Background(), n, "/", "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
