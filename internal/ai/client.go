package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nikbrunner/bm/internal/model"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	messagesPath   = "/v1/messages"
	apiVersion     = "2023-06-01"
	betaHeader     = "structured-outputs-2025-11-13"
	DefaultModel   = "claude-haiku-4-5-20251001"
)

var (
	ErrNoAPIKey        = errors.New("ANTHROPIC_API_KEY environment variable not set")
	ErrAPIRequest      = errors.New("API request failed")
	ErrInvalidResponse = errors.New("invalid API response")
)

// Client handles communication with the Anthropic API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Params holds parameters for creating a Client.
type Params struct {
	APIKey     string // defaults to $ANTHROPIC_API_KEY
	BaseURL    string // defaults to the Anthropic API
	Model      string // defaults to DefaultModel
	HTTPClient *http.Client
}

// NewClient creates a new AI client.
// Returns ErrNoAPIKey if no key is given and ANTHROPIC_API_KEY is not set.
func NewClient(params Params) (*Client, error) {
	apiKey := params.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(params.BaseURL, "/"),
		model:      params.Model,
		httpClient: params.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return c, nil
}

// SuggestFolder asks the model which folder a node belongs in.
// treeContext is the output of BuildContext for the current tree.
func (c *Client) SuggestFolder(ctx context.Context, n *model.Node, currentPath, treeContext string) (*FolderSuggestion, error) {
	reqBody := apiRequest{
		Model:     c.model,
		MaxTokens: 256,
		Messages: []apiMessage{
			{Role: "user", Content: buildFolderPrompt(n, currentPath, treeContext)},
		},
		OutputFormat: &outputFormat{
			Type: "json_schema",
			Schema: jsonSchema{
				Type: "object",
				Properties: map[string]schemaProp{
					"folderPath":  {Type: "string"},
					"isNewFolder": {Type: "boolean"},
					"confidence":  {Type: "string"},
				},
				Required:             []string{"folderPath", "isNewFolder", "confidence"},
				AdditionalProperties: false,
			},
		},
	}

	text, err := c.send(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	var result FolderSuggestion
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("unmarshal AI response: %w", err)
	}
	if result.FolderPath == "" {
		return nil, fmt.Errorf("%w: empty folder path", ErrInvalidResponse)
	}

	return &result, nil
}

// send posts a messages request and returns the text of the first content block.
func (c *Client) send(ctx context.Context, reqBody apiRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("anthropic-beta", betaHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPIRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrAPIRequest, resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(apiResp.Content) == 0 || apiResp.Content[0].Type != "text" {
		return "", ErrInvalidResponse
	}

	return apiResp.Content[0].Text, nil
}

func buildFolderPrompt(n *model.Node, currentPath, treeContext string) string {
	urlStr := ""
	if n.URL != "" {
		urlStr = fmt.Sprintf("\n- URL: %s", n.URL)
	}

	return fmt.Sprintf(`Analyze this %s and suggest the folder it belongs in.

Item:
- Title: %s%s
- Current folder: %s

%s

Instructions:
- Prefer existing folders when they fit well
- Only suggest a new folder path if nothing existing is appropriate
- Set isNewFolder=true only when suggesting a folder that doesn't exist
- If current location is already optimal, return the current path exactly
- Confidence: "high" if clear match, "medium" if reasonable, "low" if uncertain`,
		n.Kind, n.Title, urlStr, currentPath, treeContext)
}
