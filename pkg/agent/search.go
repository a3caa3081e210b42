package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Fixed tool outputs. Search failures are reported as text so the model
// can keep working with degraded information instead of aborting the run.
const (
	noResultsText = "(no search results)"

	searchUnavailableText = "(web search is unavailable because TAVILY_API_KEY is not set)\n" +
		"Set TAVILY_API_KEY in the environment to enable it."
)

// resultContentLimit bounds each result's content so tool output does not
// swamp the prompt.
const resultContentLimit = 900

// TavilyClient queries the Tavily search API and formats the top results
// for prompt consumption.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// TavilyOption configures TavilyClient.
type TavilyOption func(*TavilyClient)

// NewTavilyClient creates a search client.
func NewTavilyClient(apiKey string, opts ...TavilyOption) *TavilyClient {
	c := &TavilyClient{
		apiKey:     apiKey,
		baseURL:    "https://api.tavily.com",
		maxResults: 3,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTavilyBaseURL overrides the API endpoint.
func WithTavilyBaseURL(url string) TavilyOption {
	return func(c *TavilyClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithTavilyHTTPClient sets the underlying HTTP client.
func WithTavilyHTTPClient(hc *http.Client) TavilyOption {
	return func(c *TavilyClient) { c.httpClient = hc }
}

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
	IncludeImages     bool   `json:"include_images"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	RawContent string `json:"raw_content"`
	URL        string `json:"url"`
}

// Search runs the query and returns formatted text. Errors are captured
// as "(search error) <category>: <message>" text; Search never returns an
// error to the caller.
func (c *TavilyClient) Search(ctx context.Context, query string) string {
	body, err := json.Marshal(tavilyRequest{
		APIKey:      c.apiKey,
		Query:       query,
		MaxResults:  c.maxResults,
		SearchDepth: "basic",
	})
	if err != nil {
		return searchErrorText("encode_failed", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return searchErrorText("request_failed", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return searchErrorText("request_failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return searchErrorText("bad_status", fmt.Errorf("status %d", resp.StatusCode))
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return searchErrorText("decode_failed", err)
	}

	return formatSearchResults(parsed)
}

// searchErrorText renders a search failure as prompt-safe text.
func searchErrorText(category string, err error) string {
	return fmt.Sprintf("(search error) %s: %v", category, err)
}

// formatSearchResults renders results as numbered blocks:
//
//	[1] title
//	content (truncated)
//	source: url
//
// separated by blank lines. Content falls back to raw content when the
// summary field is empty.
func formatSearchResults(resp tavilyResponse) string {
	if len(resp.Results) == 0 {
		return noResultsText
	}

	blocks := make([]string, 0, len(resp.Results))
	for i, r := range resp.Results {
		title := strings.TrimSpace(r.Title)
		content := strings.TrimSpace(r.Content)
		if content == "" {
			content = strings.TrimSpace(r.RawContent)
		}
		content = truncateRunes(content, resultContentLimit)
		url := strings.TrimSpace(r.URL)

		blocks = append(blocks, fmt.Sprintf("[%d] %s\n%s\nsource: %s", i+1, title, content, url))
	}
	return strings.Join(blocks, "\n\n")
}

// truncateRunes caps s at limit runes, appending an ellipsis when cut.
// Counting runes keeps multi-byte text from being split mid-character.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
