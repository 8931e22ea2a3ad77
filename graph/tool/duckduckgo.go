package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// defaultBaseURL is DuckDuckGo's Instant Answer API endpoint. It returns
// abstracts, definitions, and related topics; no API key required.
const defaultBaseURL = "https://api.duckduckgo.com/"

// DuckDuckGo implements Tool using the DuckDuckGo Instant Answer API.
//
// Example usage:
//
//	ddg := tool.NewDuckDuckGo()
//	result, err := ddg.Run(ctx, "Go programming language")
type DuckDuckGo struct {
	client  *http.Client
	baseURL string
}

// DuckDuckGoOption customizes a DuckDuckGo tool.
type DuckDuckGoOption func(*DuckDuckGo)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.client = client
	}
}

// WithBaseURL overrides the API endpoint. Used in tests to point at a
// local httptest server.
func WithBaseURL(baseURL string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.baseURL = baseURL
	}
}

// NewDuckDuckGo creates a search tool backed by the Instant Answer API.
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements Tool.
func (d *DuckDuckGo) Name() string {
	return "search_web"
}

// instantAnswer is the subset of the API response the tool consumes.
type instantAnswer struct {
	AbstractText  string `json:"AbstractText"`
	Answer        string `json:"Answer"`
	Definition    string `json:"Definition"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

// Run executes a search query and returns the best available text result.
//
// Preference order: direct answer, abstract, definition, first related
// topic. An empty result set returns a "no results" message rather than an
// error, so callers can record it as an ordinary outcome.
func (d *DuckDuckGo) Run(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}

	switch {
	case answer.Answer != "":
		return answer.Answer, nil
	case answer.AbstractText != "":
		return answer.AbstractText, nil
	case answer.Definition != "":
		return answer.Definition, nil
	case len(answer.RelatedTopics) > 0 && answer.RelatedTopics[0].Text != "":
		return answer.RelatedTopics[0].Text, nil
	}

	return fmt.Sprintf("No results found for %q", query), nil
}

// Call implements Tool by delegating to Run.
func (d *DuckDuckGo) Call(ctx context.Context, input string) (string, error) {
	return d.Run(ctx, input)
}
