package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// TavilySearch is the primary web search tool.
type TavilySearch struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

var _ Tool = &TavilySearch{}

func NewTavilySearch(apiKey string) *TavilySearch {
	return &TavilySearch{
		APIKey:  apiKey,
		BaseURL: tavilyEndpoint,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *TavilySearch) Name() string { return "tavily_search" }

func (t *TavilySearch) Description() string {
	return "Search the web. Args: query (string), max_results (int, default 5)."
}

type tavilyArgs struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	Topic      string `json:"topic"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (t *TavilySearch) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var in tavilyArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("tavily_search: decode args: %w", err)
	}
	if in.Query == "" {
		return "", fmt.Errorf("tavily_search: query is required")
	}
	if in.MaxResults <= 0 {
		in.MaxResults = 5
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:     t.APIKey,
		Query:      in.Query,
		MaxResults: in.MaxResults,
		Topic:      "general",
	})
	if err != nil {
		return "", fmt.Errorf("tavily_search: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("tavily_search: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Sprintf("Search error: %v", err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Sprintf("Search error: status %d: %s", resp.StatusCode, string(body)), nil
	}

	var out tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Sprintf("Search error: decode response: %v", err), nil
	}
	if len(out.Results) == 0 {
		return "No results found.", nil
	}

	parts := make([]string, 0, len(out.Results))
	for _, r := range out.Results {
		parts = append(parts, fmt.Sprintf("**%s**\nURL: %s\n%s", r.Title, r.URL, r.Content))
	}
	return strings.Join(parts, "\n---\n"), nil
}
