package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// BraveSearch is the backup web search tool.
type BraveSearch struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

var _ Tool = &BraveSearch{}

func NewBraveSearch(apiKey string) *BraveSearch {
	return &BraveSearch{
		APIKey:  apiKey,
		BaseURL: braveEndpoint,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (b *BraveSearch) Name() string { return "brave_search" }

func (b *BraveSearch) Description() string {
	return "Backup web search. Args: query (string), max_results (int, default 5)."
}

type braveArgs struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (b *BraveSearch) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var in braveArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("brave_search: decode args: %w", err)
	}
	if in.Query == "" {
		return "", fmt.Errorf("brave_search: query is required")
	}
	if in.MaxResults <= 0 {
		in.MaxResults = 5
	}

	q := url.Values{}
	q.Set("q", in.Query)
	q.Set("count", strconv.Itoa(in.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("brave_search: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.APIKey)

	resp, err := b.Client.Do(req)
	if err != nil {
		return fmt.Sprintf("Search error: %v", err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Sprintf("Search error: status %d: %s", resp.StatusCode, string(body)), nil
	}

	var out braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Sprintf("Search error: decode response: %v", err), nil
	}
	if len(out.Web.Results) == 0 {
		return "No results found.", nil
	}

	parts := make([]string, 0, len(out.Web.Results))
	for _, r := range out.Web.Results {
		parts = append(parts, fmt.Sprintf("**%s**\nURL: %s\n%s", r.Title, r.URL, r.Description))
	}
	return strings.Join(parts, "\n---\n"), nil
}
