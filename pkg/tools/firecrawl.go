package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	firecrawlEndpoint = "https://api.firecrawl.dev/v1/scrape"
	maxScrapeChars    = 10000
	fallbackUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// FirecrawlScrape fetches the full content of a page. When the
// Firecrawl API is unavailable it degrades to a direct fetch of the
// raw page. Output is truncated to keep tool results inside the
// model's context budget.
type FirecrawlScrape struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

var _ Tool = &FirecrawlScrape{}

func NewFirecrawlScrape(apiKey string) *FirecrawlScrape {
	return &FirecrawlScrape{
		APIKey:  apiKey,
		BaseURL: firecrawlEndpoint,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (f *FirecrawlScrape) Name() string { return "firecrawl_scrape" }

func (f *FirecrawlScrape) Description() string {
	return "Scrape a web page and return its content as markdown. Args: url (string)."
}

type firecrawlArgs struct {
	URL string `json:"url"`
}

type firecrawlRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type firecrawlResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
}

func (f *FirecrawlScrape) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var in firecrawlArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("firecrawl_scrape: decode args: %w", err)
	}
	if in.URL == "" {
		return "", fmt.Errorf("firecrawl_scrape: url is required")
	}

	if f.APIKey != "" {
		if content, ok := f.scrapeAPI(ctx, in.URL); ok {
			return truncate(content, maxScrapeChars), nil
		}
	}
	return truncate(f.fetchDirect(ctx, in.URL), maxScrapeChars), nil
}

func (f *FirecrawlScrape) scrapeAPI(ctx context.Context, pageURL string) (string, bool) {
	payload, err := json.Marshal(firecrawlRequest{URL: pageURL, Formats: []string{"markdown"}})
	if err != nil {
		return "", false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.BaseURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.APIKey)

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	var out firecrawlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false
	}
	if !out.Success || out.Data.Markdown == "" {
		return "", false
	}
	return out.Data.Markdown, true
}

// fetchDirect grabs the raw page when the scraping API cannot. The
// result is uncleaned HTML; better than nothing for the model.
func (f *FirecrawlScrape) fetchDirect(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fmt.Sprintf("Scrape error: %v", err)
	}
	req.Header.Set("User-Agent", fallbackUserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Sprintf("Scrape error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Scrape error: status %d for %s", resp.StatusCode, pageURL)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*maxScrapeChars))
	if err != nil {
		return fmt.Sprintf("Scrape error: %v", err)
	}
	return string(body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "\n...[truncated]"
}
