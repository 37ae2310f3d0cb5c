package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTavilyFormatsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req tavilyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "golang jobs" {
			t.Errorf("query = %q", req.Query)
		}
		if req.MaxResults != 8 {
			t.Errorf("max_results = %d, want 8", req.MaxResults)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]string{
				{"title": "Go Dev at Acme", "url": "https://acme.io/jobs/1", "content": "Remote role"},
				{"title": "Backend Eng", "url": "https://beta.io/jobs/2", "content": "Hybrid role"},
			},
		})
	}))
	defer srv.Close()

	tool := NewTavilySearch("key")
	tool.BaseURL = srv.URL

	out, err := tool.Call(context.Background(), json.RawMessage(`{"query":"golang jobs","max_results":8}`))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !strings.Contains(out, "**Go Dev at Acme**") {
		t.Errorf("missing title block: %q", out)
	}
	if !strings.Contains(out, "URL: https://acme.io/jobs/1") {
		t.Errorf("missing url line: %q", out)
	}
	if !strings.Contains(out, "\n---\n") {
		t.Error("results should be separated by ---")
	}
}

func TestTavilyAPIFailureIsToolOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tool := NewTavilySearch("key")
	tool.BaseURL = srv.URL

	out, err := tool.Call(context.Background(), json.RawMessage(`{"query":"x"}`))
	if err != nil {
		t.Fatalf("API failure must not be a Go error: %v", err)
	}
	if !strings.Contains(out, "Search error") {
		t.Errorf("output = %q, want a search error message", out)
	}
}

func TestTavilyMissingQuery(t *testing.T) {
	tool := NewTavilySearch("key")
	if _, err := tool.Call(context.Background(), json.RawMessage(`{}`)); err == nil {
		t.Error("missing query must be an argument error")
	}
}

func TestBraveSendsAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Subscription-Token"); got != "brave-key" {
			t.Errorf("X-Subscription-Token = %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "ml jobs" {
			t.Errorf("q = %q", got)
		}
		if got := r.URL.Query().Get("count"); got != "5" {
			t.Errorf("count = %q, want default 5", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"web": map[string]interface{}{
				"results": []map[string]string{
					{"title": "ML Eng", "url": "https://c.io/3", "description": "Onsite"},
				},
			},
		})
	}))
	defer srv.Close()

	tool := NewBraveSearch("brave-key")
	tool.BaseURL = srv.URL

	out, err := tool.Call(context.Background(), json.RawMessage(`{"query":"ml jobs"}`))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !strings.Contains(out, "**ML Eng**") {
		t.Errorf("output = %q", out)
	}
}

func TestFirecrawlAPIPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer fc-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req firecrawlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Formats) != 1 || req.Formats[0] != "markdown" {
			t.Errorf("formats = %v", req.Formats)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]string{"markdown": "# Senior Go Engineer\nSalary: $150k"},
		})
	}))
	defer srv.Close()

	tool := NewFirecrawlScrape("fc-key")
	tool.BaseURL = srv.URL

	out, err := tool.Call(context.Background(), json.RawMessage(`{"url":"https://acme.io/jobs/1"}`))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !strings.Contains(out, "Senior Go Engineer") {
		t.Errorf("output = %q", out)
	}
}

func TestFirecrawlFallsBackToDirectFetch(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer api.Close()
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
			t.Errorf("fallback should use a browser user agent, got %q", ua)
		}
		_, _ = w.Write([]byte("<html>raw job page</html>"))
	}))
	defer page.Close()

	tool := NewFirecrawlScrape("fc-key")
	tool.BaseURL = api.URL

	out, err := tool.Call(context.Background(), json.RawMessage(`{"url":"`+page.URL+`"}`))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !strings.Contains(out, "raw job page") {
		t.Errorf("output = %q", out)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", maxScrapeChars+50)
	got := truncate(long, maxScrapeChars)
	if len(got) >= len(long) {
		t.Error("long content should be truncated")
	}
	if !strings.HasSuffix(got, "[truncated]") {
		t.Errorf("missing truncation marker: %q", got[len(got)-30:])
	}
	if truncate("short", maxScrapeChars) != "short" {
		t.Error("short content must pass through")
	}
}

func TestRegistry(t *testing.T) {
	tavily := NewTavilySearch("k")
	brave := NewBraveSearch("k")
	reg := NewRegistry(tavily, brave)

	got, err := reg.Lookup("tavily_search")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != Tool(tavily) {
		t.Error("wrong tool returned")
	}
	if _, err := reg.Lookup("nope"); err == nil {
		t.Error("unknown tool must error")
	}
	names := reg.Names()
	if len(names) != 2 || names[0] != "tavily_search" || names[1] != "brave_search" {
		t.Errorf("Names = %v", names)
	}
}

func TestPlainTextExtractor(t *testing.T) {
	ex := PlainTextExtractor{}

	text, err := ex.Extract("cv.txt", []byte("  Jane Doe\nGo, Python  "))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "Jane Doe\nGo, Python" {
		t.Errorf("text = %q", text)
	}

	if _, err := ex.Extract("cv.docx", []byte("x")); err == nil {
		t.Error("binary format must be rejected")
	}
	if _, err := ex.Extract("cv.txt", []byte{0xff, 0xfe, 0x00}); err == nil {
		t.Error("non-utf8 must be rejected")
	}
	if _, err := ex.Extract("cv.txt", []byte("   ")); err == nil {
		t.Error("empty content must be rejected")
	}
}
