package content

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

const (
	firecrawlBaseURL = "https://api.firecrawl.dev/v1"

	// Markdown of separate pages is joined with this marker.
	pageSeparator = "\n\n---\n\n"
)

// FirecrawlCrawler crawls websites through the Firecrawl API. Crawl jobs are
// asynchronous server-side; Crawl blocks and polls until the job finishes or
// the context is done.
type FirecrawlCrawler struct {
	BaseURL      string
	APIKey       string
	Client       *http.Client
	PollInterval time.Duration
}

var _ Crawler = &FirecrawlCrawler{}

func NewFirecrawlCrawler(apiKey string) *FirecrawlCrawler {
	return &FirecrawlCrawler{
		BaseURL:      firecrawlBaseURL,
		APIKey:       apiKey,
		Client:       &http.Client{Timeout: 60 * time.Second},
		PollInterval: 3 * time.Second,
	}
}

type crawlRequest struct {
	Url           string        `json:"url"`
	Limit         int           `json:"limit"`
	ScrapeOptions scrapeOptions `json:"scrapeOptions"`
}

type scrapeOptions struct {
	OnlyMainContent bool     `json:"onlyMainContent"`
	Formats         []string `json:"formats"`
}

type crawlStartResponse struct {
	Success bool   `json:"success"`
	Id      string `json:"id"`
	Error   string `json:"error,omitempty"`
}

type crawlStatusResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

func (c *FirecrawlCrawler) Crawl(ctx context.Context, url string, maxPages int) (string, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	jobId, err := c.startCrawl(ctx, url, maxPages)
	if err != nil {
		return "", err
	}

	status, err := c.waitForCrawl(ctx, jobId)
	if err != nil {
		return "", err
	}

	pages := make([]string, 0, len(status.Data))
	for _, page := range status.Data {
		if page.Markdown != "" {
			pages = append(pages, page.Markdown)
		}
	}
	return strings.Join(pages, pageSeparator), nil
}

func (c *FirecrawlCrawler) startCrawl(ctx context.Context, url string, maxPages int) (string, error) {
	body := crawlRequest{
		Url:   url,
		Limit: maxPages,
		ScrapeOptions: scrapeOptions{
			OnlyMainContent: true,
			Formats:         []string{"markdown"},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/crawl", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("start crawl: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("firecrawl error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var startResp crawlStartResponse
	if err := json.Unmarshal(bodyBytes, &startResp); err != nil {
		return "", fmt.Errorf("decode crawl response: %w", err)
	}
	if !startResp.Success || startResp.Id == "" {
		return "", fmt.Errorf("firecrawl rejected crawl: %s", startResp.Error)
	}
	return startResp.Id, nil
}

func (c *FirecrawlCrawler) waitForCrawl(ctx context.Context, jobId string) (*crawlStatusResponse, error) {
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for {
		status, err := c.crawlStatus(ctx, jobId)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case "completed":
			return status, nil
		case "failed", "cancelled":
			return nil, fmt.Errorf("crawl job %s %s: %s", jobId, status.Status, status.Error)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("crawl job %s: %w", jobId, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *FirecrawlCrawler) crawlStatus(ctx context.Context, jobId string) (*crawlStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/crawl/"+jobId, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll crawl: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("firecrawl error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var status crawlStatusResponse
	if err := json.Unmarshal(bodyBytes, &status); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return &status, nil
}
