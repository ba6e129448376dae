package feeder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"news-hub/config"
	"news-hub/httpclient"
	"news-hub/models"
)

// NewsAPIClient fetches top headlines for a fixed set of tech publishers from
// newsapi.org. Transport details stay here; callers only see RawArticle.
type NewsAPIClient struct {
	base     *httpclient.BaseClient
	apiKey   string
	sources  []string
	pageSize int
}

type newsAPIResponse struct {
	Status       string          `json:"status"`
	TotalResults int             `json:"totalResults"`
	Articles     json.RawMessage `json:"articles"`
	Code         string          `json:"code"`
	Message      string          `json:"message"`
}

func NewNewsAPIClient(cfg config.NewsAPIConfig) *NewsAPIClient {
	httpClient := httpclient.New(httpclient.Config{
		Timeout:     cfg.Timeout,
		RedactQuery: []string{"apiKey"},
	})
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 40
	}
	sources := cfg.Sources
	if len(sources) == 0 {
		sources = config.DefaultTechSources
	}
	return &NewsAPIClient{
		base:     httpclient.NewBaseClient(cfg.BaseURL, httpClient),
		apiKey:   cfg.APIKey,
		sources:  sources,
		pageSize: pageSize,
	}
}

func (c *NewsAPIClient) Name() string { return "newsapi" }

// Fetch calls GET /top-headlines?sources=...&pageSize=N. NewsAPI caps pageSize at 100.
func (c *NewsAPIClient) Fetch(ctx context.Context, limit int) ([]models.RawArticle, error) {
	pageSize := c.pageSize
	if limit > 0 {
		pageSize = limit
	}
	if pageSize > 100 {
		pageSize = 100
	}

	q := url.Values{}
	q.Set("sources", strings.Join(c.sources, ","))
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("apiKey", c.apiKey)

	body, err := c.get(ctx, "/top-headlines", q)
	if err != nil {
		return nil, err
	}

	var out newsAPIResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode newsapi response: %w", ErrFeedUnavailable, err)
	}
	if out.Status != "ok" {
		return nil, fmt.Errorf("%w: newsapi status=%s code=%s message=%s", ErrFeedUnavailable, out.Status, out.Code, out.Message)
	}
	if len(out.Articles) == 0 || string(out.Articles) == "null" {
		return nil, nil
	}
	return DecodeRaw(out.Articles)
}

// Ping checks credentials and reachability via /top-headlines/sources.
func (c *NewsAPIClient) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	body, err := c.get(ctx, "/top-headlines/sources", q)
	if err != nil {
		return err
	}
	var out newsAPIResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("%w: decode newsapi response: %w", ErrFeedUnavailable, err)
	}
	if out.Status != "ok" {
		return fmt.Errorf("%w: newsapi status=%s code=%s", ErrFeedUnavailable, out.Status, out.Code)
	}
	return nil
}

func (c *NewsAPIClient) get(ctx context.Context, relPath string, q url.Values) ([]byte, error) {
	const maxBodySize = 10 * 1024 * 1024
	body, status, err := c.base.GetBytes(ctx, relPath, q, maxBodySize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	if status != http.StatusOK {
		snippet := body
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		return nil, fmt.Errorf("%w: newsapi status=%d body=%s", ErrFeedUnavailable, status, string(snippet))
	}
	return body, nil
}
