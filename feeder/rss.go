package feeder

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/mmcdole/gofeed"

	"news-hub/models"
)

const FEEDER_TIMEOUT = 30 * time.Second

// rssUserAgent 는 RSS 피드를 요청할 때 사용할 브라우저 유사 User-Agent 이다.
// 일부 사이트(특히 CDN/보안 프록시 뒤에 있는 경우)는 기본 Go HTTP 클라이언트 UA를 차단한다.
const rssUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"

// RSSSource reads one RSS/Atom feed and maps its items onto RawArticle so they
// flow through the same normalizer and curator as NewsAPI records.
type RSSSource struct {
	FeedName string
	URL      string
	Client   *http.Client
}

func NewRSSSource(name, url string) *RSSSource {
	return &RSSSource{
		FeedName: name,
		URL:      url,
		Client: &http.Client{
			Timeout: FEEDER_TIMEOUT,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// 리다이렉트 시 이전 요청의 User-Agent를 유지
				req.Header.Set("User-Agent", rssUserAgent)
				return nil
			},
		},
	}
}

func (s *RSSSource) Name() string { return "rss:" + s.FeedName }

func (s *RSSSource) Fetch(ctx context.Context, limit int) ([]models.RawArticle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create RSS request: %w", err)
	}
	req.Header.Set("User-Agent", rssUserAgent)
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/html;q=0.8,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodySample, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, fmt.Errorf("%w: rss status code %d, url: %s, body: %s", ErrFeedUnavailable, resp.StatusCode, s.URL, string(bodySample))
	}

	cleaned, err := cleanControlCharacters(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}

	feed, err := gofeed.NewParser().Parse(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse RSS feed: %w", ErrFeedUnavailable, err)
	}

	publisher := s.FeedName
	if publisher == "" {
		publisher = feed.Title
	}

	items := make([]models.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		items = append(items, rawFromFeedItem(publisher, item))
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func rawFromFeedItem(publisher string, item *gofeed.Item) models.RawArticle {
	raw := models.RawArticle{
		Source:      models.RawSource{Name: publisher},
		Title:       item.Title,
		Description: item.Description,
		URL:         item.Link,
		Content:     item.Content,
	}
	if raw.Content == "" {
		raw.Content = item.Description
	}
	if item.Author != nil {
		raw.Author = item.Author.Name
	} else if len(item.Authors) > 0 && item.Authors[0] != nil {
		raw.Author = item.Authors[0].Name
	}
	if item.Image != nil {
		raw.URLToImage = item.Image.URL
	} else {
		for _, enc := range item.Enclosures {
			if enc != nil && len(enc.Type) >= 6 && enc.Type[:6] == "image/" {
				raw.URLToImage = enc.URL
				break
			}
		}
	}
	if item.PublishedParsed != nil {
		raw.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
	} else if item.UpdatedParsed != nil {
		raw.PublishedAt = item.UpdatedParsed.UTC().Format(time.RFC3339)
	}
	return raw
}

// XML에서 허용되지 않는 제어 문자 범위 (0x00-0x1F 중 탭, LF, CR 제외)
var invalidControlCharRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)

func cleanControlCharacters(r io.Reader) (io.Reader, error) {
	bodyBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read body for cleaning: %w", err)
	}
	return bytes.NewReader(invalidControlCharRegex.ReplaceAll(bodyBytes, nil)), nil
}
