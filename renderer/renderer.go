// Package renderer fetches article pages for the enrichment stage.
package renderer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/chromedp/chromedp"

	"news-hub/httpclient"
)

const USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"

const (
	KindHTTP   = "http"
	KindChrome = "chrome"

	maxPageBytes      = 8 << 20
	defaultChromePath = "/usr/bin/chromium-browser"
)

// Renderer returns the HTML of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// New returns a ChromeRenderer for KindChrome and an HTTPRenderer otherwise.
func New(kind string, timeout time.Duration) Renderer {
	if kind == KindChrome {
		return &ChromeRenderer{Timeout: timeout, ExecPath: os.Getenv("CHROME_PATH")}
	}
	return NewHTTPRenderer(timeout)
}

// HTTPRenderer fetches server rendered pages with a plain GET.
type HTTPRenderer struct {
	client *http.Client
}

func NewHTTPRenderer(timeout time.Duration) *HTTPRenderer {
	return &HTTPRenderer{client: httpclient.New(httpclient.Config{Timeout: timeout})}
}

func (r *HTTPRenderer) Render(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("render %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return string(body), nil
}

// ChromeRenderer runs headless chromium for client rendered pages. One browser
// is started per call.
type ChromeRenderer struct {
	Timeout time.Duration
	// ExecPath 가 비어 있으면 컨테이너 기본 경로를 쓴다.
	ExecPath string
}

func (r *ChromeRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	execPath := r.ExecPath
	if execPath == "" {
		execPath = defaultChromePath
	}
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.ExecPath(execPath), chromedp.UserAgent(USER_AGENT))
	for _, flag := range []string{
		"headless", "no-sandbox", "disable-gpu", "disable-dev-shm-usage",
		"disable-crashpad", "disable-breakpad", "no-first-run",
		"no-default-browser-check", "disable-extensions",
	} {
		opts = append(opts, chromedp.Flag(flag, true))
	}
	return opts
}

func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var page string
	if err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(time.Second),
		chromedp.OuterHTML("html", &page),
	); err != nil {
		return "", fmt.Errorf("render %s with chrome: %w", url, err)
	}
	return page, nil
}
