package enricher

import (
	"context"
	"regexp"
	"strings"
	"time"

	"news-hub/config"
	"news-hub/models"
	"news-hub/parser"
	"news-hub/renderer"
)

// NewsAPI cuts content at ~200 chars and appends "[+1234 chars]".
var truncatedMarker = regexp.MustCompile(`\[\+\d+ chars\]\s*$`)

// Enricher fetches article pages to fill truncated content and missing cover
// images before curation. Failures are logged and leave the record as it was.
type Enricher struct {
	renderer renderer.Renderer
	timeout  time.Duration
	maxPages int
}

func New(r renderer.Renderer, timeout time.Duration) *Enricher {
	return &Enricher{renderer: r, timeout: timeout, maxPages: 40}
}

// NeedsEnrichment reports whether a record has truncated or empty content, or no image.
func NeedsEnrichment(a models.RawArticle) bool {
	content := strings.TrimSpace(a.Content)
	return content == "" || truncatedMarker.MatchString(content) || strings.TrimSpace(a.URLToImage) == ""
}

func (e *Enricher) Enrich(ctx context.Context, raws []models.RawArticle) ([]models.RawArticle, int) {
	out := make([]models.RawArticle, len(raws))
	copy(out, raws)

	enriched, visited := 0, 0
	for i := range out {
		if ctx.Err() != nil || visited >= e.maxPages {
			break
		}
		if !NeedsEnrichment(out[i]) {
			continue
		}
		visited++
		if e.enrichOne(ctx, &out[i]) {
			enriched++
		}
	}
	return out, enriched
}

func (e *Enricher) enrichOne(ctx context.Context, a *models.RawArticle) bool {
	pageCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	htmlStr, err := e.renderer.Render(pageCtx, a.URL)
	if err != nil {
		config.WarnWithFields("enrich: render failed", config.Fields{"url": a.URL, "error": err.Error()})
		return false
	}
	page, err := parser.Parse(htmlStr, a.URL)
	if err != nil {
		config.WarnWithFields("enrich: parse failed", config.Fields{"url": a.URL, "error": err.Error()})
		return false
	}

	changed := false
	content := strings.TrimSpace(a.Content)
	if (content == "" || truncatedMarker.MatchString(content)) && len(page.Text) > len(stripMarker(content)) {
		a.Content = page.Text
		changed = true
	}
	if strings.TrimSpace(a.URLToImage) == "" && page.TopImage != "" {
		a.URLToImage = page.TopImage
		changed = true
	}
	return changed
}

func stripMarker(s string) string {
	return strings.TrimSpace(truncatedMarker.ReplaceAllString(s, ""))
}
