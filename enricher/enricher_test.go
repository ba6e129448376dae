package enricher_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"news-hub/enricher"
	"news-hub/models"
)

type fakeRenderer struct {
	pages map[string]string
	calls []string
}

func (f *fakeRenderer) Render(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	html, ok := f.pages[url]
	if !ok {
		return "", errors.New("unreachable")
	}
	return html, nil
}

const fullPage = `<html><head><meta property="og:image" content="https://cdn.example.com/cover.jpg"></head>
<body><article>
<p>` + "Full paragraph about a new accelerator chip that speeds up inference for large models. " + `</p>
<p>` + "Second paragraph with more detail on pricing, availability and the partners that already signed up for the preview program. " + `</p>
<p>` + "Third paragraph quoting analysts who expect the launch to pressure incumbents and lower prices across the cloud market this year. " + `</p>
</article></body></html>`

func TestNeedsEnrichment(t *testing.T) {
	assert.True(t, enricher.NeedsEnrichment(models.RawArticle{URLToImage: "x"}))
	assert.True(t, enricher.NeedsEnrichment(models.RawArticle{Content: "Short text… [+2400 chars]", URLToImage: "x"}))
	assert.True(t, enricher.NeedsEnrichment(models.RawArticle{Content: "full"}))
	assert.False(t, enricher.NeedsEnrichment(models.RawArticle{Content: "full", URLToImage: "x"}))
}

func TestEnrich_FillsTruncatedContentAndImage(t *testing.T) {
	r := &fakeRenderer{pages: map[string]string{"https://example.com/a": fullPage}}
	e := enricher.New(r, time.Second)

	in := []models.RawArticle{
		{Title: "A", URL: "https://example.com/a", Content: "Full paragraph… [+900 chars]"},
		{Title: "B", URL: "https://example.com/b", Content: "complete", URLToImage: "https://img/b.png"},
		{Title: "C", URL: "https://example.com/c"},
	}
	out, n := e.Enrich(context.Background(), in)

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/c"}, r.calls)
	assert.True(t, strings.Contains(out[0].Content, "accelerator chip"))
	assert.Equal(t, "https://cdn.example.com/cover.jpg", out[0].URLToImage)
	assert.Equal(t, in[1], out[1])
	assert.Equal(t, in[2], out[2])
	// input is not modified
	assert.Equal(t, "Full paragraph… [+900 chars]", in[0].Content)
}
