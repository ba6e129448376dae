package curator_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-hub/curator"
	"news-hub/models"
)

type fakeGenerator struct {
	text    string
	err     error
	calls   int
	prompts []curator.Prompt
}

func (f *fakeGenerator) Generate(_ context.Context, p curator.Prompt) (*curator.Generation, error) {
	f.calls++
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return nil, f.err
	}
	return &curator.Generation{Text: f.text, Model: "fake"}, nil
}

func batch(n int) []models.RawArticle {
	out := make([]models.RawArticle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.RawArticle{
			Source:      models.RawSource{ID: "src", Name: "TechCrunch"},
			Author:      "Author",
			Title:       fmt.Sprintf("Title %d", i),
			Description: fmt.Sprintf("Description %d", i),
			URL:         fmt.Sprintf("https://example.com/%d", i),
			URLToImage:  fmt.Sprintf("https://example.com/%d.png", i),
			PublishedAt: "2024-05-01T10:00:00Z",
			Content:     strings.Repeat("x", 800),
		})
	}
	return out
}

func selectionsJSON(t *testing.T, idx ...int) string {
	t.Helper()
	sels := make([]map[string]any, 0, len(idx))
	for _, i := range idx {
		sels = append(sels, map[string]any{
			"index":           i,
			"category":        "AI",
			"quickSummary":    fmt.Sprintf("quick %d", i),
			"detailedSummary": "detailed",
			"whyItMatters":    "matters",
		})
	}
	b, err := json.Marshal(sels)
	require.NoError(t, err)
	return string(b)
}

func TestCurate_SelectsWithinBounds(t *testing.T) {
	raws := batch(40)
	gen := &fakeGenerator{text: "```json\n" + selectionsJSON(t, 3, 7, 11, 19, 39) + "\n```"}

	got, err := curator.New(gen).Curate(context.Background(), raws, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, 1, gen.calls)

	urls := map[string]bool{}
	for _, r := range raws {
		urls[r.URL] = true
	}
	for _, a := range got {
		assert.True(t, urls[a.SourceURL], "sourceUrl must come from the batch")
		assert.Equal(t, models.ArticleID(a.SourceURL, a.Title), a.ID)
		assert.Equal(t, models.CategoryAI, a.Category)
	}
	assert.Equal(t, "Title 3", got[0].Title)
	assert.Equal(t, "quick 3", got[0].QuickSummary)
	assert.Equal(t, "2024-05-01T10:00:00Z", got[0].DatePostedRaw)
}

func TestCurate_PromptCarriesBatchAndCount(t *testing.T) {
	raws := batch(2)
	gen := &fakeGenerator{text: selectionsJSON(t, 0)}

	_, err := curator.New(gen).Curate(context.Background(), raws, 1)
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)

	p := gen.prompts[0]
	assert.Equal(t, models.AIPurposeCuration, p.Purpose)
	assert.True(t, p.JSON)
	assert.Contains(t, p.Text, "JSON array of 2 articles")
	assert.Contains(t, p.Text, "Select the 1 BEST")
	assert.Contains(t, p.Text, `"Machine Learning"`)
	// content is cut to a 500 rune prefix
	assert.Contains(t, p.Text, strings.Repeat("x", 500))
	assert.NotContains(t, p.Text, strings.Repeat("x", 501))
}

func TestCurate_Fallbacks(t *testing.T) {
	raws := []models.RawArticle{{
		Title:       "Bare record",
		URL:         "https://example.com/bare",
		Description: "only a description",
	}}
	gen := &fakeGenerator{text: `[{"index":0,"category":"Crypto","quickSummary":"q"}]`}

	got, err := curator.New(gen).Curate(context.Background(), raws, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	a := got[0]
	assert.Equal(t, models.PlaceholderCoverImage, a.CoverImage)
	assert.Equal(t, "Unknown", a.PublisherName)
	assert.Equal(t, "Unknown", a.AuthorName)
	assert.Equal(t, "https://img.icons8.com/color/48/n.png", a.PublisherLogo)
	assert.Equal(t, "only a description", a.OriginalContent)
	assert.Equal(t, models.CategoryTechnology, a.Category)
}

func TestCurate_CategoryCaseInsensitive(t *testing.T) {
	gen := &fakeGenerator{text: `[{"index":0,"category":"machine learning","quickSummary":"q"}]`}
	got, err := curator.New(gen).Curate(context.Background(), batch(1), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.CategoryMachineLearning, got[0].Category)
}

func TestCurate_DropsInvalidSelections(t *testing.T) {
	text := `[
		{"index": 0, "quickSummary": "ok"},
		{"index": 99, "quickSummary": "out of range"},
		{"index": -1, "quickSummary": "negative"},
		{"index": 0, "quickSummary": "duplicate"},
		{"quickSummary": "missing index"},
		{"index": 1, "quickSummary": "  "},
		{"index": "2", "quickSummary": "string index"}
	]`
	gen := &fakeGenerator{text: text}

	got, stats, err := curator.New(gen).CurateWithStats(context.Background(), batch(3), 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ok", got[0].QuickSummary)
	assert.Equal(t, "string index", got[1].QuickSummary)
	assert.Equal(t, 7, stats.Selections)
	assert.Equal(t, 5, stats.Dropped)
	assert.Equal(t, 2, stats.Curated)
}

func TestCurate_NonIntegerIndexDropsOnlyThatSelection(t *testing.T) {
	text := `[
		{"index": "abc", "quickSummary": "word"},
		{"index": true, "quickSummary": "bool"},
		{"index": 1.5, "quickSummary": "fraction"},
		{"index": {"n": 1}, "quickSummary": "object"},
		{"index": 0, "quickSummary": "kept"}
	]`
	gen := &fakeGenerator{text: text}

	got, stats, err := curator.New(gen).CurateWithStats(context.Background(), batch(3), 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].QuickSummary)
	assert.Equal(t, 5, stats.Selections)
	assert.Equal(t, 4, stats.Dropped)
}

func TestCurate_EmptyArrayIsNotMalformed(t *testing.T) {
	got, err := curator.New(&fakeGenerator{text: "[]"}).Curate(context.Background(), batch(3), 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCurate_TruncatesToCount(t *testing.T) {
	gen := &fakeGenerator{text: selectionsJSON(t, 0, 1, 2, 3)}
	got, err := curator.New(gen).Curate(context.Background(), batch(4), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCurate_InvalidCount(t *testing.T) {
	gen := &fakeGenerator{}
	for _, n := range []int{0, -1, 21} {
		_, err := curator.New(gen).Curate(context.Background(), batch(3), n)
		assert.ErrorIs(t, err, curator.ErrInvalidCount)
	}
	assert.Zero(t, gen.calls)
}

func TestCurate_EmptyBatchSkipsModel(t *testing.T) {
	gen := &fakeGenerator{}
	got, err := curator.New(gen).Curate(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, gen.calls)
}

func TestCurate_MalformedResponse(t *testing.T) {
	for _, text := range []string{
		"Sorry, I cannot help with that.",
		"",
		`{"index":0}`,
		"null",
		"```json\nnull\n```",
		"```null```",
	} {
		gen := &fakeGenerator{text: text}
		_, err := curator.New(gen).Curate(context.Background(), batch(3), 1)
		assert.ErrorIs(t, err, curator.ErrMalformedResponse, text)
	}
}

func TestCurate_ModelUnavailable(t *testing.T) {
	cause := errors.New("connection reset")
	gen := &fakeGenerator{err: cause}

	_, err := curator.New(gen).Curate(context.Background(), batch(3), 1)
	assert.ErrorIs(t, err, curator.ErrModelUnavailable)
	assert.ErrorIs(t, err, cause)
}
