package feeder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-hub/feeder"
	"news-hub/models"
)

func TestNormalize_FiltersUnusableRecords(t *testing.T) {
	raws := []models.RawArticle{
		{Title: "Keep me", URL: "https://example.com/a"},
		{Title: "[Removed]", URL: "https://removed.com"},
		{Title: "", URL: "https://example.com/no-title"},
		{Title: "   ", URL: "https://example.com/blank-title"},
		{Title: "No url", URL: ""},
		{Title: "Blank url", URL: "  "},
		{Title: "Keep me too", URL: "https://example.com/b"},
	}

	got := feeder.Normalize(raws)
	require.Len(t, got, 2)
	assert.Equal(t, "Keep me", got[0].Title)
	assert.Equal(t, "Keep me too", got[1].Title)
}

func TestNormalize_EmptyInput(t *testing.T) {
	assert.Empty(t, feeder.Normalize(nil))
}

func TestNormalize_OutputNeverContainsRemovedOrEmpty(t *testing.T) {
	raws := []models.RawArticle{
		{Title: "[Removed]", URL: "[Removed]"},
		{Title: "a", URL: "u1"},
		{Title: "b"},
		{URL: "u2"},
		{Title: "c", URL: "u3"},
	}
	for _, a := range feeder.Normalize(raws) {
		assert.NotEqual(t, models.RemovedTitle, a.Title)
		assert.NotEmpty(t, a.Title)
		assert.NotEmpty(t, a.URL)
	}
}

func TestDecodeRaw_SkipsUndecodableElements(t *testing.T) {
	data := []byte(`[
		{"title": "ok", "url": "https://example.com/1", "source": {"id": "wired", "name": "Wired"}, "author": null},
		42,
		{"title": 7, "url": "https://example.com/2"},
		{"title": "also ok", "url": "https://example.com/3", "urlToImage": "https://img/3.png"}
	]`)

	got, err := feeder.DecodeRaw(data)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Wired", got[0].Source.Name)
	assert.Empty(t, got[0].Author)
	assert.Equal(t, "https://img/3.png", got[1].URLToImage)
}

func TestDecodeRaw_NotAnArray(t *testing.T) {
	_, err := feeder.DecodeRaw([]byte(`{"title":"x"}`))
	assert.Error(t, err)
}
