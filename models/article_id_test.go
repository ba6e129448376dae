package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"news-hub/models"
)

func TestArticleIDIsStableForSameURL(t *testing.T) {
	a := models.ArticleID("https://techcrunch.com/2025/01/01/openai", "Title one")
	b := models.ArticleID("https://techcrunch.com/2025/01/01/openai", "A completely different title")

	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestArticleIDDiffersForDistinctURLs(t *testing.T) {
	a := models.ArticleID("https://www.wired.com/story/a", "same")
	b := models.ArticleID("https://www.wired.com/story/b", "same")

	assert.NotEqual(t, a, b)
}

func TestArticleIDFallsBackToTitle(t *testing.T) {
	byTitle := models.ArticleID("", "Nvidia earnings beat")

	assert.NotEqual(t, byTitle, models.ArticleID(models.PlaceholderSourceURL, "Nvidia earnings beat"))
	assert.NotEqual(t, byTitle, models.ArticleID("", "Other headline"))
	// md5("")
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", models.ArticleID("", ""))
}

func TestArticleIDHashesPlaceholderURL(t *testing.T) {
	a := models.ArticleID(models.PlaceholderSourceURL, "first headline")
	b := models.ArticleID(models.PlaceholderSourceURL, "second headline")

	// same sourceUrl, same id: the unique sourceUrl index sees one document
	assert.Equal(t, a, b)
	// md5("#")
	assert.Equal(t, "01abfc750a0c942167651c40d088531d", a)
}

func TestEnsureID(t *testing.T) {
	a := models.Article{SourceURL: "https://arstechnica.com/x", Title: "x"}
	id := a.EnsureID()

	assert.Equal(t, models.ArticleID("https://arstechnica.com/x", ""), id)
	assert.Equal(t, id, a.ID)
}

func TestPublisherLogo(t *testing.T) {
	assert.Equal(t, "https://img.icons8.com/color/48/t.png", models.PublisherLogo("TechCrunch"))
	assert.Equal(t, "https://img.icons8.com/color/48/w.png", models.PublisherLogo("wired"))
	assert.Equal(t, "https://img.icons8.com/color/48/n.png", models.PublisherLogo(""))
}

func TestParseCategory(t *testing.T) {
	c, ok := models.ParseCategory("machine learning")
	assert.True(t, ok)
	assert.Equal(t, models.CategoryMachineLearning, c)

	_, ok = models.ParseCategory("Science")
	assert.False(t, ok)
	assert.True(t, models.CategoryFunding.Valid())
}
