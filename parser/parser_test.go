package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const articlePage = `<!DOCTYPE html>
<html>
<head>
  <title>Chipmaker raises $2B</title>
  <meta property="og:image" content="/images/cover.jpg">
</head>
<body>
  <nav>Home | About</nav>
  <article>
    <h1>Chipmaker raises $2B</h1>
    <p>The startup announced on Tuesday that it closed a two billion dollar round led by a group of sovereign funds, a record for the sector this year.</p>
    <p>The money will be used to build a new fabrication plant and to hire several hundred engineers over the next eighteen months, the company said in a statement.</p>
    <p>Analysts said the deal reflects continued investor appetite for hardware that can run large machine learning models efficiently at the edge.</p>
  </article>
  <footer>Copyright</footer>
</body>
</html>`

func TestParse_ExtractsTextAndImage(t *testing.T) {
	page, err := Parse(articlePage, "https://news.example.com/2024/05/chips")
	require.NoError(t, err)
	assert.Contains(t, page.Text, "two billion dollar round")
	assert.Equal(t, "https://news.example.com/images/cover.jpg", page.TopImage)
}

func TestFindTopImage_Priority(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<html><head>
		<meta name="twitter:image" content="https://cdn/twitter.png">
		<meta property="og:image" content="https://cdn/og.png">
		<link rel="image_src" href="https://cdn/link.png">
	</head></html>`))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/og.png", findTopImage(doc))

	doc, err = html.Parse(strings.NewReader(`<html><head><link rel="image_src" href="https://cdn/link.png"></head></html>`))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/link.png", findTopImage(doc))
}

func TestResolveImageURL(t *testing.T) {
	assert.Equal(t, "", resolveImageURL("", nil))
	assert.Equal(t, "https://cdn/a.png", resolveImageURL("https://cdn/a.png", nil))
	assert.Equal(t, "/a.png", resolveImageURL("/a.png", nil))
}
