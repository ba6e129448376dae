package parser

import (
	"errors"
	"net/url"
	"strings"

	"github.com/advancedlogic/GoOse/pkg/goose"
	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var ErrNoContent = errors.New("no readable content")

// ParsedPage is the readable part of an article page.
type ParsedPage struct {
	Text     string
	TopImage string
}

// Parse extracts the article text and a cover image from htmlStr. trafilatura
// is tried first, readability fills in whatever it leaves empty, and GoOse is
// the last resort for the text.
func Parse(htmlStr, pageURL string) (*ParsedPage, error) {
	var base *url.URL
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			base = u
		}
	}

	page := &ParsedPage{}
	if text, image, err := parseWithTrafilatura(htmlStr, base); err == nil {
		page.Text, page.TopImage = text, image
	}

	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		if page.Text == "" {
			return nil, err
		}
		return page, nil
	}

	if page.Text == "" || page.TopImage == "" {
		if article, err := readability.FromDocument(doc, base); err == nil {
			if page.Text == "" {
				page.Text = strings.TrimSpace(article.TextContent)
			}
			if page.TopImage == "" {
				page.TopImage = article.Image
			}
		}
	}
	if page.Text == "" {
		if text, image := parseWithGoose(htmlStr, pageURL); text != "" {
			page.Text = text
			if page.TopImage == "" {
				page.TopImage = image
			}
		}
	}
	if page.TopImage == "" {
		page.TopImage = findTopImage(doc)
	}
	page.TopImage = resolveImageURL(page.TopImage, base)

	if page.Text == "" && page.TopImage == "" {
		return nil, ErrNoContent
	}
	return page, nil
}

func parseWithTrafilatura(htmlStr string, base *url.URL) (string, string, error) {
	opts := trafilatura.Options{
		IncludeImages: true,
		OriginalURL:   base,
	}
	result, err := trafilatura.Extract(strings.NewReader(htmlStr), opts)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(result.ContentText), result.Metadata.Image, nil
}

func parseWithGoose(htmlStr, pageURL string) (string, string) {
	article, err := goose.New().ExtractFromRawHTML(htmlStr, pageURL)
	if err != nil || article == nil {
		return "", ""
	}
	return strings.TrimSpace(article.CleanedText), article.TopImage
}
