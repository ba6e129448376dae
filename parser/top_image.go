package parser

import (
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// imageMetaRules are tried in order: Open Graph, Twitter card, then generic.
var imageMetaRules = []struct {
	attr  string
	names []string
}{
	{"property", []string{"og:image", "og:image:url", "og:image:secure_url"}},
	{"name", []string{"twitter:image", "twitter:image:src", "thumbnail", "image"}},
	{"itemprop", []string{"image"}},
}

// findTopImage 는 meta 태그 규칙을 우선순위대로 보고, 없으면 link rel=image_src/thumbnail 을 본다.
func findTopImage(doc *html.Node) string {
	for _, rule := range imageMetaRules {
		if u := firstMatch(doc, metaMatcher(rule.attr, rule.names)); u != "" {
			return u
		}
	}
	return firstMatch(doc, linkImage)
}

// firstMatch walks depth first and returns the first non-empty match.
func firstMatch(n *html.Node, match func(*html.Node) string) string {
	if n == nil {
		return ""
	}
	if n.Type == html.ElementNode {
		if v := match(n); v != "" {
			return v
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if v := firstMatch(c, match); v != "" {
			return v
		}
	}
	return ""
}

func attrs(n *html.Node) map[string]string {
	m := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		m[strings.ToLower(a.Key)] = a.Val
	}
	return m
}

func metaMatcher(attr string, names []string) func(*html.Node) string {
	return func(n *html.Node) string {
		if n.Data != "meta" {
			return ""
		}
		a := attrs(n)
		if a["content"] == "" || !slices.Contains(names, strings.ToLower(a[attr])) {
			return ""
		}
		return a["content"]
	}
}

func linkImage(n *html.Node) string {
	if n.Data != "link" {
		return ""
	}
	a := attrs(n)
	rel := strings.ToLower(a["rel"])
	if a["href"] != "" && (rel == "image_src" || strings.Contains(rel, "thumbnail")) {
		return a["href"]
	}
	return ""
}

// resolveImageURL makes src absolute against base; unparsable input is returned as is.
func resolveImageURL(src string, base *url.URL) string {
	if src == "" {
		return ""
	}
	u, err := url.Parse(src)
	switch {
	case err != nil:
		return src
	case u.IsAbs(), base == nil:
		return u.String()
	}
	return base.ResolveReference(u).String()
}
