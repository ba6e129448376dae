package curator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"news-hub/config"
	"news-hub/models"
)

const (
	MinCount = 1
	MaxCount = 20
)

var (
	ErrInvalidCount      = fmt.Errorf("count must be between %d and %d", MinCount, MaxCount)
	ErrModelUnavailable  = errors.New("model unavailable")
	ErrMalformedResponse = errors.New("malformed model response")
)

// Selection is one entry of the model's answer. Index refers to the position
// in the batch sent to the model. It stays raw so that a bad index drops only
// its own selection; a numeric string is accepted.
type Selection struct {
	Index           json.RawMessage `json:"index"`
	Category        string          `json:"category"`
	QuickSummary    string          `json:"quickSummary"`
	DetailedSummary string          `json:"detailedSummary"`
	WhyItMatters    string          `json:"whyItMatters"`
}

// CurationStats describes what happened to the model's selections.
type CurationStats struct {
	Candidates int
	Selections int
	Dropped    int
	Curated    int
}

type Curator struct {
	gen Generator
}

func New(gen Generator) *Curator {
	return &Curator{gen: gen}
}

// Curate asks the model to pick count articles from raws and returns them as
// Article values with every display field filled.
func (c *Curator) Curate(ctx context.Context, raws []models.RawArticle, count int) ([]models.Article, error) {
	articles, _, err := c.CurateWithStats(ctx, raws, count)
	return articles, err
}

func (c *Curator) CurateWithStats(ctx context.Context, raws []models.RawArticle, count int) ([]models.Article, CurationStats, error) {
	stats := CurationStats{Candidates: len(raws)}
	if count < MinCount || count > MaxCount {
		return nil, stats, ErrInvalidCount
	}
	if len(raws) == 0 {
		return nil, stats, nil
	}

	prompt, err := BuildPrompt(raws, count)
	if err != nil {
		return nil, stats, err
	}

	gen, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	if gen == nil {
		return nil, stats, fmt.Errorf("%w: empty generation", ErrModelUnavailable)
	}

	selections, err := ParseSelections(gen.Text)
	if err != nil {
		return nil, stats, err
	}
	stats.Selections = len(selections)

	seen := make(map[int]struct{}, len(selections))
	articles := make([]models.Article, 0, count)
	for _, sel := range selections {
		idx, ok := selectionIndex(sel.Index, len(raws))
		if !ok {
			stats.Dropped++
			config.WarnWithFields("curator: selection index invalid or out of range", config.Fields{
				"index": string(sel.Index),
				"batch": len(raws),
			})
			continue
		}
		if _, dup := seen[idx]; dup {
			stats.Dropped++
			config.WarnWithFields("curator: duplicate selection index", config.Fields{"index": idx})
			continue
		}
		if strings.TrimSpace(sel.QuickSummary) == "" {
			stats.Dropped++
			config.WarnWithFields("curator: selection without quickSummary", config.Fields{"index": idx})
			continue
		}
		seen[idx] = struct{}{}
		articles = append(articles, ToArticle(raws[idx], sel))
		if len(articles) == count {
			break
		}
	}
	stats.Curated = len(articles)

	config.InfoWithFields("curation finished", config.Fields{
		"model":      gen.Model,
		"candidates": stats.Candidates,
		"selections": stats.Selections,
		"dropped":    stats.Dropped,
		"curated":    stats.Curated,
	})
	return articles, stats, nil
}

// ParseSelections strips a markdown fence and decodes the JSON array.
func ParseSelections(text string) ([]Selection, error) {
	body := StripCodeFence(text)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}
	// null 도 슬라이스로는 디코딩되므로 배열인지 먼저 본다.
	if !strings.HasPrefix(body, "[") {
		return nil, fmt.Errorf("%w: not a JSON array", ErrMalformedResponse)
	}
	var out []Selection
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return out, nil
}

// selectionIndex accepts a JSON integer or a quoted integer within [0, size).
func selectionIndex(raw json.RawMessage, size int) (int, bool) {
	s := strings.TrimSpace(string(raw))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 || v >= int64(size) {
		return 0, false
	}
	return int(v), true
}

// ToArticle merges the raw record with the model's summaries, applying the
// display fallbacks for missing feed fields.
func ToArticle(raw models.RawArticle, sel Selection) models.Article {
	category, ok := models.ParseCategory(sel.Category)
	if !ok {
		category = models.DefaultCategory
	}

	a := models.Article{
		Title:           strings.TrimSpace(raw.Title),
		CoverImage:      firstNonBlank(raw.URLToImage, models.PlaceholderCoverImage),
		PublisherName:   firstNonBlank(raw.Source.Name, models.UnknownName),
		PublisherLogo:   models.PublisherLogo(raw.Source.Name),
		AuthorName:      firstNonBlank(raw.Author, models.UnknownName),
		SourceURL:       firstNonBlank(raw.URL, models.PlaceholderSourceURL),
		OriginalContent: firstNonBlank(raw.Content, raw.Description),
		Category:        category,
		QuickSummary:    strings.TrimSpace(sel.QuickSummary),
		DetailedSummary: strings.TrimSpace(sel.DetailedSummary),
		WhyItMatters:    strings.TrimSpace(sel.WhyItMatters),
		DatePostedRaw:   raw.PublishedAt,
	}
	a.EnsureID()
	return a
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
