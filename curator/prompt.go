package curator

import (
	"encoding/json"
	"fmt"
	"strings"

	"news-hub/models"
)

// contentPrefixRunes bounds how much body text per article is sent to the model.
const contentPrefixRunes = 500

type condensedArticle struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Source      string `json:"source"`
	URL         string `json:"url"`
}

func condense(raws []models.RawArticle) []condensedArticle {
	out := make([]condensedArticle, 0, len(raws))
	for i, a := range raws {
		out = append(out, condensedArticle{
			Index:       i,
			Title:       a.Title,
			Description: a.Description,
			Content:     truncateRunes(a.Content, contentPrefixRunes),
			Source:      a.Source.Name,
			URL:         a.URL,
		})
	}
	return out
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

const curationSystemInstruction = `You are a tech news editor selecting stories for a news reader focused on AI and technology.
You MUST answer with a raw JSON array only. Do not wrap it in a markdown code block and do not add any explanation.`

const curationTemplate = `You are a tech news editor. Below is a JSON array of %d articles from top tech publishers.

Your tasks:
1. Select the %d BEST and MOST RELEVANT articles about %s.
2. For each selected article, produce:
   - "index": the original index from the input
   - "category": one of [%s]
   - "quickSummary": a compelling 1-2 sentence summary for a news card (max 30 words)
   - "detailedSummary": a well-written 2-paragraph journalistic summary (150-200 words)
   - "whyItMatters": a concise paragraph on why this matters for the tech industry (50-80 words)

Return ONLY a valid JSON array of %d objects. No markdown, no explanation.

Articles:
%s`

// BuildPrompt renders the curation request for the given batch.
func BuildPrompt(raws []models.RawArticle, count int) (Prompt, error) {
	condensed := condense(raws)
	payload, err := json.Marshal(condensed)
	if err != nil {
		return Prompt{}, fmt.Errorf("marshal condensed articles: %w", err)
	}

	names := make([]string, 0, len(models.Categories))
	quoted := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		names = append(names, string(c))
		quoted = append(quoted, fmt.Sprintf("%q", string(c)))
	}
	topics := strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]

	text := fmt.Sprintf(curationTemplate,
		len(condensed), count, topics, strings.Join(quoted, ", "), count, string(payload))

	return Prompt{
		Purpose: models.AIPurposeCuration,
		System:  curationSystemInstruction,
		Text:    text,
		JSON:    true,
	}, nil
}
