package feeder

import (
	"encoding/json"
	"strings"

	"news-hub/models"
)

// Normalize keeps only records that can enter the pipeline: a non-blank title
// that is not the "[Removed]" tombstone, and a non-blank URL. Order is kept.
func Normalize(raws []models.RawArticle) []models.RawArticle {
	out := make([]models.RawArticle, 0, len(raws))
	for _, a := range raws {
		title := strings.TrimSpace(a.Title)
		if title == "" || title == models.RemovedTitle {
			continue
		}
		if strings.TrimSpace(a.URL) == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

// DecodeRaw decodes a JSON array of semi-structured feed records. Elements that
// do not decode into a RawArticle (wrong field types, non-objects) are dropped
// instead of failing the batch.
func DecodeRaw(data []byte) ([]models.RawArticle, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, err
	}
	out := make([]models.RawArticle, 0, len(elems))
	for _, e := range elems {
		var a models.RawArticle
		if err := json.Unmarshal(e, &a); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
