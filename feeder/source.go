package feeder

import (
	"context"
	"errors"
	"fmt"

	"news-hub/config"
	"news-hub/models"
)

// ErrFeedUnavailable wraps transport/auth failures of an upstream feed.
var ErrFeedUnavailable = errors.New("feed unavailable")

// Source yields raw articles from an external feed. limit <= 0 means the
// source's own default.
type Source interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]models.RawArticle, error)
}

// MultiSource concatenates several sources. A failing source is skipped as long
// as at least one other source succeeded; if all fail the joined error is returned.
type MultiSource struct {
	Sources []Source
}

func (m MultiSource) Name() string { return "multi" }

func (m MultiSource) Fetch(ctx context.Context, limit int) ([]models.RawArticle, error) {
	var (
		out  []models.RawArticle
		errs []error
		ok   int
	)
	for _, s := range m.Sources {
		items, err := s.Fetch(ctx, limit)
		if err != nil {
			config.Logger.Warnf("feed source %s failed: %v", s.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		ok++
		out = append(out, items...)
	}
	if ok == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
