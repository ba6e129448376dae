package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"news-hub/models"
)

var ErrNotFound = errors.New("not found")

const (
	DefaultListLimit = 30
	MaxListLimit     = 100
)

// UpsertResult counts the outcome of a batch upsert.
type UpsertResult struct {
	Created int
	Updated int
	Failed  int
}

func (r UpsertResult) Written() int { return r.Created + r.Updated }

type ListArticlesOptions struct {
	Limit int
	Page  int
	// Category is matched as a case-insensitive substring.
	Category string
}

// Normalize clamps paging to the supported range.
func (o ListArticlesOptions) Normalize() ListArticlesOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Page <= 0 {
		o.Page = 1
	}
	o.Category = strings.TrimSpace(o.Category)
	return o
}

func (o ListArticlesOptions) Skip() int { return (o.Page - 1) * o.Limit }

// ArticleStore is implemented by the Mongo ArticleRepository and memory.ArticleRepository.
type ArticleStore interface {
	Upsert(ctx context.Context, articles []models.Article) (UpsertResult, error)
	List(ctx context.Context, opt ListArticlesOptions) ([]models.Article, int64, error)
	FindByID(ctx context.Context, id string) (*models.Article, error)
}

// ChatStore is implemented by the Mongo ChatRepository and memory.ChatRepository.
type ChatStore interface {
	AppendMessage(ctx context.Context, sessionID, articleID, articleTitle string, msg models.Message) error
	GetHistory(ctx context.Context, sessionID string) ([]models.Message, error)
	FindSession(ctx context.Context, sessionID string) (*models.ChatSession, error)
}

// PrepareArticle returns the copy of a that is written to a store at now:
// identifier recomputed, datePosted coerced, updatedAt stamped. createdAt is
// left to the store since it must only be set on insert.
func PrepareArticle(a models.Article, now time.Time) models.Article {
	a.EnsureID()
	a.DatePosted = CoerceDatePosted(a.DatePosted, a.DatePostedRaw, now)
	a.DatePostedRaw = ""
	a.UpdatedAt = now
	return a
}

var datePostedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CoerceDatePosted keeps an already set time, otherwise parses the feed's
// ISO-8601 string. Anything unparsable becomes now.
func CoerceDatePosted(t time.Time, raw string, now time.Time) time.Time {
	if !t.IsZero() {
		return t.UTC()
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}
	for _, layout := range datePostedLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return now
}

// MatchCategory reports whether category contains filter, ignoring case.
func MatchCategory(category models.Category, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(string(category)), strings.ToLower(filter))
}

// DefaultMessage fills the message id and timestamp when missing.
func DefaultMessage(msg models.Message, newID func() string, now time.Time) models.Message {
	if msg.ID == "" {
		msg.ID = newID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}
	msg.Timestamp = msg.Timestamp.UTC()
	return msg
}
