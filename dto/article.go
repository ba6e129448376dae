package dto

import (
	"time"

	"news-hub/models"
)

// ArticleDTO exposes an article to the frontend. Timestamps are RFC3339 strings.
type ArticleDTO struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	CoverImage      string `json:"coverImage"`
	PublisherName   string `json:"publisherName"`
	PublisherLogo   string `json:"publisherLogo"`
	AuthorName      string `json:"authorName"`
	SourceURL       string `json:"sourceUrl"`
	OriginalContent string `json:"originalContent,omitempty"`
	Category        string `json:"category" example:"AI"`
	QuickSummary    string `json:"quickSummary"`
	DetailedSummary string `json:"detailedSummary,omitempty"`
	WhyItMatters    string `json:"whyItMatters,omitempty"`
	DatePosted      string `json:"datePosted" example:"2024-05-01T10:00:00Z"`
	CreatedAt       string `json:"createdAt,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
}

func NewArticleDTO(a models.Article) ArticleDTO {
	return ArticleDTO{
		ID:              a.ID,
		Title:           a.Title,
		CoverImage:      a.CoverImage,
		PublisherName:   a.PublisherName,
		PublisherLogo:   a.PublisherLogo,
		AuthorName:      a.AuthorName,
		SourceURL:       a.SourceURL,
		OriginalContent: a.OriginalContent,
		Category:        string(a.Category),
		QuickSummary:    a.QuickSummary,
		DetailedSummary: a.DetailedSummary,
		WhyItMatters:    a.WhyItMatters,
		DatePosted:      FormatTime(a.DatePosted),
		CreatedAt:       FormatTime(a.CreatedAt),
		UpdatedAt:       FormatTime(a.UpdatedAt),
	}
}

// ArticleListDTO is the homepage listing envelope.
// swagger:model ArticleListDTO
type ArticleListDTO struct {
	Articles []ArticleDTO `json:"articles"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	Limit    int          `json:"limit"`
}

// FormatTime renders t as RFC3339 in UTC, or "" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
