package models

import (
	"strings"
	"time"
)

// Category is the fixed topical whitelist an article is filed under.
type Category string

const (
	CategoryAI              Category = "AI"
	CategoryTechnology      Category = "Technology"
	CategoryStartups        Category = "Startups"
	CategoryFunding         Category = "Funding"
	CategoryMachineLearning Category = "Machine Learning"
)

// Categories lists every valid Category in prompt order.
var Categories = []Category{
	CategoryAI,
	CategoryTechnology,
	CategoryStartups,
	CategoryFunding,
	CategoryMachineLearning,
}

// DefaultCategory is used when the model omits or invents a category.
const DefaultCategory = CategoryTechnology

// ParseCategory matches s case-insensitively against the whitelist.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

const (
	PlaceholderCoverImage = "https://images.unsplash.com/photo-1504711434969-e33886168f5c?w=600&h=400&fit=crop"
	UnknownName           = "Unknown"
	PlaceholderSourceURL  = "#"
	publisherLogoTemplate = "https://img.icons8.com/color/48/%s.png"
)

// Article is a curated article document
// Collection: articles (_id = ArticleID(sourceUrl, title))
type Article struct {
	ID              string    `bson:"_id" json:"id"`
	Title           string    `bson:"title" json:"title"`
	CoverImage      string    `bson:"coverImage" json:"coverImage"`
	PublisherName   string    `bson:"publisherName" json:"publisherName"`
	PublisherLogo   string    `bson:"publisherLogo" json:"publisherLogo"`
	AuthorName      string    `bson:"authorName" json:"authorName"`
	SourceURL       string    `bson:"sourceUrl" json:"sourceUrl"`
	OriginalContent string    `bson:"originalContent,omitempty" json:"originalContent,omitempty"`
	Category        Category  `bson:"category" json:"category"`
	QuickSummary    string    `bson:"quickSummary" json:"quickSummary"`
	DetailedSummary string    `bson:"detailedSummary,omitempty" json:"detailedSummary,omitempty"`
	WhyItMatters    string    `bson:"whyItMatters,omitempty" json:"whyItMatters,omitempty"`
	DatePosted      time.Time `bson:"datePosted" json:"datePosted"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`

	// DatePostedRaw carries the feed's publishedAt string until the store coerces it.
	DatePostedRaw string `bson:"-" json:"-"`
}

// EnsureID stamps the content-derived identifier and returns it.
func (a *Article) EnsureID() string {
	a.ID = ArticleID(a.SourceURL, a.Title)
	return a.ID
}
