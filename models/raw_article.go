package models

// RawArticle is one record as delivered by the external feed (NewsAPI shape).
type RawArticle struct {
	Source      RawSource `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt string    `json:"publishedAt"`
	Content     string    `json:"content"`
}

type RawSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RemovedTitle marks tombstoned NewsAPI entries.
const RemovedTitle = "[Removed]"
