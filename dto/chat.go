package dto

import (
	"time"

	"news-hub/models"
)

type ChatMessageDTO struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	IsUser    bool   `json:"isUser"`
	Timestamp string `json:"timestamp,omitempty"`
}

func NewChatMessageDTO(m models.Message) ChatMessageDTO {
	return ChatMessageDTO{ID: m.ID, Text: m.Text, IsUser: m.IsUser, Timestamp: FormatTime(m.Timestamp)}
}

// ToModel converts a client supplied turn. An unparsable timestamp is left zero.
func (m ChatMessageDTO) ToModel() models.Message {
	msg := models.Message{ID: m.ID, Text: m.Text, IsUser: m.IsUser}
	if ts, err := time.Parse(time.RFC3339, m.Timestamp); err == nil {
		msg.Timestamp = ts.UTC()
	}
	return msg
}

// ChatRequestDTO is the body of POST /api/chat. The article context fields are
// optional: missing ones are loaded from the stored article. When history is
// empty and the session exists, the stored transcript is replayed instead.
type ChatRequestDTO struct {
	SessionID      string           `json:"sessionId,omitempty"`
	ArticleID      string           `json:"articleId" binding:"required"`
	ArticleTitle   string           `json:"articleTitle,omitempty"`
	ArticleSummary string           `json:"articleSummary,omitempty"`
	ArticleContent string           `json:"articleContent,omitempty"`
	History        []ChatMessageDTO `json:"history,omitempty"`
	Message        string           `json:"message" binding:"required" example:"Why does this matter for startups?"`
}

type ChatResponseDTO struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}

type ChatHistoryDTO struct {
	SessionID    string           `json:"sessionId"`
	ArticleID    string           `json:"articleId,omitempty"`
	ArticleTitle string           `json:"articleTitle,omitempty"`
	Messages     []ChatMessageDTO `json:"messages"`
}
