package models

import "time"

// Message is one chat turn.
type Message struct {
	ID        string    `bson:"id" json:"id"`
	Text      string    `bson:"text" json:"text"`
	IsUser    bool      `bson:"isUser" json:"isUser"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// ChatSession is the append-only transcript of one conversation about an article
// Collection: chats (unique sessionId)
type ChatSession struct {
	SessionID    string    `bson:"sessionId" json:"sessionId"`
	ArticleID    string    `bson:"articleId" json:"articleId"`
	ArticleTitle string    `bson:"articleTitle" json:"articleTitle"`
	Messages     []Message `bson:"messages" json:"messages"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
