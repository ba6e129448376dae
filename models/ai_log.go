package models

import (
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Purposes recorded on every model call.
const (
	AIPurposeCuration = "curation"
	AIPurposeChat     = "chat"
	AIPurposeCheck    = "check"
)

// maxLoggedResponse caps AILog.Response; prompts are stored whole.
const maxLoggedResponse = 4000

// TokenUsage mirrors the usage block the model returns.
type TokenUsage struct {
	Input  int64 `bson:"input" json:"input"`
	Output int64 `bson:"output" json:"output"`
	Total  int64 `bson:"total" json:"total"`
}

// AILog is one model call, success or failure (collection ai_logs).
type AILog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID    string             `bson:"requestId,omitempty" json:"requestId,omitempty"`
	Purpose      string             `bson:"purpose" json:"purpose"`
	Model        string             `bson:"model" json:"model"`
	ModelVersion string             `bson:"modelVersion,omitempty" json:"modelVersion,omitempty"`
	Usage        TokenUsage         `bson:"usage" json:"usage"`
	LatencyMs    int64              `bson:"latencyMs" json:"latencyMs"`
	Prompt       string             `bson:"prompt" json:"prompt"`
	Response     string             `bson:"response,omitempty" json:"response,omitempty"`
	Error        string             `bson:"error,omitempty" json:"error,omitempty"`
	RequestedAt  time.Time          `bson:"requestedAt" json:"requestedAt"`
}

// Failed reports whether the call ended in an error.
func (l AILog) Failed() bool { return l.Error != "" }

// SetResponse stores at most maxLoggedResponse bytes, cut on a rune boundary.
func (l *AILog) SetResponse(text string) {
	if len(text) <= maxLoggedResponse {
		l.Response = text
		return
	}
	cut := maxLoggedResponse
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	l.Response = text[:cut]
}
