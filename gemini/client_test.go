package gemini

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"news-hub/config"
	"news-hub/curator"
	"news-hub/models"
	"news-hub/quota"
)

type memoryLogs struct {
	mu   sync.Mutex
	logs []models.AILog
}

func (m *memoryLogs) Insert(_ context.Context, log models.AILog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

type captured struct {
	model    string
	contents []*genai.Content
	cfg      *genai.GenerateContentConfig
}

func fakeGenerate(text string, err error, got *captured) generateFunc {
	return func(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		got.model, got.contents, got.cfg = model, contents, cfg
		if err != nil {
			return nil, err
		}
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
			}},
			UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount:     10,
				CandidatesTokenCount: 5,
				TotalTokenCount:      15,
			},
			ModelVersion: "gemini-2.0-flash-001",
		}, nil
	}
}

func TestGenerate_JSONPromptAndLog(t *testing.T) {
	var got captured
	logs := &memoryLogs{}
	c := &Client{model: "gemini-2.0-flash", logs: logs, generate: fakeGenerate(`[]`, nil, &got)}

	gen, err := c.Generate(context.Background(), curator.Prompt{
		Purpose: models.AIPurposeCuration,
		System:  "sys",
		Text:    "pick articles",
		JSON:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", gen.Text)
	assert.Equal(t, "gemini-2.0-flash-001", gen.Model)

	assert.Equal(t, "gemini-2.0-flash", got.model)
	assert.Equal(t, "application/json", got.cfg.ResponseMIMEType)
	require.NotNil(t, got.cfg.SystemInstruction)
	assert.Equal(t, "sys", got.cfg.SystemInstruction.Parts[0].Text)

	require.Len(t, logs.logs, 1)
	l := logs.logs[0]
	assert.Equal(t, models.AIPurposeCuration, l.Purpose)
	assert.Equal(t, models.TokenUsage{Input: 10, Output: 5, Total: 15}, l.Usage)
	assert.Equal(t, "[]", l.Response)
	assert.False(t, l.Failed())
}

func TestGenerate_TransportError(t *testing.T) {
	var got captured
	logs := &memoryLogs{}
	cause := errors.New("503 unavailable")
	c := &Client{model: "m", logs: logs, generate: fakeGenerate("", cause, &got)}

	_, err := c.Generate(context.Background(), curator.Prompt{Text: "x"})
	assert.ErrorIs(t, err, cause)
	require.Len(t, logs.logs, 1)
	assert.True(t, logs.logs[0].Failed())
	assert.Contains(t, logs.logs[0].Error, "503")
}

func TestGenerate_EmptyText(t *testing.T) {
	var got captured
	c := &Client{model: "m", generate: fakeGenerate("  ", nil, &got)}

	_, err := c.Generate(context.Background(), curator.Prompt{Text: "x"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerate_QuotaExhausted(t *testing.T) {
	var got captured
	c := &Client{
		model:    "m",
		limiter:  quota.NewLimiter(config.QuotaConfig{RequestsPerDay: 1}),
		generate: fakeGenerate("ok", nil, &got),
	}

	_, err := c.Generate(context.Background(), curator.Prompt{Text: "x"})
	require.NoError(t, err)
	_, err = c.Generate(context.Background(), curator.Prompt{Text: "x"})
	assert.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestChat_MapsHistoryRoles(t *testing.T) {
	var got captured
	c := &Client{model: "m", generate: fakeGenerate("answer", nil, &got)}

	history := []models.Message{
		{Text: "what is this about?", IsUser: true},
		{Text: "it is about chips", IsUser: false},
		{Text: "", IsUser: true},
	}
	reply, err := c.Chat(context.Background(), "context prompt", history, "why does it matter?")
	require.NoError(t, err)
	assert.Equal(t, "answer", reply)

	require.Len(t, got.contents, 3)
	assert.Equal(t, "user", got.contents[0].Role)
	assert.Equal(t, "model", got.contents[1].Role)
	assert.Equal(t, "user", got.contents[2].Role)
	assert.Equal(t, "why does it matter?", got.contents[2].Parts[0].Text)
	assert.Equal(t, "context prompt", got.cfg.SystemInstruction.Parts[0].Text)
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), config.LLMConfig{Provider: "google"})
	assert.Error(t, err)

	_, err = New(context.Background(), config.LLMConfig{Provider: "openai", APIKey: "k"})
	assert.Error(t, err)
}
