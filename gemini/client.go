package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"news-hub/config"
	"news-hub/curator"
	"news-hub/httpclient"
	"news-hub/metrics"
	"news-hub/models"
	"news-hub/quota"
	"news-hub/trace"
)

var (
	ErrQuotaExhausted = errors.New("model daily quota exhausted")
	ErrEmptyResponse  = errors.New("model returned no text")
)

// AILogRecorder persists one record per model call.
type AILogRecorder interface {
	Insert(ctx context.Context, log models.AILog) error
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client is the Gemini backed text model used for curation and article chat.
type Client struct {
	model    string
	limiter  *quota.Limiter
	logs     AILogRecorder
	metrics  *metrics.Metrics
	generate generateFunc
}

type Option func(*Client)

func WithLimiter(l *quota.Limiter) Option   { return func(c *Client) { c.limiter = l } }
func WithAILogs(r AILogRecorder) Option     { return func(c *Client) { c.logs = r } }
func WithMetrics(m *metrics.Metrics) Option { return func(c *Client) { c.metrics = m } }

func New(ctx context.Context, cfg config.LLMConfig, opts ...Option) (*Client, error) {
	if cfg.Provider != "" && cfg.Provider != "google" {
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpclient.New(httpclient.Config{Timeout: cfg.Timeout}),
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		model:    cfg.ModelName,
		generate: gc.Models.GenerateContent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Model() string { return c.model }

// Generate implements curator.Generator.
func (c *Client) Generate(ctx context.Context, p curator.Prompt) (*curator.Generation, error) {
	gcfg := &genai.GenerateContentConfig{}
	if p.System != "" {
		gcfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: p.System}}}
	}
	if p.JSON {
		gcfg.ResponseMIMEType = "application/json"
	}

	text, version, err := c.call(ctx, p.Purpose, p.System, p.Text, genai.Text(p.Text), gcfg)
	if err != nil {
		return nil, err
	}
	return &curator.Generation{Text: text, Model: version}, nil
}

// Chat answers message in the context of system, replaying history as
// alternating user/model turns.
func (c *Client) Chat(ctx context.Context, system string, history []models.Message, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		role := "model"
		if m.IsUser {
			role = "user"
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: m.Text}}})
	}
	contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: message}}})

	gcfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	}
	text, _, err := c.call(ctx, models.AIPurposeChat, system, message, contents, gcfg)
	return text, err
}

func (c *Client) call(ctx context.Context, purpose, system, input string, contents []*genai.Content, gcfg *genai.GenerateContentConfig) (string, string, error) {
	ok, err := c.limiter.WaitAndReserve(ctx)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", ErrQuotaExhausted
	}

	requestedAt := time.Now()
	resp, err := c.generate(ctx, c.model, contents, gcfg)
	completedAt := time.Now()

	log := models.AILog{
		RequestID:   trace.RequestIDFromContext(ctx),
		Purpose:     purpose,
		Model:       c.model,
		LatencyMs:   completedAt.Sub(requestedAt).Milliseconds(),
		Prompt:      fmt.Sprintf("%s\n\n%s", system, input),
		RequestedAt: requestedAt,
	}

	var text string
	if err == nil && resp != nil {
		text = resp.Text()
		log.SetResponse(text)
		log.ModelVersion = resp.ModelVersion
		if u := resp.UsageMetadata; u != nil {
			log.Usage = models.TokenUsage{
				Input:  int64(u.PromptTokenCount),
				Output: int64(u.CandidatesTokenCount),
				Total:  int64(u.TotalTokenCount),
			}
		}
		if strings.TrimSpace(text) == "" {
			err = ErrEmptyResponse
		}
	} else if err == nil {
		err = ErrEmptyResponse
	}
	if err != nil {
		log.Error = err.Error()
	}

	c.metrics.ObserveModelCall(purpose, err, completedAt.Sub(requestedAt), log.Usage.Input, log.Usage.Output)
	c.record(ctx, log)

	if err != nil {
		config.ErrorWithFields("model call failed", config.Fields{
			"purpose": purpose,
			"model":   c.model,
			"error":   err.Error(),
		})
		return "", "", err
	}

	version := log.ModelVersion
	if version == "" {
		version = c.model
	}
	return text, version, nil
}

func (c *Client) record(ctx context.Context, log models.AILog) {
	if c.logs == nil {
		return
	}
	// 호출이 취소되어도 로그는 남긴다.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := c.logs.Insert(ctx, log); err != nil {
		config.Logger.Warnf("failed to insert ai log: %v", err)
	}
}

// Ping sends a minimal prompt and expects the fixed reply back.
func (c *Client) Ping(ctx context.Context) (string, error) {
	text, _, err := c.call(ctx, models.AIPurposeCheck, "", "Reply with exactly: CONNECTION_OK",
		genai.Text("Reply with exactly: CONNECTION_OK"), &genai.GenerateContentConfig{})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
