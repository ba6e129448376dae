package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"news-hub/config"
	"news-hub/dto"
	"news-hub/metrics"
	"news-hub/models"
	"news-hub/repositories"
	"news-hub/trace"
)

var (
	ErrEmptyMessage    = errors.New("message is required")
	ErrArticleRequired = errors.New("articleId is required")
	ErrChatUnavailable = errors.New("chat model unavailable")
	ErrSessionMismatch = errors.New("session belongs to another article")
)

// ChatModel answers one user message about an article. *gemini.Client implements it.
type ChatModel interface {
	Chat(ctx context.Context, system string, history []models.Message, message string) (string, error)
}

type ChatService struct {
	model    ChatModel
	chats    repositories.ChatStore
	articles repositories.ArticleStore
	metrics  *metrics.Metrics
	now      func() time.Time
	newID    func() string
}

func NewChatService(model ChatModel, chats repositories.ChatStore, articles repositories.ArticleStore, m *metrics.Metrics) *ChatService {
	return &ChatService{
		model:    model,
		chats:    chats,
		articles: articles,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// ChatSystemPrompt builds the instruction that grounds the model in the article being read.
func ChatSystemPrompt(title, summary, content string) string {
	var b strings.Builder
	b.WriteString("You are a knowledgeable AI news assistant. The user is reading the article below. ")
	b.WriteString("Answer their questions in depth using the article context. ")
	b.WriteString("Be insightful and add relevant analysis. Keep responses under 200 words.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", title)
	fmt.Fprintf(&b, "Summary: %s\n", summary)
	fmt.Fprintf(&b, "Full Content: %s\n", content)
	return b.String()
}

// Reply answers req.Message and appends the user turn and the model turn to
// the session. A new session id is issued when the request has none.
func (s *ChatService) Reply(ctx context.Context, req dto.ChatRequestDTO) (dto.ChatResponseDTO, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return dto.ChatResponseDTO{}, ErrEmptyMessage
	}
	if strings.TrimSpace(req.ArticleID) == "" {
		return dto.ChatResponseDTO{}, ErrArticleRequired
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = s.newID()
	}

	title, summary, content, err := s.articleContext(ctx, req)
	if err != nil {
		return dto.ChatResponseDTO{}, err
	}

	history, err := s.history(ctx, sessionID, req)
	if err != nil {
		return dto.ChatResponseDTO{}, err
	}

	userTurn := models.Message{Text: message, IsUser: true, Timestamp: s.now()}
	reply, err := s.model.Chat(ctx, ChatSystemPrompt(title, summary, content), history, message)
	if err != nil {
		return dto.ChatResponseDTO{}, fmt.Errorf("%w: %w", ErrChatUnavailable, err)
	}
	modelTurn := models.Message{Text: reply, IsUser: false, Timestamp: s.now()}

	// 모델 응답은 이미 받았으므로 저장 실패는 응답을 막지 않는다.
	for _, turn := range []models.Message{userTurn, modelTurn} {
		turn.ID = s.newID()
		if err := s.chats.AppendMessage(ctx, sessionID, req.ArticleID, title, turn); err != nil {
			config.ErrorWithFields("chat append failed", config.Fields{
				"request_id": trace.RequestIDFromContext(ctx),
				"session_id": sessionID,
				"error":      err.Error(),
			})
			break
		}
		s.metrics.ChatMessage()
	}

	return dto.ChatResponseDTO{Reply: reply, SessionID: sessionID}, nil
}

// articleContext fills the fields the client left out from the stored article.
// An unknown article is fine as long as the client sent a title.
func (s *ChatService) articleContext(ctx context.Context, req dto.ChatRequestDTO) (string, string, string, error) {
	title, summary, content := req.ArticleTitle, req.ArticleSummary, req.ArticleContent
	if title != "" && summary != "" && content != "" {
		return title, summary, content, nil
	}
	a, err := s.articles.FindByID(ctx, req.ArticleID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		if title == "" {
			return "", "", "", err
		}
		return title, summary, content, nil
	case err != nil:
		return "", "", "", err
	}
	if title == "" {
		title = a.Title
	}
	if summary == "" {
		summary = firstNonEmpty(a.DetailedSummary, a.QuickSummary)
	}
	if content == "" {
		content = a.OriginalContent
	}
	return title, summary, content, nil
}

func (s *ChatService) history(ctx context.Context, sessionID string, req dto.ChatRequestDTO) ([]models.Message, error) {
	sess, err := s.chats.FindSession(ctx, sessionID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		sess = nil
	case err != nil:
		return nil, err
	}
	// 클라이언트가 history 를 보내도 세션의 기사와는 맞아야 한다.
	if sess != nil && sess.ArticleID != "" && sess.ArticleID != req.ArticleID {
		return nil, ErrSessionMismatch
	}
	if len(req.History) > 0 {
		out := make([]models.Message, 0, len(req.History))
		for _, m := range req.History {
			out = append(out, m.ToModel())
		}
		return out, nil
	}
	if sess == nil {
		return nil, nil
	}
	return sess.Messages, nil
}

// History returns the stored transcript; an unknown session is an empty list.
func (s *ChatService) History(ctx context.Context, sessionID string) (dto.ChatHistoryDTO, error) {
	out := dto.ChatHistoryDTO{SessionID: sessionID, Messages: []dto.ChatMessageDTO{}}
	sess, err := s.chats.FindSession(ctx, sessionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	out.ArticleID = sess.ArticleID
	out.ArticleTitle = sess.ArticleTitle
	for _, m := range sess.Messages {
		out.Messages = append(out.Messages, dto.NewChatMessageDTO(m))
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
