// Package memory holds in-process stores with the same contracts as the Mongo
// repositories. Used by tests and by `storage: memory` for local runs.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"news-hub/models"
	"news-hub/repositories"
)

type ArticleRepository struct {
	mu       sync.RWMutex
	articles map[string]models.Article
	now      func() time.Time
	// failIDs lets tests force per-item write failures.
	failIDs map[string]error
}

func NewArticleRepository() *ArticleRepository {
	return &ArticleRepository{
		articles: make(map[string]models.Article),
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (r *ArticleRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// FailOn makes writes of the given article id fail with err.
func (r *ArticleRepository) FailOn(id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failIDs == nil {
		r.failIDs = make(map[string]error)
	}
	r.failIDs[id] = err
}

func (r *ArticleRepository) Upsert(ctx context.Context, articles []models.Article) (repositories.UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res repositories.UpsertResult
	var errs []error
	now := r.now().UTC()
	for i, in := range articles {
		if err := ctx.Err(); err != nil {
			res.Failed += len(articles) - i
			errs = append(errs, err)
			break
		}
		a := repositories.PrepareArticle(in, now)
		if err, ok := r.failIDs[a.ID]; ok {
			res.Failed++
			errs = append(errs, err)
			continue
		}
		if prev, ok := r.articles[a.ID]; ok {
			a.CreatedAt = prev.CreatedAt
			res.Updated++
		} else {
			a.CreatedAt = now
			res.Created++
		}
		r.articles[a.ID] = a
	}
	return res, errors.Join(errs...)
}

func (r *ArticleRepository) List(_ context.Context, opt repositories.ListArticlesOptions) ([]models.Article, int64, error) {
	opt = opt.Normalize()

	r.mu.RLock()
	matched := make([]models.Article, 0, len(r.articles))
	for _, a := range r.articles {
		if repositories.MatchCategory(a.Category, opt.Category) {
			matched = append(matched, cardOnly(a))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].DatePosted.Equal(matched[j].DatePosted) {
			return matched[i].DatePosted.After(matched[j].DatePosted)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := opt.Skip()
	if start >= len(matched) {
		return []models.Article{}, total, nil
	}
	end := start + opt.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *ArticleRepository) FindByID(_ context.Context, id string) (*models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.articles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

// cardOnly mirrors the Mongo list projection.
func cardOnly(a models.Article) models.Article {
	return models.Article{
		ID:            a.ID,
		Title:         a.Title,
		CoverImage:    a.CoverImage,
		PublisherName: a.PublisherName,
		PublisherLogo: a.PublisherLogo,
		AuthorName:    a.AuthorName,
		SourceURL:     a.SourceURL,
		Category:      a.Category,
		QuickSummary:  a.QuickSummary,
		DatePosted:    a.DatePosted,
	}
}

type ChatRepository struct {
	mu       sync.Mutex
	sessions map[string]*models.ChatSession
	now      func() time.Time
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{
		sessions: make(map[string]*models.ChatSession),
		now:      time.Now,
	}
}

func (r *ChatRepository) AppendMessage(_ context.Context, sessionID, articleID, articleTitle string, msg models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	msg = repositories.DefaultMessage(msg, uuid.NewString, now)

	s, ok := r.sessions[sessionID]
	if !ok {
		s = &models.ChatSession{SessionID: sessionID, CreatedAt: now}
		r.sessions[sessionID] = s
	}
	s.ArticleID = articleID
	s.ArticleTitle = articleTitle
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = now
	return nil
}

func (r *ChatRepository) GetHistory(_ context.Context, sessionID string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return []models.Message{}, nil
	}
	out := make([]models.Message, len(s.Messages))
	copy(out, s.Messages)
	return out, nil
}

func (r *ChatRepository) FindSession(_ context.Context, sessionID string) (*models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	cp.Messages = append([]models.Message(nil), s.Messages...)
	return &cp, nil
}

// AILogRepository keeps model call logs in memory.
type AILogRepository struct {
	mu   sync.Mutex
	logs []models.AILog
}

func NewAILogRepository() *AILogRepository { return &AILogRepository{} }

func (r *AILogRepository) Insert(_ context.Context, log models.AILog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.RequestedAt.IsZero() {
		log.RequestedAt = time.Now()
	}
	r.logs = append(r.logs, log)
	return nil
}

// ByRequest returns the calls recorded for one request id, oldest first.
func (r *AILogRepository) ByRequest(_ context.Context, requestID string) ([]models.AILog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.AILog{}
	for _, l := range r.logs {
		if l.RequestID == requestID {
			out = append(out, l)
		}
	}
	return out, nil
}

var (
	_ repositories.ArticleStore = (*ArticleRepository)(nil)
	_ repositories.ChatStore    = (*ChatRepository)(nil)
)
