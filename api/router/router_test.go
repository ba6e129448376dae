package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-hub/api/handlers"
	"news-hub/api/router"
	"news-hub/curator"
	"news-hub/dto"
	"news-hub/eventbus"
	"news-hub/feeder"
	"news-hub/gemini"
	"news-hub/ingest"
	"news-hub/metrics"
	"news-hub/models"
	"news-hub/repositories/memory"
	"news-hub/services"
)

type fakeSource struct {
	items []models.RawArticle
	err   error
}

func (f *fakeSource) Name() string { return "fake" }
func (f *fakeSource) Fetch(context.Context, int) ([]models.RawArticle, error) {
	return f.items, f.err
}

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) Generate(context.Context, curator.Prompt) (*curator.Generation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &curator.Generation{Text: f.text, Model: "fake"}, nil
}

type fakeChatModel struct {
	reply string
	err   error
}

func (f *fakeChatModel) Chat(context.Context, string, []models.Message, string) (string, error) {
	return f.reply, f.err
}

type recordingPublisher struct{ events []eventbus.Event }

func (r *recordingPublisher) Publish(_ context.Context, _ string, evt eventbus.Event) error {
	r.events = append(r.events, evt)
	return nil
}

type env struct {
	engine   *gin.Engine
	source   *fakeSource
	gen      *fakeGenerator
	chat     *fakeChatModel
	pub      *recordingPublisher
	articles *memory.ArticleRepository
	metrics  *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	e := &env{
		source:   &fakeSource{},
		gen:      &fakeGenerator{},
		chat:     &fakeChatModel{reply: "It matters because..."},
		pub:      &recordingPublisher{},
		articles: memory.NewArticleRepository(),
		metrics:  metrics.New(),
	}
	chats := memory.NewChatRepository()
	orch := ingest.New(e.source, curator.New(e.gen), e.articles, ingest.WithMetrics(e.metrics))

	e.engine = router.New(router.Deps{
		Articles: services.NewArticleService(e.articles),
		Chat:     services.NewChatService(e.chat, chats, e.articles, e.metrics),
		Sync:     services.NewSyncService(orch, e.pub, 10),
		Metrics:  e.metrics,
		Health: map[string]handlers.HealthCheck{
			"store": func(context.Context) error { return nil },
		},
	})
	return e
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func raws(n int) []models.RawArticle {
	out := make([]models.RawArticle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.RawArticle{
			Source:      models.RawSource{Name: "TechCrunch"},
			Title:       fmt.Sprintf("Story %d", i),
			Content:     "body",
			URL:         fmt.Sprintf("https://techcrunch.com/%d", i),
			PublishedAt: fmt.Sprintf("2024-05-0%dT10:00:00Z", i+1),
		})
	}
	return out
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[dto.HealthDTO](t, w).Status)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestSyncThenReadArticles(t *testing.T) {
	e := newEnv(t)
	e.source.items = raws(3)
	e.gen.text = "```json\n" + `[{"index":2,"category":"AI","quickSummary":"two"},{"index":0,"category":"funding","quickSummary":"zero"}]` + "\n```"

	w := e.do(t, http.MethodPost, "/api/sync?count=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sync := decode[dto.SyncResponseDTO](t, w)
	assert.Equal(t, 3, sync.FetchedFromAPI)
	assert.Equal(t, 2, sync.AISelected)
	assert.Equal(t, 2, sync.NewInDB)
	require.Len(t, e.pub.events, 1, "completion is announced")
	assert.Equal(t, "sync.completed", e.pub.events[0].Type)

	w = e.do(t, http.MethodGet, "/api/articles?category=ai", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.ArticleListDTO](t, w)
	assert.EqualValues(t, 1, list.Total)
	require.Len(t, list.Articles, 1)
	assert.Equal(t, "Story 2", list.Articles[0].Title)
	assert.Equal(t, "2024-05-03T10:00:00Z", list.Articles[0].DatePosted)

	w = e.do(t, http.MethodGet, "/api/articles", nil)
	list = decode[dto.ArticleListDTO](t, w)
	require.Len(t, list.Articles, 2)
	assert.Equal(t, 30, list.Limit)

	w = e.do(t, http.MethodGet, "/api/articles/"+list.Articles[1].ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[dto.ArticleDTO](t, w)
	assert.Equal(t, "Funding", detail.Category)
	assert.Equal(t, "body", detail.OriginalContent)

	w = e.do(t, http.MethodGet, "/api/articles/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncErrors(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		setup  func(e *env)
		status int
		stage  string
	}{
		{name: "count too large", query: "count=21", status: http.StatusBadRequest, stage: "validate"},
		{name: "count not a number", query: "count=ten", status: http.StatusBadRequest},
		{name: "count zero", query: "count=0", status: http.StatusBadRequest},
		{
			name:   "feed down",
			query:  "count=2",
			setup:  func(e *env) { e.source.err = fmt.Errorf("%w: 401", feeder.ErrFeedUnavailable) },
			status: http.StatusBadGateway,
			stage:  "fetch",
		},
		{
			name:   "malformed model output",
			query:  "count=2",
			setup:  func(e *env) { e.source.items = raws(3); e.gen.text = "I cannot help" },
			status: http.StatusBadGateway,
			stage:  "curate",
		},
		{
			name:   "quota exhausted",
			query:  "count=2",
			setup:  func(e *env) { e.source.items = raws(3); e.gen.err = gemini.ErrQuotaExhausted },
			status: http.StatusTooManyRequests,
			stage:  "curate",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			if tc.setup != nil {
				tc.setup(e)
			}
			w := e.do(t, http.MethodPost, "/api/sync?"+tc.query, nil)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			if tc.stage != "" {
				body := decode[dto.SyncErrorDTO](t, w)
				assert.Equal(t, tc.stage, body.Stage)
				if tc.stage == "curate" {
					assert.Equal(t, 3, body.Fetched)
				}
			}
		})
	}
}

func TestSyncAsync(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/api/sync?count=4&async=true", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	accepted := decode[dto.SyncAcceptedDTO](t, w)
	assert.Equal(t, 4, accepted.Count)
	require.Len(t, e.pub.events, 1)
	assert.Equal(t, "sync.requested", e.pub.events[0].Type)
	assert.Equal(t, w.Header().Get("X-Request-Id"), e.pub.events[0].RequestID)
}

func TestChat(t *testing.T) {
	e := newEnv(t)
	_, err := e.articles.Upsert(context.Background(), []models.Article{{
		Title: "Chips", SourceURL: "https://example.com/chips", Category: models.CategoryAI, QuickSummary: "q",
	}})
	require.NoError(t, err)
	articleID := models.ArticleID("https://example.com/chips", "")

	w := e.do(t, http.MethodPost, "/api/chat", map[string]any{"articleId": articleID, "message": "why?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reply := decode[dto.ChatResponseDTO](t, w)
	assert.Equal(t, "It matters because...", reply.Reply)
	require.NotEmpty(t, reply.SessionID)

	w = e.do(t, http.MethodGet, "/api/chat/"+reply.SessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[dto.ChatHistoryDTO](t, w)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "why?", history.Messages[0].Text)

	w = e.do(t, http.MethodGet, "/api/chat/unknown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessionId":"unknown","messages":[]}`, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/chat", map[string]any{"articleId": articleID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.chat.err = errors.New("upstream 503")
	w = e.do(t, http.MethodPost, "/api/chat", map[string]any{"articleId": articleID, "message": "again"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodGet, "/api/articles/abc", nil)

	w := e.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `newshub_http_requests_total{method="GET",route="/api/articles/:id",status="404"} 1`), w.Body.String())
}
