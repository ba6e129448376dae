package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"news-hub/cache"
	"news-hub/config"
	"news-hub/curator"
	"news-hub/db"
	"news-hub/enricher"
	"news-hub/eventbus"
	"news-hub/feeder"
	"news-hub/gemini"
	"news-hub/ingest"
	"news-hub/metrics"
	"news-hub/models"
	"news-hub/quota"
	"news-hub/renderer"
	"news-hub/repositories"
	"news-hub/repositories/memory"
	"news-hub/services"
	"news-hub/trace"
)

// app holds every long-lived dependency of one process. Fields that a command
// does not need stay nil.
type app struct {
	cfg     config.AppConfig
	metrics *metrics.Metrics

	mongo *db.Mongo
	redis *redis.Client
	bus   *eventbus.KafkaEventBus

	articles repositories.ArticleStore
	chats    repositories.ChatStore
	aiLogs   aiLogStore

	model   *gemini.Client
	limiter *quota.Limiter
	source  feeder.Source

	articleSvc *services.ArticleService
	chatSvc    *services.ChatService
	syncSvc    *services.SyncService
}

type aiLogStore interface {
	gemini.AILogRecorder
	ByRequest(ctx context.Context, requestID string) ([]models.AILog, error)
}

type appOptions struct {
	// withModel builds the Gemini client and everything that depends on it.
	withModel bool
	// withBus connects to Kafka when brokers are configured.
	withBus bool
}

func newApp(ctx context.Context, cfg config.AppConfig, opt appOptions) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.New()}
	ready := false
	defer func() {
		if !ready {
			a.Close(context.Background())
		}
	}()

	if err := a.openStores(ctx); err != nil {
		return nil, err
	}
	a.articleSvc = services.NewArticleService(a.articles)

	if opt.withBus && cfg.EventBus.Brokers != "" {
		bus, err := eventbus.NewKafkaEventBus(cfg.EventBus)
		if err != nil {
			return nil, err
		}
		a.bus = bus
	}

	if !opt.withModel {
		ready = true
		return a, nil
	}

	var err error
	a.limiter = quota.NewLimiter(cfg.ModelQuota)
	a.model, err = gemini.New(ctx, cfg.LLM,
		gemini.WithLimiter(a.limiter),
		gemini.WithAILogs(a.aiLogs),
		gemini.WithMetrics(a.metrics),
	)
	if err != nil {
		return nil, err
	}
	a.source, err = newSource(cfg.Feed)
	if err != nil {
		return nil, err
	}

	orchOpts := []ingest.Option{
		ingest.WithMetrics(a.metrics),
		ingest.WithBatchSize(cfg.Sync.BatchSize),
		ingest.WithHooks(ingest.HookFunc(a.logModelUsage)),
	}
	if cfg.Enrich.Enabled {
		orchOpts = append(orchOpts, ingest.WithEnricher(enricher.New(renderer.New(cfg.Enrich.Renderer, cfg.Enrich.Timeout), cfg.Enrich.Timeout)))
	}
	orch := ingest.New(a.source, curator.New(a.model), a.articles, orchOpts...)

	a.syncSvc = services.NewSyncService(orch, a.publisher(), cfg.Sync.DefaultCount)
	a.chatSvc = services.NewChatService(a.model, a.chats, a.articles, a.metrics)
	ready = true
	return a, nil
}

func (a *app) openStores(ctx context.Context) error {
	switch a.cfg.Storage {
	case config.StorageMemory:
		a.articles = memory.NewArticleRepository()
		a.chats = memory.NewChatRepository()
		a.aiLogs = memory.NewAILogRepository()
	case config.StorageMongo:
		m, err := db.Connect(ctx, a.cfg.Mongo)
		if err != nil {
			return err
		}
		a.mongo = m
		a.articles = repositories.NewArticleRepository(m.DB)
		a.chats = repositories.NewChatRepository(m.DB)
		a.aiLogs = repositories.NewAILogRepository(m.DB)
	default:
		return fmt.Errorf("unknown storage %q (want %s or %s)", a.cfg.Storage, config.StorageMongo, config.StorageMemory)
	}

	if a.cfg.Redis.Addr == "" {
		return nil
	}
	rdb, err := cache.Connect(ctx, a.cfg.Redis)
	if err != nil {
		// 캐시는 선택 사항이라 연결 실패 시 캐시 없이 계속한다.
		config.WarnWithFields("article cache disabled", config.Fields{"error": err.Error()})
		return nil
	}
	a.redis = rdb
	a.articles = cache.NewArticleStore(a.articles, rdb, a.cfg.Redis.TTL, a.metrics)
	return nil
}

// logModelUsage 는 sync 한 번에 쓰인 모델 호출 수와 토큰을 ai_logs 에서 모아 남긴다.
func (a *app) logModelUsage(ctx context.Context, r ingest.Report) {
	requestID := trace.RequestIDFromContext(ctx)
	logs, err := a.aiLogs.ByRequest(ctx, requestID)
	if err != nil {
		config.WarnWithFields("model usage lookup failed", config.Fields{"request_id": requestID, "error": err.Error()})
		return
	}
	u := summarizeModelUsage(logs)
	config.InfoWithFields("sync model usage", config.Fields{
		"request_id":    requestID,
		"calls":         u.calls,
		"failed_calls":  u.failed,
		"tokens":        u.tokens,
		"articles_new":  r.Created,
		"articles_seen": r.Created + r.Updated,
	})
}

type modelUsage struct {
	calls, failed int
	tokens        int64
}

func summarizeModelUsage(logs []models.AILog) modelUsage {
	var u modelUsage
	for _, l := range logs {
		u.calls++
		if l.Failed() {
			u.failed++
		}
		u.tokens += l.Usage.Total
	}
	return u
}

// publisher avoids handing a typed nil *KafkaEventBus to services.
func (a *app) publisher() eventbus.Publisher {
	if a.bus == nil {
		return nil
	}
	return a.bus
}

func (a *app) Close(ctx context.Context) {
	if a.bus != nil {
		a.bus.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.mongo != nil {
		if err := a.mongo.Close(ctx); err != nil {
			config.WarnWithFields("mongo disconnect failed", config.Fields{"error": err.Error()})
		}
	}
}

// newSource builds the configured feed: NewsAPI, the RSS list, or both.
func newSource(cfg config.FeedConfig) (feeder.Source, error) {
	var rss []feeder.Source
	for _, f := range cfg.RSS {
		rss = append(rss, feeder.NewRSSSource(f.Name, f.URL))
	}

	switch cfg.Provider {
	case "newsapi":
		return feeder.NewNewsAPIClient(cfg.NewsAPI), nil
	case "rss":
		if len(rss) == 0 {
			return nil, fmt.Errorf("feed provider rss needs at least one feed.rss entry")
		}
		return feeder.MultiSource{Sources: rss}, nil
	case "both":
		return feeder.MultiSource{Sources: append([]feeder.Source{feeder.NewNewsAPIClient(cfg.NewsAPI)}, rss...)}, nil
	default:
		return nil, fmt.Errorf("unknown feed provider %q", cfg.Provider)
	}
}
