package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"news-hub/config"
	"news-hub/metrics"
	"news-hub/models"
	"news-hub/repositories"
)

const (
	keyPrefix  = "newshub:articles"
	versionKey = keyPrefix + ":version"
)

// ArticleStore wraps a repositories.ArticleStore with a versioned Redis cache.
// Every Upsert that writes at least one article bumps the version, so all
// cached pages and details become unreachable at once and expire by TTL.
// Redis failures are logged and fall through to the wrapped store.
type ArticleStore struct {
	next    repositories.ArticleStore
	rdb     redis.Cmdable
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewArticleStore(next repositories.ArticleStore, rdb redis.Cmdable, ttl time.Duration, m *metrics.Metrics) *ArticleStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ArticleStore{next: next, rdb: rdb, ttl: ttl, metrics: m}
}

var _ repositories.ArticleStore = (*ArticleStore)(nil)

type cachedPage struct {
	Items []models.Article `json:"items"`
	Total int64            `json:"total"`
}

func listKey(version int64, opt repositories.ListArticlesOptions) string {
	return fmt.Sprintf("%s:v%d:list:%s:%d:%d", keyPrefix, version, url.QueryEscape(opt.Category), opt.Limit, opt.Page)
}

func detailKey(version int64, id string) string {
	return fmt.Sprintf("%s:v%d:id:%s", keyPrefix, version, id)
}

func (s *ArticleStore) version(ctx context.Context) (int64, error) {
	v, err := s.rdb.Get(ctx, versionKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

// Invalidate makes every cached entry stale.
func (s *ArticleStore) Invalidate(ctx context.Context) error {
	return s.rdb.Incr(ctx, versionKey).Err()
}

func (s *ArticleStore) Upsert(ctx context.Context, articles []models.Article) (repositories.UpsertResult, error) {
	res, err := s.next.Upsert(ctx, articles)
	if res.Written() > 0 {
		if ierr := s.Invalidate(context.WithoutCancel(ctx)); ierr != nil {
			config.WarnWithFields("article cache invalidation failed", config.Fields{"error": ierr.Error()})
		}
	}
	return res, err
}

func (s *ArticleStore) List(ctx context.Context, opt repositories.ListArticlesOptions) ([]models.Article, int64, error) {
	opt = opt.Normalize()
	ver, err := s.version(ctx)
	if err != nil {
		s.lookupFailed("list", err)
		return s.next.List(ctx, opt)
	}
	key := listKey(ver, opt)

	var page cachedPage
	if s.get(ctx, key, &page) {
		return page.Items, page.Total, nil
	}

	items, total, err := s.next.List(ctx, opt)
	if err != nil {
		return nil, 0, err
	}
	s.set(ctx, key, cachedPage{Items: items, Total: total})
	return items, total, nil
}

func (s *ArticleStore) FindByID(ctx context.Context, id string) (*models.Article, error) {
	ver, err := s.version(ctx)
	if err != nil {
		s.lookupFailed("detail", err)
		return s.next.FindByID(ctx, id)
	}
	key := detailKey(ver, id)

	var a models.Article
	if s.get(ctx, key, &a) {
		return &a, nil
	}

	found, err := s.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.set(ctx, key, found)
	return found, nil
}

// get은 hit 여부만 돌려준다. 에러와 깨진 값은 miss 로 취급한다.
func (s *ArticleStore) get(ctx context.Context, key string, out any) bool {
	data, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		s.metrics.CacheLookup("miss")
		return false
	case err != nil:
		s.lookupFailed(key, err)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.lookupFailed(key, err)
		return false
	}
	s.metrics.CacheLookup("hit")
	return true
}

func (s *ArticleStore) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		config.WarnWithFields("article cache write failed", config.Fields{"key": key, "error": err.Error()})
	}
}

func (s *ArticleStore) lookupFailed(key string, err error) {
	s.metrics.CacheLookup("error")
	config.WarnWithFields("article cache lookup failed", config.Fields{"key": key, "error": err.Error()})
}
