package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"SERVICE_NAME", "LOG_LEVEL", "HTTP_ADDR", "STORAGE", "MONGO_URI", "MONGO_DB",
		"NEWS_API_KEY", "NEWS_API_BASE", "GEMINI_API_KEY", "GEMINI_MODEL",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "KAFKA_BOOTSTRAP_SERVERS", "KAFKA_GROUP_ID",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaultsWithoutFiles(t *testing.T) {
	clearEnv(t)

	c, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "news-hub", c.ServiceName)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, StorageMongo, c.Storage)
	assert.Equal(t, "newshub", c.Mongo.Database)
	assert.Equal(t, "newsapi", c.Feed.Provider)
	assert.Equal(t, DefaultTechSources, c.Feed.NewsAPI.Sources)
	assert.Equal(t, 10, c.Sync.DefaultCount)
	assert.Equal(t, 40, c.Sync.BatchSize)
	assert.Equal(t, 5*time.Minute, c.Redis.TTL)
	assert.Equal(t, "newshub-worker", c.EventBus.GroupID)
	assert.Empty(t, c.Redis.Addr)
	assert.Empty(t, c.EventBus.Brokers)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yml := `
storage: memory
server:
  addr: ":9000"
  write_timeout: 30s
feed:
  provider: both
  rss:
    - name: hn
      url: https://news.ycombinator.com/rss
sync:
  default_count: 5
redis:
  addr: localhost:6379
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, CONFIG_FILE), []byte(yml), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ENV_FILE), []byte("GEMINI_API_KEY=from-dotenv\n"), 0o644))
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("REDIS_DB", "2")

	c, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, c.Storage)
	assert.Equal(t, ":7000", c.Server.Addr, "env wins over yaml")
	assert.Equal(t, 30*time.Second, c.Server.WriteTimeout)
	assert.Equal(t, "both", c.Feed.Provider)
	require.Len(t, c.Feed.RSS, 1)
	assert.Equal(t, "hn", c.Feed.RSS[0].Name)
	assert.Equal(t, 5, c.Sync.DefaultCount)
	assert.Equal(t, "localhost:6379", c.Redis.Addr)
	assert.Equal(t, 2, c.Redis.DB)
	assert.Equal(t, "from-dotenv", c.LLM.APIKey)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CONFIG_FILE), []byte("server: [unterminated"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestWithServiceName(t *testing.T) {
	t.Setenv("SERVICE_NAME", "newshub-api")

	f := withServiceName(nil)
	assert.Equal(t, "newshub-api", f["service_name"])

	f = withServiceName(Fields{"service_name": "explicit"})
	assert.Equal(t, "explicit", f["service_name"])
}
