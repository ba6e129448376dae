package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type AppConfig struct {
	ServiceName string         `yaml:"service_name"`
	Logging     LoggingConfig  `yaml:"logging"`
	Server      ServerConfig   `yaml:"server"`
	Storage     string         `yaml:"storage"`
	Mongo       MongoConfig    `yaml:"mongo"`
	Feed        FeedConfig     `yaml:"feed"`
	LLM         LLMConfig      `yaml:"llm"`
	ModelQuota  QuotaConfig    `yaml:"model_quota"`
	Sync        SyncConfig     `yaml:"sync"`
	Enrich      EnrichConfig   `yaml:"enrich"`
	Redis       RedisConfig    `yaml:"redis"`
	EventBus    EventBusConfig `yaml:"eventbus"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// FeedConfig selects where raw articles come from. Provider is one of
// "newsapi", "rss" or "both".
type FeedConfig struct {
	Provider string        `yaml:"provider"`
	NewsAPI  NewsAPIConfig `yaml:"newsapi"`
	RSS      []RSSSource   `yaml:"rss"`
}

type NewsAPIConfig struct {
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"-"`
	Sources  []string      `yaml:"sources"`
	PageSize int           `yaml:"page_size"`
	Timeout  time.Duration `yaml:"timeout"`
}

// RSSSource is a single feed configuration item
type RSSSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type LLMConfig struct {
	Provider  string        `yaml:"provider"`
	ModelName string        `yaml:"model_name"`
	APIKey    string        `yaml:"-"`
	Timeout   time.Duration `yaml:"timeout"`
}

// QuotaConfig 는 모델 호출의 분당/일일 한도를 정의한다. 0 이하면 제한 없음.
type QuotaConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

type SyncConfig struct {
	DefaultCount int `yaml:"default_count"`
	BatchSize    int `yaml:"batch_size"`
}

type EnrichConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Renderer string        `yaml:"renderer"`
	Timeout  time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"-"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type EventBusConfig struct {
	Brokers    string `yaml:"brokers"`
	GroupID    string `yaml:"group_id"`
	Partitions int    `yaml:"partitions"`
}

// DefaultTechSources are the NewsAPI source ids queried when none are configured.
var DefaultTechSources = []string{
	"techcrunch",
	"the-verge",
	"wired",
	"ars-technica",
	"engadget",
	"the-next-web",
	"recode",
	"hacker-news",
	"techradar",
}

// Load reads <dir>/.env and <dir>/config.yaml. A missing config file is not an
// error: defaults and environment variables are enough to run.
func Load(dir string) (*AppConfig, error) {
	_ = godotenv.Load(filepath.Join(dir, ENV_FILE))

	var c AppConfig
	data, err := os.ReadFile(filepath.Join(dir, CONFIG_FILE))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	c.applyEnv()
	c.applyDefaults()
	return &c, nil
}

func (c *AppConfig) applyEnv() {
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("STORAGE"); v != "" {
		c.Storage = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("MONGO_DB"); v != "" {
		c.Mongo.Database = v
	}
	c.Feed.NewsAPI.APIKey = os.Getenv("NEWS_API_KEY")
	if v := os.Getenv("NEWS_API_BASE"); v != "" {
		c.Feed.NewsAPI.BaseURL = v
	}
	c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.LLM.ModelName = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	c.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = n
		}
	}
	if v := os.Getenv("KAFKA_BOOTSTRAP_SERVERS"); v != "" {
		c.EventBus.Brokers = v
	}
	if v := os.Getenv("KAFKA_GROUP_ID"); v != "" {
		c.EventBus.GroupID = v
	}
}

func (c *AppConfig) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "news-hub"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		// sync 요청은 피드 + 모델 호출을 포함하므로 넉넉하게 잡는다.
		c.Server.WriteTimeout = 3 * time.Minute
	}
	if c.Storage == "" {
		c.Storage = StorageMongo
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "newshub"
	}
	if c.Mongo.ConnectTimeout <= 0 {
		c.Mongo.ConnectTimeout = 10 * time.Second
	}
	if c.Feed.Provider == "" {
		c.Feed.Provider = "newsapi"
	}
	if c.Feed.NewsAPI.BaseURL == "" {
		c.Feed.NewsAPI.BaseURL = "https://newsapi.org/v2"
	}
	if len(c.Feed.NewsAPI.Sources) == 0 {
		c.Feed.NewsAPI.Sources = DefaultTechSources
	}
	if c.Feed.NewsAPI.PageSize <= 0 {
		c.Feed.NewsAPI.PageSize = 40
	}
	if c.Feed.NewsAPI.Timeout <= 0 {
		c.Feed.NewsAPI.Timeout = 20 * time.Second
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "google"
	}
	if c.LLM.ModelName == "" {
		c.LLM.ModelName = "gemini-2.0-flash"
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 2 * time.Minute
	}
	if c.Sync.DefaultCount <= 0 {
		c.Sync.DefaultCount = 10
	}
	if c.Sync.BatchSize <= 0 {
		c.Sync.BatchSize = 40
	}
	if c.Enrich.Renderer == "" {
		c.Enrich.Renderer = "http"
	}
	if c.Enrich.Timeout <= 0 {
		c.Enrich.Timeout = 15 * time.Second
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 5 * time.Minute
	}
	if c.EventBus.GroupID == "" {
		c.EventBus.GroupID = "newshub-worker"
	}
	if c.EventBus.Partitions <= 0 {
		c.EventBus.Partitions = 3
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return cwd
}
