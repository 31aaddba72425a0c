package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sink names accepted by SINK.
const (
	SinkElasticsearch = "elasticsearch"
	SinkSQLite        = "sqlite"
	SinkNone          = "none"
)

// Config holds every setting of the detection service.
type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	QueueCapacity int    `mapstructure:"QUEUE_CAPACITY"`
	NumWorkers    int    `mapstructure:"NUM_WORKERS"`

	// Where detections are written.
	Sink             string `mapstructure:"SINK"`
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`
	IndexName        string `mapstructure:"INDEX_NAME"`
	BulkThreshold    int    `mapstructure:"BULK_THRESHOLD"`
	FlushInterval    int    `mapstructure:"FLUSH_INTERVAL"`
	MaxRetries       int    `mapstructure:"MAX_RETRIES"`
	SQLitePath       string `mapstructure:"SQLITE_PATH"`

	// Redis result cache
	CacheEnabled  bool   `mapstructure:"CACHE_ENABLED"`
	CacheTTL      int    `mapstructure:"CACHE_TTL"`
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// Detection
	ShadowLingua bool `mapstructure:"SHADOW_LINGUA"`
	BestEffort   bool `mapstructure:"BEST_EFFORT"`
	PlainText    bool `mapstructure:"PLAIN_TEXT"`

	// Requests per second accepted by the HTTP API, 0 disables limiting.
	RateLimit float64 `mapstructure:"RATE_LIMIT"`
	RateBurst int     `mapstructure:"RATE_BURST"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// LoadConfig reads the configuration from the environment on top of the
// defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("QUEUE_CAPACITY", 1000)
	v.SetDefault("NUM_WORKERS", 4)

	v.SetDefault("SINK", SinkNone)
	v.SetDefault("ELASTICSEARCH_URL", "http://localhost:9200")
	v.SetDefault("INDEX_NAME", "language_detections")
	v.SetDefault("BULK_THRESHOLD", 100)
	v.SetDefault("FLUSH_INTERVAL", 30)
	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("SQLITE_PATH", "detections.db")

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_TTL", 3600)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SHADOW_LINGUA", false)
	v.SetDefault("BEST_EFFORT", false)
	v.SetDefault("PLAIN_TEXT", false)

	v.SetDefault("RATE_LIMIT", 0)
	v.SetDefault("RATE_BURST", 20)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	c.Sink = strings.ToLower(c.Sink)
	switch c.Sink {
	case SinkElasticsearch, SinkSQLite, SinkNone:
	default:
		return fmt.Errorf("unknown sink %q", c.Sink)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("QUEUE_CAPACITY must be positive, got %d", c.QueueCapacity)
	}
	if c.NumWorkers <= 0 {
		c.NumWorkers = 1
	}
	return nil
}
