package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"langindexer/internal/pkg/config"
	"langindexer/internal/pkg/logger"
	"langindexer/internal/pkg/models"
)

const redisKeyPrefix = "langindexer:detection:"

// RedisCache keeps detections in Redis with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the Redis server named in cfg and checks
// that it answers.
func NewRedisCache(cfg *config.Config) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger.Log.Info("Connected to Redis successfully",
		zap.String("host", cfg.RedisHost),
		zap.String("port", cfg.RedisPort),
	)
	return &RedisCache{
		client: rdb,
		ttl:    time.Duration(cfg.CacheTTL) * time.Second,
	}, nil
}

// Get returns the detection stored under signature.
func (c *RedisCache) Get(ctx context.Context, signature string) (*models.Detection, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+signature).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var d models.Detection
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode cached detection: %w", err)
	}
	return &d, nil
}

// Set stores detection under signature until the TTL expires.
func (c *RedisCache) Set(ctx context.Context, signature string, detection *models.Detection) error {
	data, err := json.Marshal(detection)
	if err != nil {
		return fmt.Errorf("encode detection: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+signature, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
