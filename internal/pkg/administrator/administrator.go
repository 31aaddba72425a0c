package administrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"langindexer/internal/pkg/cache"
	"langindexer/internal/pkg/circuitbreaker"
	"langindexer/internal/pkg/config"
	"langindexer/internal/pkg/detector"
	"langindexer/internal/pkg/indexer"
	"langindexer/internal/pkg/logger"
	"langindexer/internal/pkg/metrics"
	"langindexer/internal/pkg/models"
	"langindexer/internal/pkg/processor"
	"langindexer/internal/pkg/processor/languagedetector"
	"langindexer/internal/pkg/queue"
	"langindexer/internal/pkg/store"
	"langindexer/internal/pkg/worker"
)

const (
	memoryCacheEntries = 10000
	breakerFailures    = 5
	breakerReset       = 30 * time.Second
)

// Administrator owns the service: the queue, the worker pool, the sink and
// the HTTP API in front of them.
type Administrator interface {
	Detect(ctx context.Context, sub models.Submission) (*models.Detection, error)
	EnqueueSubmission(ctx context.Context, sub models.Submission) error
	ProcessAndIndex(ctx context.Context) error
	StartService(port string) error
	Stop(ctx context.Context)
	QueueDepth() int
	WorkerCount() int
	StartTime() time.Time
}

type administrator struct {
	queue      *queue.Queue
	processor  processor.Processor
	cache      cache.Cache
	sink       indexer.Sink
	workerPool *worker.WorkerPool
	limiter    *rate.Limiter
	server     *http.Server
	startTime  time.Time
	numWorkers int
}

// New builds an Administrator from cfg. An unreachable Redis falls back
// to an in-memory cache; a sink that cannot be opened is an error.
func New(cfg *config.Config) (Administrator, error) {
	submissions, err := queue.CreateQueue(cfg.QueueCapacity)
	if err != nil {
		return nil, fmt.Errorf("create queue: %w", err)
	}

	sink, err := newSink(cfg)
	if err != nil {
		return nil, err
	}

	var shadow *languagedetector.Shadow
	if cfg.ShadowLingua {
		shadow = languagedetector.NewShadow()
	}

	c := newCache(cfg)
	proc := processor.NewProcessor(detector.Default(), c, shadow, processor.Options{
		BestEffort: cfg.BestEffort,
		PlainText:  cfg.PlainText,
	})

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &administrator{
		queue:      submissions,
		processor:  proc,
		cache:      c,
		sink:       sink,
		workerPool: worker.NewWorkerPool(cfg.NumWorkers, submissions, proc, sink),
		limiter:    rate.NewLimiter(limit, max(cfg.RateBurst, 1)),
		startTime:  time.Now(),
		numWorkers: max(cfg.NumWorkers, 1),
	}, nil
}

func newSink(cfg *config.Config) (indexer.Sink, error) {
	switch cfg.Sink {
	case config.SinkElasticsearch:
		bulk, err := indexer.NewBulkIndexer(indexer.BulkConfig{
			URL:           cfg.ElasticsearchURL,
			Index:         cfg.IndexName,
			Threshold:     cfg.BulkThreshold,
			FlushInterval: time.Duration(cfg.FlushInterval) * time.Second,
			MaxRetries:    cfg.MaxRetries,
		})
		if err != nil {
			return nil, err
		}
		return indexer.WithCircuitBreaker(bulk, circuitbreaker.NewCircuitBreaker("elasticsearch", breakerFailures, breakerReset)), nil
	case config.SinkSQLite:
		s, err := store.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return indexer.WithCircuitBreaker(s, circuitbreaker.NewCircuitBreaker("sqlite", breakerFailures, breakerReset)), nil
	}
	return indexer.Discard{}, nil
}

func newCache(cfg *config.Config) cache.Cache {
	if !cfg.CacheEnabled {
		return nil
	}
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		logger.Log.Warn("Redis unavailable, caching in memory", zap.Error(err))
		return cache.NewMemoryCache(ttl, memoryCacheEntries)
	}
	return redisCache
}

// Detect processes one submission synchronously. The detection is not
// written to the sink.
func (admin *administrator) Detect(ctx context.Context, sub models.Submission) (*models.Detection, error) {
	return admin.processor.Process(ctx, &sub)
}

// EnqueueSubmission queues a submission for the workers and returns at
// once.
func (admin *administrator) EnqueueSubmission(ctx context.Context, sub models.Submission) error {
	if sub.ReceivedAt.IsZero() {
		sub.ReceivedAt = time.Now()
	}
	if err := admin.queue.Insert(sub); err != nil {
		metrics.QueueRejections.Inc()
		return err
	}
	return nil
}

// ProcessAndIndex starts the worker pool.
func (admin *administrator) ProcessAndIndex(ctx context.Context) error {
	admin.workerPool.Start(ctx)
	return nil
}

// StartService serves the HTTP API until Stop is called.
func (admin *administrator) StartService(port string) error {
	admin.server = &http.Server{
		Addr:              ":" + port,
		Handler:           newMux(admin, admin.limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Log.Info("HTTP service listening", zap.String("address", admin.server.Addr))
	if err := admin.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

// Stop shuts the HTTP server down, lets the workers drain the queue and
// closes the sink and cache.
func (admin *administrator) Stop(ctx context.Context) {
	logger.Log.Info("Beginning shutdown sequence")
	if admin.server != nil {
		if err := admin.server.Shutdown(ctx); err != nil {
			logger.Log.Warn("HTTP shutdown failed", zap.Error(err))
		}
	}

	admin.queue.Close()
	logger.Log.Info("Waiting for worker pool to finish processing queued submissions")
	admin.workerPool.Wait()

	if err := admin.sink.Close(ctx); err != nil {
		logger.Log.Warn("Failed to close sink", zap.Error(err))
	}
	if admin.cache != nil {
		if err := admin.cache.Close(); err != nil {
			logger.Log.Warn("Failed to close cache", zap.Error(err))
		}
	}
	logger.Log.Info("Administrator stopped gracefully")
}

// QueueDepth returns the number of queued submissions.
func (admin *administrator) QueueDepth() int {
	return admin.queue.Length()
}

// WorkerCount returns the number of workers.
func (admin *administrator) WorkerCount() int {
	return admin.numWorkers
}

// StartTime returns when the service was created.
func (admin *administrator) StartTime() time.Time {
	return admin.startTime
}
