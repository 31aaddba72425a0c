package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"

	"langindexer/internal/pkg/circuitbreaker"
	"langindexer/internal/pkg/logger"
	"langindexer/internal/pkg/metrics"
	"langindexer/internal/pkg/models"
)

// Sink receives finished detections.
type Sink interface {
	Add(ctx context.Context, detection *models.Detection) error
	Close(ctx context.Context) error
}

// Approximate encoded size of one detection, used to turn the document
// threshold into a flush size.
const approxDetectionBytes = 512

// BulkConfig configures a BulkIndexer.
type BulkConfig struct {
	URL           string
	Index         string
	Threshold     int // documents per bulk request
	FlushInterval time.Duration
	MaxRetries    int
	// Transport overrides the HTTP transport, for tests.
	Transport http.RoundTripper
}

// BulkIndexer writes detections to Elasticsearch with the bulk API.
type BulkIndexer struct {
	bi    esutil.BulkIndexer
	index string
}

// NewBulkIndexer creates a BulkIndexer. Requests go out in the background
// whenever the buffer reaches the threshold or the flush interval elapses.
func NewBulkIndexer(config BulkConfig) (*BulkIndexer, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{config.URL},
		MaxRetries:    config.MaxRetries,
		RetryOnStatus: []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		Transport:     config.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        es,
		Index:         config.Index,
		NumWorkers:    1,
		FlushBytes:    max(config.Threshold, 1) * approxDetectionBytes,
		FlushInterval: config.FlushInterval,
		OnError: func(ctx context.Context, err error) {
			logger.Log.Error("Bulk request failed", zap.Error(err))
		},
		OnFlushEnd: func(ctx context.Context) {
			logger.Log.Debug("Flushed detections to Elasticsearch", zap.String("index", config.Index))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bulk indexer: %w", err)
	}
	return &BulkIndexer{bi: bi, index: config.Index}, nil
}

// Add queues one detection, keyed by its id.
func (indexer *BulkIndexer) Add(ctx context.Context, detection *models.Detection) error {
	data, err := json.Marshal(detection)
	if err != nil {
		return fmt.Errorf("encode detection %s: %w", detection.ID, err)
	}
	err = indexer.bi.Add(ctx, esutil.BulkIndexerItem{
		Action:     "index",
		DocumentID: detection.ID,
		Body:       bytes.NewReader(data),
		OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
			metrics.DocumentsIndexed.WithLabelValues("elasticsearch").Inc()
		},
		OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			metrics.BulkFailures.WithLabelValues("elasticsearch").Inc()
			if err == nil {
				err = fmt.Errorf("%s: %s", res.Error.Type, res.Error.Reason)
			}
			logger.Log.Warn("Failed to index detection",
				zap.String("id", item.DocumentID),
				zap.Int("status", res.Status),
				zap.Error(err))
		},
	})
	if err != nil {
		return fmt.Errorf("queue detection %s: %w", detection.ID, err)
	}
	return nil
}

// Close flushes what is buffered and waits for in-flight requests.
func (indexer *BulkIndexer) Close(ctx context.Context) error {
	if err := indexer.bi.Close(ctx); err != nil {
		return fmt.Errorf("close bulk indexer: %w", err)
	}
	stats := indexer.bi.Stats()
	logger.Log.Info("Bulk indexer stopped",
		zap.String("index", indexer.index),
		zap.Uint64("indexed", stats.NumIndexed),
		zap.Uint64("failed", stats.NumFailed),
		zap.Uint64("requests", stats.NumRequests))
	return nil
}

// Stats returns the indexer's counters.
func (indexer *BulkIndexer) Stats() esutil.BulkIndexerStats {
	return indexer.bi.Stats()
}

type guardedSink struct {
	Sink
	cb *circuitbreaker.CircuitBreaker
}

// WithCircuitBreaker routes every Add through cb so a failing sink is not
// called again until the breaker lets a trial through.
func WithCircuitBreaker(sink Sink, cb *circuitbreaker.CircuitBreaker) Sink {
	return &guardedSink{Sink: sink, cb: cb}
}

func (g *guardedSink) Add(ctx context.Context, detection *models.Detection) error {
	return g.cb.Execute(func() error {
		return g.Sink.Add(ctx, detection)
	})
}

// Discard is a Sink that drops every detection.
type Discard struct{}

func (Discard) Add(context.Context, *models.Detection) error { return nil }
func (Discard) Close(context.Context) error                  { return nil }
