package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"langindexer/internal/pkg/circuitbreaker"
	"langindexer/internal/pkg/indexer"
	"langindexer/internal/pkg/logger"
	"langindexer/internal/pkg/metrics"
	"langindexer/internal/pkg/models"
	"langindexer/internal/pkg/processor"
	"langindexer/internal/pkg/queue"
)

// WorkerPool drains the submission queue in parallel, detects each
// submission and hands the detection to the sink.
type WorkerPool struct {
	numWorkers int
	queue      *queue.Queue
	processor  processor.Processor
	sink       indexer.Sink
	wg         sync.WaitGroup
}

// NewWorkerPool creates a pool with the given number of workers.
func NewWorkerPool(numWorkers int, queue *queue.Queue, processor processor.Processor, sink indexer.Sink) *WorkerPool {
	return &WorkerPool{
		numWorkers: max(numWorkers, 1),
		queue:      queue,
		processor:  processor,
		sink:       sink,
	}
}

// Start launches the workers. They stop when ctx is done or the queue is
// closed and drained.
func (wp *WorkerPool) Start(ctx context.Context) {
	logger.Log.Info("Starting worker pool", zap.Int("workers", wp.numWorkers))
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.runWorker(ctx, i)
	}
}

// Wait blocks until every worker has returned.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) runWorker(ctx context.Context, id int) {
	defer wp.wg.Done()
	logger.Log.Debug("Worker started", zap.Int("worker_id", id))

	for {
		sub, err := wp.queue.Next(ctx)
		if err != nil {
			if !errors.Is(err, queue.ErrQueueClosed) && !errors.Is(err, context.Canceled) {
				logger.Log.Warn("Worker stopped", zap.Int("worker_id", id), zap.Error(err))
			}
			logger.Log.Debug("Worker received stop signal", zap.Int("worker_id", id))
			return
		}
		wp.handle(ctx, id, &sub)
	}
}

func (wp *WorkerPool) handle(ctx context.Context, id int, sub *models.Submission) {
	detection, err := wp.processor.Process(ctx, sub)
	if err != nil {
		metrics.ProcessingFailures.Inc()
		logger.Log.Warn("Failed to process submission",
			zap.Int("worker_id", id),
			zap.String("url", sub.URL),
			zap.Error(err))
		return
	}
	logger.Log.Debug("Detected submission",
		zap.Int("worker_id", id),
		zap.String("url", sub.URL),
		zap.String("language", detection.Language),
		zap.Bool("reliable", detection.Reliable))

	if err := wp.sink.Add(ctx, detection); err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			logger.Log.Debug("Sink unavailable, dropping detection", zap.String("id", detection.ID))
			return
		}
		logger.Log.Warn("Failed to write detection",
			zap.Int("worker_id", id),
			zap.String("id", detection.ID),
			zap.Error(err))
	}
}
