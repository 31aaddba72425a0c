package queue

import (
	"context"
	"errors"
	"sync"

	"langindexer/internal/pkg/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueEmpty  = errors.New("queue is empty")
	ErrQueueClosed = errors.New("queue is closed")
)

// Queue is a bounded first in, first out queue of submissions. It is safe
// for concurrent use.
type Queue struct {
	mu       sync.Mutex
	capacity int
	q        []models.Submission
	closed   bool

	// ready holds a token while the queue may be non-empty.
	ready chan struct{}
	done  chan struct{}
}

// CreateQueue creates an empty queue with the given capacity.
func CreateQueue(capacity int) (*Queue, error) {
	if capacity <= 0 {
		return nil, errors.New("capacity should be greater than 0")
	}
	return &Queue{
		capacity: capacity,
		q:        make([]models.Submission, 0, capacity),
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Insert appends item to the queue.
func (q *Queue) Insert(item models.Submission) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if len(q.q) >= q.capacity {
		return ErrQueueFull
	}
	q.q = append(q.q, item)
	q.signal()
	return nil
}

// Remove takes the oldest item without waiting.
func (q *Queue) Remove() (models.Submission, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.q) == 0 {
		if q.closed {
			return models.Submission{}, ErrQueueClosed
		}
		return models.Submission{}, ErrQueueEmpty
	}
	item := q.q[0]
	q.q[0] = models.Submission{}
	q.q = q.q[1:]
	if len(q.q) > 0 {
		q.signal()
	}
	return item, nil
}

// Next waits for the oldest item. It returns ErrQueueClosed once the queue
// is closed and drained, or the context's error.
func (q *Queue) Next(ctx context.Context) (models.Submission, error) {
	for {
		item, err := q.Remove()
		if !errors.Is(err, ErrQueueEmpty) {
			return item, err
		}
		select {
		case <-ctx.Done():
			return models.Submission{}, ctx.Err()
		case <-q.ready:
		case <-q.done:
		}
	}
}

// Close stops the queue accepting items. Items already queued can still be
// removed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
}

// Length returns the number of queued items.
func (q *Queue) Length() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.q)
}

// IsEmpty reports whether the queue holds no items.
func (q *Queue) IsEmpty() bool {
	return q.Length() == 0
}

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
