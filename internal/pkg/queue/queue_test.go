package queue

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"langindexer/internal/pkg/models"
)

// Tests creating a queue with a given capacity.
func TestCreateQueue(t *testing.T) {
	q, err := CreateQueue(3)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if q.capacity != 3 {
		t.Errorf("Expected queue size to be 3, got %d", q.capacity)
	}

	for _, capacity := range []int{0, -1} {
		q, err = CreateQueue(capacity)
		if err == nil {
			t.Errorf("Expected error for capacity %d, got nil", capacity)
		}
		if q != nil {
			t.Errorf("Expected queue to be nil, got %v", q)
		}
	}
}

// Tests inserting into a full queue.
func TestInsert(t *testing.T) {
	q, _ := CreateQueue(3)
	for i, url := range []string{"a", "b", "c"} {
		if err := q.Insert(models.Submission{URL: url}); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		if q.Length() != i+1 {
			t.Errorf("Expected queue length to be %d, got %d", i+1, q.Length())
		}
	}

	err := q.Insert(models.Submission{URL: "d"})
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
	if q.Length() != 3 {
		t.Errorf("Queue should be full, expected queue length to be 3, got %d", q.Length())
	}
}

// Tests removing elements in insertion order.
func TestRemove(t *testing.T) {
	q, _ := CreateQueue(3)
	for _, url := range []string{"a", "b", "c"} {
		if err := q.Insert(models.Submission{URL: url}); err != nil {
			t.Errorf("Insert error: %v", err)
		}
	}

	for i, want := range []string{"a", "b", "c"} {
		elem, err := q.Remove()
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		if elem.URL != want {
			t.Errorf("Expected removed element URL to be '%s', got '%s'", want, elem.URL)
		}
		if q.Length() != 2-i {
			t.Errorf("Expected queue length to be %d, got %d", 2-i, q.Length())
		}
	}

	elem, err := q.Remove()
	if !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Expected ErrQueueEmpty, got %v", err)
	}
	if !reflect.DeepEqual(elem, models.Submission{}) {
		t.Errorf("Expected removed element to be zero value, got %v", elem)
	}
}

// Tests checking if the queue is empty.
func TestIsEmpty(t *testing.T) {
	q, _ := CreateQueue(3)
	if !q.IsEmpty() {
		t.Errorf("Expected queue to be empty")
	}
	q.Insert(models.Submission{URL: "a"})
	if q.IsEmpty() {
		t.Errorf("Expected queue to not be empty")
	}
	q.Remove()
	if !q.IsEmpty() {
		t.Errorf("Expected queue to be empty again")
	}
}

// Tests that a closed queue rejects inserts but drains.
func TestClose(t *testing.T) {
	q, _ := CreateQueue(3)
	q.Insert(models.Submission{URL: "a"})
	q.Close()
	q.Close()

	if err := q.Insert(models.Submission{URL: "b"}); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Expected ErrQueueClosed, got %v", err)
	}
	elem, err := q.Next(context.Background())
	if err != nil || elem.URL != "a" {
		t.Errorf("Expected to drain 'a', got %q, %v", elem.URL, err)
	}
	if _, err := q.Next(context.Background()); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Expected ErrQueueClosed, got %v", err)
	}
}

// Tests that Next blocks until an item arrives or the context ends.
func TestNext(t *testing.T) {
	q, _ := CreateQueue(10)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := q.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}

	const n = 10
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		got = map[string]bool{}
	)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				elem, err := q.Next(context.Background())
				if err != nil {
					return
				}
				mu.Lock()
				got[elem.URL] = true
				mu.Unlock()
			}
		}()
	}
	for i := 0; i < n; i++ {
		if err := q.Insert(models.Submission{URL: string(rune('a' + i))}); err != nil {
			t.Fatalf("Insert error: %v", err)
		}
	}
	q.Close()
	wg.Wait()
	if len(got) != n {
		t.Errorf("Expected %d distinct items, got %d", n, len(got))
	}
}
