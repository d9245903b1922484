package ingest

import (
	"fmt"
	"sync"
)

// FlushFunc persists one batch.
type FlushFunc[T any] func(batch []T) error

// BatchWriter buffers items and hands full batches to a single committer
// goroutine, so batches are flushed one at a time in submission order.
// After the first flush error later batches are dropped.
type BatchWriter[T any] struct {
	mu     sync.Mutex
	buf    []T
	cap    int
	closed bool
	wg     sync.WaitGroup

	commitCh chan []T
	flush    FlushFunc[T]
	OnError  func(error)

	// lastErr stores the first asynchronous error seen by the writer. Protected by errMu.
	errMu   sync.Mutex
	lastErr error
}

// NewBatchWriter creates a new BatchWriter that flushes every batchSize items.
func NewBatchWriter[T any](batchSize int, flush FlushFunc[T]) *BatchWriter[T] {
	if batchSize <= 0 {
		batchSize = 10
	}
	bw := &BatchWriter[T]{
		buf:      make([]T, 0, batchSize),
		cap:      batchSize,
		commitCh: make(chan []T, 2), // Buffer a couple of batches
		flush:    flush,
	}

	bw.wg.Add(1)
	go bw.committer()
	return bw
}

// Submit enqueues an item. It reports the first flush error so producers
// can stop early.
func (bw *BatchWriter[T]) Submit(item T) error {
	if err := bw.err(); err != nil {
		return err
	}
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, item)
	if len(bw.buf) >= bw.cap {
		bw.flushLocked()
	}
	return nil
}

// flushLocked assumes bw.mu is held. Sending blocks while the committer is
// busy, which propagates backpressure to Submit.
func (bw *BatchWriter[T]) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]T, 0, bw.cap)
	bw.commitCh <- batch
}

func (bw *BatchWriter[T]) committer() {
	defer bw.wg.Done()
	for batch := range bw.commitCh {
		if bw.err() != nil {
			continue
		}
		if err := bw.flush(batch); err != nil {
			err = fmt.Errorf("flush batch of %d: %w", len(batch), err)
			bw.errMu.Lock()
			if bw.lastErr == nil {
				bw.lastErr = err
			}
			bw.errMu.Unlock()
			if bw.OnError != nil {
				bw.OnError(err)
			}
		}
	}
}

func (bw *BatchWriter[T]) err() error {
	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.lastErr
}

// Close flushes the remaining items, waits for the committer and returns
// the first flush error.
func (bw *BatchWriter[T]) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	bw.flushLocked()
	bw.mu.Unlock()

	close(bw.commitCh)
	bw.wg.Wait()
	return bw.err()
}

var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
