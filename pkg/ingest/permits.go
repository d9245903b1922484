package ingest

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrBusy is returned when no processing permit frees up in time.
var ErrBusy = errors.New("too busy")

// permits bounds how many ingestions may be queued or running at once.
type permits struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

func newPermits(n int, timeout time.Duration) *permits {
	if n < 1 {
		n = 1
	}
	return &permits{sem: semaphore.NewWeighted(int64(n)), timeout: timeout}
}

// acquire waits up to the acquisition timeout for a permit.
func (p *permits) acquire(ctx context.Context) error {
	if p.timeout <= 0 {
		if !p.sem.TryAcquire(1) {
			return ErrBusy
		}
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return ErrBusy
	}
	return nil
}

func (p *permits) release() { p.sem.Release(1) }
