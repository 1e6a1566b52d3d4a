package lock

import (
	"context"
	"sync"

	"github.com/trendlens/backend/internal/domain"
)

// LocalLock serializes runs inside one process when no redis is configured
type LocalLock struct {
	mu   sync.Mutex
	held bool
}

// NewLocalLock creates an unheld process-local lock
func NewLocalLock() *LocalLock {
	return &LocalLock{}
}

// Acquire takes the lock or returns ErrRunInProgress without blocking
func (l *LocalLock) Acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, domain.ErrRunInProgress
	}
	l.held = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.held = false
			l.mu.Unlock()
		})
	}, nil
}
