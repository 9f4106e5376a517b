// Package lock serializes read-validate-write sequences on a single document.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLockTimeout is returned when a named lock stays busy for the whole wait window.
var ErrLockTimeout = errors.New("lock busy")

// Locker acquires and releases named locks. A successful Acquire returns a
// token unique to that acquisition; Release frees name only while the same
// token still holds it.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, name, token string) error
}

// Guard runs functions while holding a named lock.
type Guard struct {
	locker Locker
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewGuard builds a guard. A nil locker makes Do run fn without locking.
func NewGuard(locker Locker, ttl, wait, retry time.Duration) *Guard {
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	return &Guard{locker: locker, ttl: ttl, wait: wait, retry: retry}
}

// Do acquires name, runs fn and releases name.
func (g *Guard) Do(ctx context.Context, name string, fn func() error) error {
	if g == nil || g.locker == nil {
		return fn()
	}
	token, err := g.acquire(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		// release on a fresh context so a cancelled request still frees the lock
		_ = g.locker.Release(context.WithoutCancel(ctx), name, token)
	}()
	return fn()
}

func (g *Guard) acquire(ctx context.Context, name string) (string, error) {
	deadline := time.Now().Add(g.wait)
	for {
		token, ok, err := g.locker.Acquire(ctx, name, g.ttl)
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}
		if !time.Now().Before(deadline) {
			return "", fmt.Errorf("%w: %s", ErrLockTimeout, name)
		}
		timer := time.NewTimer(g.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

// DocumentKey names the lock guarding a document.
func DocumentKey(documentID int64) string {
	return fmt.Sprintf("document:%d", documentID)
}

// NumberingKey names the lock guarding process and tracking number allocation.
const NumberingKey = "numbering"
