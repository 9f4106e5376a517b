package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type localHold struct {
	token   string
	expires time.Time
}

// Local is an in-process Locker for single-instance deployments.
type Local struct {
	mu    sync.Mutex
	held  map[string]localHold
	clock func() time.Time
}

// NewLocal creates an empty in-process locker.
func NewLocal() *Local {
	return &Local{held: make(map[string]localHold), clock: time.Now}
}

// Acquire takes name unless another holder has it and its TTL has not run out.
func (l *Local) Acquire(_ context.Context, name string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	if hold, ok := l.held[name]; ok && now.Before(hold.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[name] = localHold{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

// Release frees name if token still holds it. Anything else is a no-op.
func (l *Local) Release(_ context.Context, name, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if hold, ok := l.held[name]; ok && hold.token == token {
		delete(l.held, name)
	}
	return nil
}
