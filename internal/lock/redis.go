package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisPrefix = "doctrack:lock:"

// Redis implements Locker using SETNX with a TTL. The stored value is the
// acquisition token: the instance owner id followed by a fresh uuid.
type Redis struct {
	client  *redis.Client
	ownerID string
}

// NewRedis creates a Redis-backed locker.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, ownerID: generateOwnerID()}
}

// Format: hostname:pid:random
func generateOwnerID() string {
	hostname, _ := os.Hostname()
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Sprintf("%s:%d:%s", hostname, os.Getpid(), uuid.NewString())
	}
	return fmt.Sprintf("%s:%d:%s", hostname, os.Getpid(), hex.EncodeToString(randomBytes))
}

// Acquire attempts to take name; false means someone else holds it.
func (l *Redis) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token := l.ownerID + ":" + uuid.NewString()
	ok, err := l.client.SetNX(ctx, redisPrefix+name, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Release deletes name only while token still holds it.
func (l *Redis) Release(ctx context.Context, name, token string) error {
	_, err := releaseScript.Run(ctx, l.client, []string{redisPrefix + name}, token).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

// OwnerID returns the prefix of every token this instance writes.
func (l *Redis) OwnerID() string {
	return l.ownerID
}
