package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyPrefix namespaces ledger keys
	KeyPrefix = "post_agent:staged:"
	// DefaultTTL is how long a staged URL is remembered
	DefaultTTL = 30 * 24 * time.Hour
)

// RedisLedger keeps the ledger in Redis so it survives across runs.
type RedisLedger struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// ConnectRedis opens a ledger at redisURL. A value that is not a redis://
// URL is used as a plain host:port address.
func ConnectRedis(ctx context.Context, redisURL string) (*RedisLedger, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisLedger{client: client, ttl: DefaultTTL, now: time.Now}, nil
}

// Close closes the client
func (r *RedisLedger) Close() error {
	return r.client.Close()
}

func key(rawURL string) string {
	return KeyPrefix + Normalize(rawURL)
}

func (r *RedisLedger) Seen(ctx context.Context, rawURL string) (bool, error) {
	n, err := r.client.Exists(ctx, key(rawURL)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check ledger: %w", err)
	}
	return n > 0, nil
}

// Record stores the staging time under the URL key with the ledger TTL.
func (r *RedisLedger) Record(ctx context.Context, rawURL string) error {
	stamp := r.now().UTC().Format(time.RFC3339)
	if err := r.client.Set(ctx, key(rawURL), stamp, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to record staged URL: %w", err)
	}
	return nil
}
