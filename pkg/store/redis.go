package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shuretools/shurelink/pkg/monitor"
)

// RedisSink persists the latest value of every metric into a Redis hash
// per scope: key "<host>:device" or "<host>:channel:<n>", one field per
// metric key. Overwrites are idempotent, so concurrent monitors need no
// coordination.
type RedisSink struct {
	client *redis.Client
}

// NewRedisSink connects to the Redis server at addr ("host:port").
func NewRedisSink(addr string) *RedisSink {
	return &RedisSink{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Ping verifies the server is reachable. Called once at startup so a
// misconfigured address fails fast instead of failing per metric.
func (s *RedisSink) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Record implements monitor.MetricSink.
func (s *RedisSink) Record(ctx context.Context, m monitor.Metric) error {
	return s.client.HSet(ctx, m.StoreKey(), m.Key, m.Value).Err()
}

// Close releases the connection pool.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
