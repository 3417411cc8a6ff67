package alert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"LagScalper/internal/domain/models"
)

// RedisQueueConfig names the list signals are pushed onto and its cap.
type RedisQueueConfig struct {
	Key     string
	MaxSize int64
}

// RedisQueue pushes signal events onto a capped Redis list so local
// consumers (paper traders, dashboards) can pop them at their own pace.
type RedisQueue struct {
	cfg    RedisQueueConfig
	client *redis.Client
}

// NewRedisQueue creates a new Redis queue notifier.
func NewRedisQueue(cfg RedisQueueConfig, client *redis.Client) *RedisQueue {
	return &RedisQueue{cfg: cfg, client: client}
}

func (q *RedisQueue) Name() string { return "redis_queue" }

// Send RPUSHes the JSON event and trims the list to its cap, dropping the
// oldest entries first.
func (q *RedisQueue) Send(ctx context.Context, ev *models.SignalEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pipe := q.client.TxPipeline()
	pipe.RPush(ctx, q.cfg.Key, payload)
	if q.cfg.MaxSize > 0 {
		pipe.LTrim(ctx, q.cfg.Key, -q.cfg.MaxSize, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis push: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (q *RedisQueue) Close() error { return q.client.Close() }
