package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sharilka/internal/config"
	"sharilka/internal/schedule"

	"github.com/redis/go-redis/v9"
)

type RedisTimelineCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisTimelineCache(client *redis.Client, ttl time.Duration) *RedisTimelineCache {
	return &RedisTimelineCache{
		client: client,
		ttl:    ttl,
	}
}

func timelineKey(itemID int64) string {
	return fmt.Sprintf("item_timeline:%d", itemID)
}

func (r *RedisTimelineCache) GetTimeline(ctx context.Context, itemID int64) (*schedule.Timeline, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, timelineKey(itemID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get timeline from redis: %w", err)
	}

	var tl schedule.Timeline
	if err := json.Unmarshal([]byte(val), &tl); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal timeline: %w", err)
	}

	return &tl, true, nil
}

func (r *RedisTimelineCache) SetTimeline(ctx context.Context, itemID int64, tl schedule.Timeline) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(tl)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline: %w", err)
	}

	if err := r.client.Set(ctx, timelineKey(itemID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set timeline in redis: %w", err)
	}

	return nil
}

func (r *RedisTimelineCache) InvalidateItem(ctx context.Context, itemID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, timelineKey(itemID)).Err(); err != nil {
		return fmt.Errorf("failed to delete timeline from redis: %w", err)
	}
	return nil
}

func (r *RedisTimelineCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	counterKey := "rate_limit:" + key
	count, err := r.client.Incr(ctx, counterKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, counterKey, window)
	}

	return count <= int64(limit), nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
