package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"telegram_rpg/pkg/logger"
)

type RateLimitRepository interface {
	// Фиксированное окно (счётчик с TTL) — для HTTP-маршрутов.
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)

	// Скользящее окно на ZSET — распределённая замена лимитера чата.
	// Возвращает true, если событие с отметкой now допущено и записано.
	AdmitSliding(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error)
}

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

func (r *rateLimitRepository) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.redis.Get(ctx, key).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		r.log.Error("Failed to check rate limit", "error", err)
		return false, err
	}

	return count < limit, nil
}

func (r *rateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		r.log.Error("Failed to increment rate limit", "error", err)
		return 0, err
	}

	if count == 1 {
		r.redis.Expire(ctx, key, window)
	}

	return count, nil
}

func (r *rateLimitRepository) AdmitSliding(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error) {
	cutoff := now.Add(-window)

	// Сначала выбрасываем устаревшие отметки, затем считаем оставшиеся
	if err := r.redis.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", cutoff.UnixMilli())).Err(); err != nil {
		r.log.Error("Failed to prune rate window", "error", err, "key", key)
		return false, err
	}

	count, err := r.redis.ZCard(ctx, key).Result()
	if err != nil {
		r.log.Error("Failed to count rate window", "error", err, "key", key)
		return false, err
	}
	if count >= int64(limit) {
		return false, nil
	}

	err = r.redis.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	}).Err()
	if err != nil {
		r.log.Error("Failed to record rate event", "error", err, "key", key)
		return false, err
	}

	// TTL чуть больше окна, чтобы пустые ключи исчезали сами
	r.redis.Expire(ctx, key, window+time.Second)

	return true, nil
}
