package service

import (
	"context"
	"sync"
	"time"

	"telegram_rpg/internal/repository"
	"telegram_rpg/pkg/logger"
)

// RateLimitService — лимитер HTTP-маршрутов (фиксированное окно в Redis).
type RateLimitService interface {
	CheckLimit(ctx context.Context, key string, limit int, windowSeconds int) (bool, error)
	Increment(ctx context.Context, key string, windowSeconds int) (int64, error)
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		log:           log,
	}
}

func (s *rateLimitService) CheckLimit(ctx context.Context, key string, limit int, windowSeconds int) (bool, error) {
	return s.rateLimitRepo.CheckLimit(ctx, key, limit, time.Duration(windowSeconds)*time.Second)
}

func (s *rateLimitService) Increment(ctx context.Context, key string, windowSeconds int) (int64, error) {
	return s.rateLimitRepo.Increment(ctx, key, time.Duration(windowSeconds)*time.Second)
}

// MessageLimiter — допуск сообщений чата: скользящее окно по ключу отправителя.
// Реализации взаимозаменяемы: локальная in-memory и распределённая на Redis.
type MessageLimiter interface {
	// Admit возвращает true и записывает событие, если отправитель
	// укладывается в лимит; false — сообщение надо отклонить.
	Admit(ctx context.Context, key string, now time.Time) (bool, error)
}

type slidingWindowLimiter struct {
	mu     sync.Mutex
	events map[string][]time.Time
	limit  int
	window time.Duration
}

// NewSlidingWindowLimiter создаёт локальный лимитер: limit событий за window.
func NewSlidingWindowLimiter(limit int, window time.Duration) MessageLimiter {
	return &slidingWindowLimiter{
		events: make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
}

func (l *slidingWindowLimiter) Admit(_ context.Context, key string, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)

	// Ленивая очистка: выбрасываем отметки старше окна прямо при проверке
	recent := l.events[key][:0]
	for _, ts := range l.events[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.limit {
		l.events[key] = recent
		return false, nil
	}

	l.events[key] = append(recent, now)
	return true, nil
}

type redisMessageLimiter struct {
	rateLimitRepo repository.RateLimitRepository
	limit         int
	window        time.Duration
}

// NewRedisMessageLimiter — распределённая замена in-memory лимитера
// для запуска нескольких экземпляров сервера.
func NewRedisMessageLimiter(rateLimitRepo repository.RateLimitRepository, limit int, window time.Duration) MessageLimiter {
	return &redisMessageLimiter{
		rateLimitRepo: rateLimitRepo,
		limit:         limit,
		window:        window,
	}
}

func (l *redisMessageLimiter) Admit(ctx context.Context, key string, now time.Time) (bool, error) {
	return l.rateLimitRepo.AdmitSliding(ctx, "chat:rate:"+key, l.limit, l.window, now)
}
