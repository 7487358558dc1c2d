package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"telegram_rpg/pkg/logger"
)

type Repositories struct {
	Player    PlayerRepository
	Location  LocationRepository
	Item      ItemRepository
	Message   MessageRepository
	RateLimit RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, rdb *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		Player:    NewPlayerRepository(db, log),
		Location:  NewLocationRepository(db, log),
		Item:      NewItemRepository(db, log),
		Message:   NewMessageRepository(db, log),
		RateLimit: NewRateLimitRepository(rdb, log),
	}
}
