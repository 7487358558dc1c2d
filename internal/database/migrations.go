package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Схема создаётся идемпотентно: повторный запуск ничего не ломает.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL,
		type TEXT NOT NULL,
		coord_x INT NOT NULL DEFAULT 0,
		coord_y INT NOT NULL DEFAULT 0,
		connections JSONB NOT NULL DEFAULT '[]',
		available_actions JSONB NOT NULL DEFAULT '[]',
		background_image TEXT NOT NULL DEFAULT '',
		is_unlocked BOOLEAN NOT NULL DEFAULT TRUE,
		owner UUID
	)`,

	`CREATE TABLE IF NOT EXISTS players (
		id UUID PRIMARY KEY,
		telegram_id TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL DEFAULT '',
		avatar TEXT NOT NULL DEFAULT '',
		level INT NOT NULL DEFAULT 1,
		experience INT NOT NULL DEFAULT 0,
		current_location UUID REFERENCES locations(id),
		house_location UUID REFERENCES locations(id),
		stats JSONB NOT NULL DEFAULT '{}',
		inventory JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_active TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS items (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL,
		type TEXT NOT NULL,
		rarity TEXT NOT NULL DEFAULT 'common',
		stackable BOOLEAN NOT NULL DEFAULT TRUE,
		max_stack INT NOT NULL DEFAULT 99,
		icon TEXT NOT NULL DEFAULT '',
		value INT NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGSERIAL PRIMARY KEY,
		location_id UUID NOT NULL,
		player_id UUID NOT NULL,
		player_name TEXT NOT NULL,
		player_avatar TEXT NOT NULL DEFAULT '',
		text VARCHAR(500) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// Индексы для пагинации по локации и корреляции по игроку
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_location_created
		ON chat_messages (location_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_player_created
		ON chat_messages (player_id, created_at)`,
}

// Migrate применяет схему БД.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}
	}
	return nil
}
