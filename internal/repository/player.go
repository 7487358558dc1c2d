package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram_rpg/internal/domain"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/logger"
)

type PlayerRepository interface {
	Create(ctx context.Context, player *domain.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*domain.Player, error)
	Update(ctx context.Context, player *domain.Player) error
	UpdateLocation(ctx context.Context, playerID, locationID uuid.UUID) error
	TouchLastActive(ctx context.Context, playerID uuid.UUID) error
}

type playerRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewPlayerRepository(db *pgxpool.Pool, log logger.Logger) PlayerRepository {
	return &playerRepository{db: db, log: log}
}

func (r *playerRepository) Create(ctx context.Context, player *domain.Player) error {
	stats, err := json.Marshal(player.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	inventory, err := json.Marshal(player.Inventory)
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}

	query := `
		INSERT INTO players (id, telegram_id, username, first_name, last_name, avatar,
			level, experience, current_location, house_location, stats, inventory, created_at, last_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = r.db.Exec(ctx, query,
		player.ID, player.TelegramID, player.Username, player.FirstName, player.LastName,
		player.Avatar, player.Level, player.Experience, player.CurrentLocation,
		player.HouseLocation, stats, inventory, player.CreatedAt, player.LastActive,
	)
	if err != nil {
		r.log.Error("Failed to create player", "error", err, "telegram_id", player.TelegramID)
		return fmt.Errorf("create player: %w", err)
	}

	return nil
}

func (r *playerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *playerRepository) GetByTelegramID(ctx context.Context, telegramID string) (*domain.Player, error) {
	return r.getOne(ctx, `WHERE telegram_id = $1`, telegramID)
}

func (r *playerRepository) getOne(ctx context.Context, where string, arg any) (*domain.Player, error) {
	query := `
		SELECT id, telegram_id, username, first_name, last_name, avatar,
			level, experience, current_location, house_location, stats, inventory, created_at, last_active
		FROM players ` + where

	player := &domain.Player{}
	var stats, inventory []byte
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&player.ID, &player.TelegramID, &player.Username, &player.FirstName, &player.LastName,
		&player.Avatar, &player.Level, &player.Experience, &player.CurrentLocation,
		&player.HouseLocation, &stats, &inventory, &player.CreatedAt, &player.LastActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPlayerNotFound
		}
		r.log.Error("Failed to get player", "error", err)
		return nil, fmt.Errorf("get player: %w", err)
	}

	if err := json.Unmarshal(stats, &player.Stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	if err := json.Unmarshal(inventory, &player.Inventory); err != nil {
		return nil, fmt.Errorf("unmarshal inventory: %w", err)
	}

	return player, nil
}

func (r *playerRepository) Update(ctx context.Context, player *domain.Player) error {
	stats, err := json.Marshal(player.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	inventory, err := json.Marshal(player.Inventory)
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}

	query := `
		UPDATE players
		SET username = $2, first_name = $3, last_name = $4, avatar = $5,
			level = $6, experience = $7, current_location = $8, house_location = $9,
			stats = $10, inventory = $11, last_active = $12
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		player.ID, player.Username, player.FirstName, player.LastName, player.Avatar,
		player.Level, player.Experience, player.CurrentLocation, player.HouseLocation,
		stats, inventory, time.Now(),
	)
	if err != nil {
		r.log.Error("Failed to update player", "error", err, "player_id", player.ID)
		return fmt.Errorf("update player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPlayerNotFound
	}

	return nil
}

func (r *playerRepository) UpdateLocation(ctx context.Context, playerID, locationID uuid.UUID) error {
	query := `UPDATE players SET current_location = $2, last_active = $3 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, playerID, locationID, time.Now())
	if err != nil {
		r.log.Error("Failed to update player location", "error", err, "player_id", playerID)
		return fmt.Errorf("update player location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPlayerNotFound
	}

	return nil
}

func (r *playerRepository) TouchLastActive(ctx context.Context, playerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE players SET last_active = $2 WHERE id = $1`, playerID, time.Now())
	if err != nil {
		return fmt.Errorf("touch last active: %w", err)
	}
	return nil
}
