package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram_rpg/internal/domain"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/logger"
)

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	GetByName(ctx context.Context, name string) (*domain.Item, error)
	List(ctx context.Context) ([]*domain.Item, error)
}

type itemRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewItemRepository(db *pgxpool.Pool, log logger.Logger) ItemRepository {
	return &itemRepository{db: db, log: log}
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (id, name, description, type, rarity, stackable, max_stack, icon, value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		item.ID, item.Name, item.Description, item.Type, item.Rarity,
		item.Stackable, item.MaxStack, item.Icon, item.Value,
	)
	if err != nil {
		r.log.Error("Failed to create item", "error", err, "name", item.Name)
		return fmt.Errorf("create item: %w", err)
	}

	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *itemRepository) GetByName(ctx context.Context, name string) (*domain.Item, error) {
	return r.getOne(ctx, `WHERE name = $1`, name)
}

func (r *itemRepository) getOne(ctx context.Context, where string, arg any) (*domain.Item, error) {
	query := `
		SELECT id, name, description, type, rarity, stackable, max_stack, icon, value
		FROM items ` + where

	item := &domain.Item{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&item.ID, &item.Name, &item.Description, &item.Type, &item.Rarity,
		&item.Stackable, &item.MaxStack, &item.Icon, &item.Value,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrItemNotFound
		}
		r.log.Error("Failed to get item", "error", err)
		return nil, fmt.Errorf("get item: %w", err)
	}

	return item, nil
}

func (r *itemRepository) List(ctx context.Context) ([]*domain.Item, error) {
	query := `
		SELECT id, name, description, type, rarity, stackable, max_stack, icon, value
		FROM items ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list items", "error", err)
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item := &domain.Item{}
		err := rows.Scan(
			&item.ID, &item.Name, &item.Description, &item.Type, &item.Rarity,
			&item.Stackable, &item.MaxStack, &item.Icon, &item.Value,
		)
		if err != nil {
			r.log.Error("Failed to scan item", "error", err)
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}
