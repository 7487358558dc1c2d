package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram_rpg/internal/domain"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/logger"
)

type LocationRepository interface {
	Create(ctx context.Context, location *domain.Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Location, error)
	GetByName(ctx context.Context, name string) (*domain.Location, error)
	// GetStarting возвращает локацию, в которой появляются новые игроки.
	GetStarting(ctx context.Context) (*domain.Location, error)
	List(ctx context.Context) ([]*domain.Location, error)
	Update(ctx context.Context, location *domain.Location) error
}

type locationRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewLocationRepository(db *pgxpool.Pool, log logger.Logger) LocationRepository {
	return &locationRepository{db: db, log: log}
}

const locationColumns = `id, name, description, type, coord_x, coord_y,
	connections, available_actions, background_image, is_unlocked, owner`

func (r *locationRepository) Create(ctx context.Context, location *domain.Location) error {
	connections, err := json.Marshal(location.ConnectedLocations)
	if err != nil {
		return fmt.Errorf("marshal connections: %w", err)
	}
	actions, err := json.Marshal(location.AvailableActions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}

	query := `
		INSERT INTO locations (id, name, description, type, coord_x, coord_y,
			connections, available_actions, background_image, is_unlocked, owner)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.Exec(ctx, query,
		location.ID, location.Name, location.Description, location.Type,
		location.Coordinates.X, location.Coordinates.Y,
		connections, actions, location.BackgroundImage, location.IsUnlocked, location.Owner,
	)
	if err != nil {
		r.log.Error("Failed to create location", "error", err, "name", location.Name)
		return fmt.Errorf("create location: %w", err)
	}

	return nil
}

func (r *locationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Location, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *locationRepository) GetByName(ctx context.Context, name string) (*domain.Location, error) {
	return r.getOne(ctx, `WHERE name = $1`, name)
}

func (r *locationRepository) GetStarting(ctx context.Context) (*domain.Location, error) {
	// Дома игроков стартовыми не бывают
	query := `SELECT ` + locationColumns + ` FROM locations WHERE type <> 'house' ORDER BY name LIMIT 1`

	row := r.db.QueryRow(ctx, query)
	return r.scanLocation(row)
}

func (r *locationRepository) getOne(ctx context.Context, where string, arg any) (*domain.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ` + where
	row := r.db.QueryRow(ctx, query, arg)
	return r.scanLocation(row)
}

func (r *locationRepository) scanLocation(row pgx.Row) (*domain.Location, error) {
	location := &domain.Location{}
	var connections, actions []byte
	err := row.Scan(
		&location.ID, &location.Name, &location.Description, &location.Type,
		&location.Coordinates.X, &location.Coordinates.Y,
		&connections, &actions, &location.BackgroundImage, &location.IsUnlocked, &location.Owner,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLocationNotFound
		}
		r.log.Error("Failed to get location", "error", err)
		return nil, fmt.Errorf("get location: %w", err)
	}

	if err := json.Unmarshal(connections, &location.ConnectedLocations); err != nil {
		return nil, fmt.Errorf("unmarshal connections: %w", err)
	}
	if err := json.Unmarshal(actions, &location.AvailableActions); err != nil {
		return nil, fmt.Errorf("unmarshal actions: %w", err)
	}

	return location, nil
}

func (r *locationRepository) List(ctx context.Context) ([]*domain.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY coord_y, coord_x`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list locations", "error", err)
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []*domain.Location
	for rows.Next() {
		location, err := r.scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}

	return locations, nil
}

func (r *locationRepository) Update(ctx context.Context, location *domain.Location) error {
	connections, err := json.Marshal(location.ConnectedLocations)
	if err != nil {
		return fmt.Errorf("marshal connections: %w", err)
	}
	actions, err := json.Marshal(location.AvailableActions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}

	query := `
		UPDATE locations
		SET name = $2, description = $3, type = $4, coord_x = $5, coord_y = $6,
			connections = $7, available_actions = $8, background_image = $9,
			is_unlocked = $10, owner = $11
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		location.ID, location.Name, location.Description, location.Type,
		location.Coordinates.X, location.Coordinates.Y,
		connections, actions, location.BackgroundImage, location.IsUnlocked, location.Owner,
	)
	if err != nil {
		r.log.Error("Failed to update location", "error", err, "location_id", location.ID)
		return fmt.Errorf("update location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrLocationNotFound
	}

	return nil
}
