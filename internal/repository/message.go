package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram_rpg/internal/domain"
	"telegram_rpg/pkg/logger"
)

type MessageRepository interface {
	// Append сохраняет сообщение и заполняет ID и серверный CreatedAt.
	Append(ctx context.Context, message *domain.ChatMessage) error

	// QueryRecent возвращает до limit сообщений локации в хронологическом
	// порядке (от старых к новым). При заданном before — строго старше этой
	// отметки времени.
	QueryRecent(ctx context.Context, locationID uuid.UUID, limit int, before *time.Time) ([]*domain.ChatMessage, error)
}

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

func (r *messageRepository) Append(ctx context.Context, message *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (location_id, player_id, player_name, player_avatar, text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		message.LocationID, message.PlayerID, message.PlayerName,
		message.PlayerAvatar, message.Text,
	).Scan(&message.ID, &message.CreatedAt)

	if err != nil {
		r.log.Error("Failed to append message", "error", err, "location_id", message.LocationID)
		return fmt.Errorf("append message: %w", err)
	}

	return nil
}

func (r *messageRepository) QueryRecent(ctx context.Context, locationID uuid.UUID, limit int, before *time.Time) ([]*domain.ChatMessage, error) {
	// Выбираем от новых к старым, затем разворачиваем:
	// индекс (location_id, created_at) работает в обе стороны.
	query := `
		SELECT id, location_id, player_id, player_name, player_avatar, text, created_at
		FROM chat_messages
		WHERE location_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	args := []any{locationID, limit}

	if before != nil {
		query = `
			SELECT id, location_id, player_id, player_name, player_avatar, text, created_at
			FROM chat_messages
			WHERE location_id = $1 AND created_at < $3
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`
		args = append(args, *before)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query messages", "error", err, "location_id", locationID)
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.ChatMessage
	for rows.Next() {
		message := &domain.ChatMessage{}
		err := rows.Scan(
			&message.ID, &message.LocationID, &message.PlayerID,
			&message.PlayerName, &message.PlayerAvatar, &message.Text, &message.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Разворачиваем в хронологический порядок (от старых к новым)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
