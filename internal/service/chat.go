package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"telegram_rpg/internal/domain"
	"telegram_rpg/internal/repository"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/logger"
)

// MaxMessageLength — жёсткий предел длины текста после очистки.
const MaxMessageLength = 500

type ChatService interface {
	// SendMessage очищает текст и сохраняет сообщение.
	// Пустой после очистки текст — ErrValidation, ничего не сохраняется.
	SendMessage(ctx context.Context, locationID, playerID uuid.UUID, playerName, playerAvatar, text string) (*domain.ChatMessage, error)

	// History возвращает страницу истории локации от старых к новым.
	History(ctx context.Context, locationID uuid.UUID, limit int, before *time.Time) ([]*domain.ChatMessage, error)
}

type chatService struct {
	messageRepo  repository.MessageRepository
	defaultLimit int
	maxLimit     int
	maxLen       int
	log          logger.Logger
}

func NewChatService(messageRepo repository.MessageRepository, defaultLimit, maxLimit, maxMessageLength int, log logger.Logger) ChatService {
	if maxMessageLength <= 0 {
		maxMessageLength = MaxMessageLength
	}
	return &chatService{
		messageRepo:  messageRepo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		maxLen:       maxMessageLength,
		log:          log,
	}
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)
var spacePattern = regexp.MustCompile(`\s+`)

// SanitizeText вырезает разметку, схлопывает пробелы и ограничивает длину.
func SanitizeText(text string) string {
	return sanitizeText(text, MaxMessageLength)
}

func sanitizeText(text string, maxLen int) string {
	noTags := tagPattern.ReplaceAllString(text, "")
	collapsed := spacePattern.ReplaceAllString(noTags, " ")
	trimmed := strings.TrimSpace(collapsed)

	runes := []rune(trimmed)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return trimmed
}

func (s *chatService) SendMessage(ctx context.Context, locationID, playerID uuid.UUID, playerName, playerAvatar, text string) (*domain.ChatMessage, error) {
	clean := sanitizeText(text, s.maxLen)
	if clean == "" {
		return nil, apperrors.ErrValidation
	}

	if playerName == "" {
		playerName = domain.DefaultPlayerName
	}

	message := &domain.ChatMessage{
		LocationID:   locationID,
		PlayerID:     playerID,
		PlayerName:   playerName,
		PlayerAvatar: playerAvatar,
		Text:         clean,
	}

	if err := s.messageRepo.Append(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

func (s *chatService) History(ctx context.Context, locationID uuid.UUID, limit int, before *time.Time) ([]*domain.ChatMessage, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	return s.messageRepo.QueryRecent(ctx, locationID, limit, before)
}
