package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage — сообщение чата локации. Неизменяемо после создания:
// порядок определяется парой (CreatedAt, ID).
type ChatMessage struct {
	ID           int64     `json:"id"`
	LocationID   uuid.UUID `json:"location_id"`
	PlayerID     uuid.UUID `json:"player_id"`
	PlayerName   string    `json:"player_name"`
	PlayerAvatar string    `json:"player_avatar,omitempty"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

// MessagePayload — формат сообщения на проводе (socket-события и REST).
type MessagePayload struct {
	ID           int64     `json:"id"`
	LocationID   string    `json:"locationId"`
	PlayerID     string    `json:"playerId"`
	PlayerName   string    `json:"playerName"`
	PlayerAvatar string    `json:"playerAvatar"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
}

// Payload переводит сообщение в проводной формат.
func (m *ChatMessage) Payload() MessagePayload {
	return MessagePayload{
		ID:           m.ID,
		LocationID:   m.LocationID.String(),
		PlayerID:     m.PlayerID.String(),
		PlayerName:   m.PlayerName,
		PlayerAvatar: m.PlayerAvatar,
		Message:      m.Text,
		Timestamp:    m.CreatedAt,
	}
}

// DefaultPlayerName подставляется, когда клиент не прислал имя.
const DefaultPlayerName = "Игрок"
