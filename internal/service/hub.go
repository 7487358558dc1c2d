package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"telegram_rpg/internal/domain"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/logger"
)

// События протокола чата.
const (
	EventJoinLocation       = "join-location"
	EventSendMessage        = "send-message"
	EventNewMessage         = "new-message"
	EventParticipantsUpdate = "participants-update"
	EventRateLimit          = "rate-limit"
)

// RateLimitNotice — текст персонального уведомления о превышении лимита.
const RateLimitNotice = "Слишком часто. Подождите немного."

// RoomConn — минимальный контракт соединения для шлюза.
// Реализуется обёрткой над gorilla/websocket в handler-слое и
// фейками в тестах.
type RoomConn interface {
	ID() string
	WriteJSON(v any) error
}

// Envelope — кадр протокола: имя события плюс полезная нагрузка.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type JoinLocationPayload struct {
	LocationID   string `json:"locationId"`
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	PlayerAvatar string `json:"playerAvatar"`
}

type SendMessagePayload struct {
	LocationID   string `json:"locationId"`
	PlayerID     string `json:"playerId"`
	Message      string `json:"message"`
	PlayerName   string `json:"playerName"`
	PlayerAvatar string `json:"playerAvatar"`
}

type RateLimitPayload struct {
	Message string `json:"message"`
}

// RoomHub — шлюз комнат: членство соединений, допуск сообщений,
// рассылка событий строго в пределах одной локации.
type RoomHub struct {
	presence PresenceTracker
	limiter  MessageLimiter
	chat     ChatService
	log      logger.Logger

	mu    sync.Mutex
	conns map[string]RoomConn

	// Последовательная точка на локацию: рассылка идёт в порядке записи в БД
	seqMu sync.Mutex
	seq   map[uuid.UUID]*sync.Mutex
}

func NewRoomHub(presence PresenceTracker, limiter MessageLimiter, chat ChatService, log logger.Logger) *RoomHub {
	return &RoomHub{
		presence: presence,
		limiter:  limiter,
		chat:     chat,
		log:      log,
		conns:    make(map[string]RoomConn),
		seq:      make(map[uuid.UUID]*sync.Mutex),
	}
}

// Register добавляет новое соединение. Комнаты у него ещё нет.
func (h *RoomHub) Register(conn RoomConn) {
	h.mu.Lock()
	h.conns[conn.ID()] = conn
	h.mu.Unlock()
}

// JoinLocation регистрирует соединение в комнате локации и рассылает
// обновлённые составы — новой комнате и, при переходе, прежней.
func (h *RoomHub) JoinLocation(ctx context.Context, conn RoomConn, payload JoinLocationPayload) error {
	locationID, err := uuid.Parse(payload.LocationID)
	if err != nil {
		return apperrors.ErrValidation
	}

	name := payload.PlayerName
	if name == "" {
		name = domain.DefaultPlayerName
	}

	participant := domain.Participant{
		ConnID:   conn.ID(),
		PlayerID: payload.PlayerID,
		Name:     name,
		Avatar:   payload.PlayerAvatar,
	}

	roster, prev := h.presence.Join(locationID, participant)
	h.log.Debug("Player joined location", "player_id", payload.PlayerID, "location_id", locationID)

	h.broadcast(locationID, Envelope{Event: EventParticipantsUpdate, Data: roster})
	if prev != nil {
		h.broadcast(prev.LocationID, Envelope{Event: EventParticipantsUpdate, Data: prev.Roster})
	}

	return nil
}

// SendMessage проводит сообщение по цепочке: членство → лимит → очистка →
// запись в хранилище → рассылка. Рассылка никогда не обгоняет запись.
func (h *RoomHub) SendMessage(ctx context.Context, conn RoomConn, payload SendMessagePayload) error {
	locationID, err := uuid.Parse(payload.LocationID)
	if err != nil {
		return apperrors.ErrValidation
	}

	// Отправлять можно только в комнату, где соединение состоит
	if !h.isMember(locationID, conn.ID()) {
		h.log.Warn("Send to a room the connection is not joined to",
			"conn_id", conn.ID(), "location_id", locationID)
		return nil
	}

	key := payload.PlayerID
	if key == "" {
		key = conn.ID()
	}

	admitted, err := h.limiter.Admit(ctx, key, time.Now())
	if err != nil {
		h.log.Error("Rate limiter failed", "error", err, "key", key)
		return err
	}
	if !admitted {
		h.notify(conn, Envelope{Event: EventRateLimit, Data: RateLimitPayload{Message: RateLimitNotice}})
		return nil
	}

	playerID, err := uuid.Parse(payload.PlayerID)
	if err != nil {
		return apperrors.ErrValidation
	}

	// Отключение клиента не отменяет начатую запись
	storeCtx := context.WithoutCancel(ctx)

	seq := h.roomSeq(locationID)
	seq.Lock()
	defer seq.Unlock()

	message, err := h.chat.SendMessage(storeCtx, locationID, playerID, payload.PlayerName, payload.PlayerAvatar, payload.Message)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			// Пустое после очистки сообщение молча отбрасываем
			return nil
		}
		h.log.Error("Failed to persist message", "error", err, "location_id", locationID)
		return nil
	}

	h.broadcast(locationID, Envelope{Event: EventNewMessage, Data: message.Payload()})
	return nil
}

// Disconnect убирает соединение из его комнаты и оповещает её.
func (h *RoomHub) Disconnect(conn RoomConn) {
	h.mu.Lock()
	delete(h.conns, conn.ID())
	h.mu.Unlock()

	if update := h.presence.Leave(conn.ID()); update != nil {
		h.broadcast(update.LocationID, Envelope{Event: EventParticipantsUpdate, Data: update.Roster})
	}
}

func (h *RoomHub) isMember(locationID uuid.UUID, connID string) bool {
	for _, p := range h.presence.Roster(locationID) {
		if p.ConnID == connID {
			return true
		}
	}
	return false
}

// broadcast шлёт событие всем участникам комнаты. Ушедшее соединение —
// не ошибка: запись просто пропускается.
func (h *RoomHub) broadcast(locationID uuid.UUID, envelope Envelope) {
	roster := h.presence.Roster(locationID)

	h.mu.Lock()
	targets := make([]RoomConn, 0, len(roster))
	for _, p := range roster {
		if conn, ok := h.conns[p.ConnID]; ok {
			targets = append(targets, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range targets {
		if err := conn.WriteJSON(envelope); err != nil {
			h.log.Debug("Failed to write to connection", "conn_id", conn.ID(), "error", err)
		}
	}
}

func (h *RoomHub) notify(conn RoomConn, envelope Envelope) {
	if err := conn.WriteJSON(envelope); err != nil {
		h.log.Debug("Failed to notify connection", "conn_id", conn.ID(), "error", err)
	}
}

func (h *RoomHub) roomSeq(locationID uuid.UUID) *sync.Mutex {
	h.seqMu.Lock()
	defer h.seqMu.Unlock()

	seq, ok := h.seq[locationID]
	if !ok {
		seq = &sync.Mutex{}
		h.seq[locationID] = seq
	}
	return seq
}
