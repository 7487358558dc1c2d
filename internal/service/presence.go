package service

import (
	"sync"

	"github.com/google/uuid"

	"telegram_rpg/internal/domain"
)

// PresenceTracker хранит участников чатов по локациям.
// Инвариант: соединение состоит не более чем в одной локации;
// повторный join переносит его из прежней комнаты в новую.
type PresenceTracker interface {
	// Join регистрирует участника и возвращает свежий состав комнаты.
	// Если соединение было в другой комнате — prev описывает её обновлённый
	// состав, чтобы шлюз разослал уход.
	Join(locationID uuid.UUID, participant domain.Participant) (roster []domain.Participant, prev *RoomUpdate)

	// Leave убирает соединение из его комнаты.
	Leave(connID string) (update *RoomUpdate)

	// Roster возвращает текущий состав комнаты.
	Roster(locationID uuid.UUID) []domain.Participant
}

// RoomUpdate — комната и её состав после изменения.
type RoomUpdate struct {
	LocationID uuid.UUID
	Roster     []domain.Participant
}

type presenceTracker struct {
	mu    sync.Mutex
	rooms map[uuid.UUID][]domain.Participant // порядок = порядок входа
	conns map[string]uuid.UUID               // connID -> локация
}

func NewPresenceTracker() PresenceTracker {
	return &presenceTracker{
		rooms: make(map[uuid.UUID][]domain.Participant),
		conns: make(map[string]uuid.UUID),
	}
}

func (t *presenceTracker) Join(locationID uuid.UUID, participant domain.Participant) ([]domain.Participant, *RoomUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var prev *RoomUpdate
	if prevLocation, ok := t.conns[participant.ConnID]; ok && prevLocation != locationID {
		roster := t.removeLocked(prevLocation, participant.ConnID)
		prev = &RoomUpdate{LocationID: prevLocation, Roster: roster}
	} else if ok {
		// Повторный join в ту же локацию: заменяем запись участника
		t.removeLocked(locationID, participant.ConnID)
	}

	t.rooms[locationID] = append(t.rooms[locationID], participant)
	t.conns[participant.ConnID] = locationID

	return t.rosterLocked(locationID), prev
}

func (t *presenceTracker) Leave(connID string) *RoomUpdate {
	t.mu.Lock()
	defer t.mu.Unlock()

	locationID, ok := t.conns[connID]
	if !ok {
		return nil
	}

	delete(t.conns, connID)
	roster := t.removeLocked(locationID, connID)

	return &RoomUpdate{LocationID: locationID, Roster: roster}
}

func (t *presenceTracker) Roster(locationID uuid.UUID) []domain.Participant {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rosterLocked(locationID)
}

// removeLocked убирает соединение из комнаты и возвращает её новый состав.
// Пустые комнаты удаляются из карты.
func (t *presenceTracker) removeLocked(locationID uuid.UUID, connID string) []domain.Participant {
	room := t.rooms[locationID]
	for i, p := range room {
		if p.ConnID == connID {
			room = append(room[:i], room[i+1:]...)
			break
		}
	}

	if len(room) == 0 {
		delete(t.rooms, locationID)
	} else {
		t.rooms[locationID] = room
	}

	return t.rosterLocked(locationID)
}

func (t *presenceTracker) rosterLocked(locationID uuid.UUID) []domain.Participant {
	room := t.rooms[locationID]
	roster := make([]domain.Participant, len(room))
	copy(roster, room)
	return roster
}
