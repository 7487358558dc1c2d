package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"telegram_rpg/internal/domain"
)

func participant(connID, name string) domain.Participant {
	return domain.Participant{
		ConnID:   connID,
		PlayerID: uuid.NewString(),
		Name:     name,
	}
}

func TestPresenceJoinReturnsRosterInJoinOrder(t *testing.T) {
	tracker := NewPresenceTracker()
	forest := uuid.New()

	roster, prev := tracker.Join(forest, participant("conn-1", "Алиса"))
	require.Nil(t, prev)
	require.Len(t, roster, 1)

	roster, prev = tracker.Join(forest, participant("conn-2", "Боб"))
	require.Nil(t, prev)
	require.Len(t, roster, 2)
	require.Equal(t, "Алиса", roster[0].Name)
	require.Equal(t, "Боб", roster[1].Name)
}

func TestPresenceConnectionBelongsToOneRoom(t *testing.T) {
	tracker := NewPresenceTracker()
	forest := uuid.New()
	village := uuid.New()

	tracker.Join(forest, participant("conn-1", "Алиса"))
	tracker.Join(forest, participant("conn-2", "Боб"))

	// Переход Алисы в деревню убирает её из леса
	alice := participant("conn-1", "Алиса")
	roster, prev := tracker.Join(village, alice)

	require.Len(t, roster, 1)
	require.Equal(t, "Алиса", roster[0].Name)

	require.NotNil(t, prev)
	require.Equal(t, forest, prev.LocationID)
	require.Len(t, prev.Roster, 1)
	require.Equal(t, "Боб", prev.Roster[0].Name)

	require.Len(t, tracker.Roster(forest), 1)
	require.Len(t, tracker.Roster(village), 1)
}

func TestPresenceRejoinSameRoomReplacesEntry(t *testing.T) {
	tracker := NewPresenceTracker()
	forest := uuid.New()

	tracker.Join(forest, domain.Participant{ConnID: "conn-1", PlayerID: "p1", Name: "Старое имя"})
	roster, prev := tracker.Join(forest, domain.Participant{ConnID: "conn-1", PlayerID: "p1", Name: "Новое имя"})

	require.Nil(t, prev)
	require.Len(t, roster, 1)
	require.Equal(t, "Новое имя", roster[0].Name)
}

func TestPresenceLeave(t *testing.T) {
	tracker := NewPresenceTracker()
	forest := uuid.New()

	tracker.Join(forest, participant("conn-1", "Алиса"))
	tracker.Join(forest, participant("conn-2", "Боб"))

	update := tracker.Leave("conn-1")
	require.NotNil(t, update)
	require.Equal(t, forest, update.LocationID)
	require.Len(t, update.Roster, 1)
	require.Equal(t, "Боб", update.Roster[0].Name)

	// Повторный уход того же соединения — no-op
	require.Nil(t, tracker.Leave("conn-1"))

	// Соединение без комнаты — no-op
	require.Nil(t, tracker.Leave("conn-unknown"))
}

func TestPresenceEmptyRoomHasEmptyRoster(t *testing.T) {
	tracker := NewPresenceTracker()
	forest := uuid.New()

	tracker.Join(forest, participant("conn-1", "Алиса"))
	update := tracker.Leave("conn-1")

	require.NotNil(t, update)
	require.Empty(t, update.Roster)
	require.Empty(t, tracker.Roster(forest))
}

func TestPresenceRosterIsACopy(t *testing.T) {
	tracker := NewPresenceTracker()
	forest := uuid.New()

	tracker.Join(forest, participant("conn-1", "Алиса"))

	roster := tracker.Roster(forest)
	roster[0].Name = "Подмена"

	require.Equal(t, "Алиса", tracker.Roster(forest)[0].Name)
}
