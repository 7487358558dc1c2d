package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"telegram_rpg/internal/domain"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/logger"
)

// fakeConn записывает всё, что шлюз пишет в соединение.
type fakeConn struct {
	id string

	mu     sync.Mutex
	frames []Envelope
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, v.(Envelope))
	return nil
}

func (c *fakeConn) received() []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Envelope, len(c.frames))
	copy(out, c.frames)
	return out
}

func (c *fakeConn) lastEvent(event string) (Envelope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.frames) - 1; i >= 0; i-- {
		if c.frames[i].Event == event {
			return c.frames[i], true
		}
	}
	return Envelope{}, false
}

func (c *fakeConn) countEvent(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, f := range c.frames {
		if f.Event == event {
			n++
		}
	}
	return n
}

// fakeChat — ChatService, фиксирующий порядок записи: каждое сохранённое
// сообщение получает монотонный ID.
type fakeChat struct {
	mu      sync.Mutex
	nextID  int64
	stored  []*domain.ChatMessage
	sendErr error
}

func (s *fakeChat) SendMessage(_ context.Context, locationID, playerID uuid.UUID, playerName, playerAvatar, text string) (*domain.ChatMessage, error) {
	clean := SanitizeText(text)
	if clean == "" {
		return nil, apperrors.ErrValidation
	}
	if s.sendErr != nil {
		return nil, s.sendErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	message := &domain.ChatMessage{
		ID:           s.nextID,
		LocationID:   locationID,
		PlayerID:     playerID,
		PlayerName:   playerName,
		PlayerAvatar: playerAvatar,
		Text:         clean,
		CreatedAt:    time.Now(),
	}
	s.stored = append(s.stored, message)
	return message, nil
}

func (s *fakeChat) History(_ context.Context, _ uuid.UUID, _ int, _ *time.Time) ([]*domain.ChatMessage, error) {
	return nil, nil
}

// allowAll — лимитер, пропускающий всё.
type allowAll struct{}

func (allowAll) Admit(context.Context, string, time.Time) (bool, error) { return true, nil }

// denyAll — лимитер, отклоняющий всё.
type denyAll struct{}

func (denyAll) Admit(context.Context, string, time.Time) (bool, error) { return false, nil }

func newTestHub(limiter MessageLimiter, chat ChatService) *RoomHub {
	if chat == nil {
		chat = &fakeChat{}
	}
	return NewRoomHub(NewPresenceTracker(), limiter, chat, logger.New("error"))
}

func join(t *testing.T, hub *RoomHub, conn *fakeConn, locationID uuid.UUID, playerID, name string) {
	t.Helper()
	hub.Register(conn)
	err := hub.JoinLocation(context.Background(), conn, JoinLocationPayload{
		LocationID: locationID.String(),
		PlayerID:   playerID,
		PlayerName: name,
	})
	require.NoError(t, err)
}

func TestHubJoinBroadcastsRoster(t *testing.T) {
	hub := newTestHub(allowAll{}, nil)
	forest := uuid.New()

	alice := &fakeConn{id: "conn-1"}
	join(t, hub, alice, forest, uuid.NewString(), "Алиса")

	bob := &fakeConn{id: "conn-2"}
	join(t, hub, bob, forest, uuid.NewString(), "Боб")

	// Обе стороны получили состав из двух участников
	for _, conn := range []*fakeConn{alice, bob} {
		env, ok := conn.lastEvent(EventParticipantsUpdate)
		require.True(t, ok)
		roster := env.Data.([]domain.Participant)
		require.Len(t, roster, 2)
		require.Equal(t, "Алиса", roster[0].Name)
		require.Equal(t, "Боб", roster[1].Name)
	}
}

func TestHubJoinDefaultsPlayerName(t *testing.T) {
	hub := newTestHub(allowAll{}, nil)
	forest := uuid.New()

	conn := &fakeConn{id: "conn-1"}
	join(t, hub, conn, forest, uuid.NewString(), "")

	env, ok := conn.lastEvent(EventParticipantsUpdate)
	require.True(t, ok)
	roster := env.Data.([]domain.Participant)
	require.Equal(t, domain.DefaultPlayerName, roster[0].Name)
}

func TestHubMoveNotifiesBothRooms(t *testing.T) {
	hub := newTestHub(allowAll{}, nil)
	forest, village := uuid.New(), uuid.New()

	alice := &fakeConn{id: "conn-1"}
	bob := &fakeConn{id: "conn-2"}
	join(t, hub, alice, forest, uuid.NewString(), "Алиса")
	join(t, hub, bob, forest, uuid.NewString(), "Боб")

	err := hub.JoinLocation(context.Background(), alice, JoinLocationPayload{
		LocationID: village.String(),
		PlayerID:   uuid.NewString(),
		PlayerName: "Алиса",
	})
	require.NoError(t, err)

	// Боб остался в лесу и увидел уход Алисы
	env, ok := bob.lastEvent(EventParticipantsUpdate)
	require.True(t, ok)
	roster := env.Data.([]domain.Participant)
	require.Len(t, roster, 1)
	require.Equal(t, "Боб", roster[0].Name)

	// Алиса получила состав деревни
	env, ok = alice.lastEvent(EventParticipantsUpdate)
	require.True(t, ok)
	roster = env.Data.([]domain.Participant)
	require.Len(t, roster, 1)
	require.Equal(t, "Алиса", roster[0].Name)
}

func TestHubJoinRejectsBadLocationID(t *testing.T) {
	hub := newTestHub(allowAll{}, nil)
	conn := &fakeConn{id: "conn-1"}
	hub.Register(conn)

	err := hub.JoinLocation(context.Background(), conn, JoinLocationPayload{
		LocationID: "не-uuid",
		PlayerID:   uuid.NewString(),
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestHubSendBroadcastsToRoomOnly(t *testing.T) {
	chat := &fakeChat{}
	hub := newTestHub(allowAll{}, chat)
	forest, village := uuid.New(), uuid.New()

	alice := &fakeConn{id: "conn-1"}
	bob := &fakeConn{id: "conn-2"}
	carol := &fakeConn{id: "conn-3"}
	alicePlayer := uuid.NewString()
	join(t, hub, alice, forest, alicePlayer, "Алиса")
	join(t, hub, bob, forest, uuid.NewString(), "Боб")
	join(t, hub, carol, village, uuid.NewString(), "Кэрол")

	err := hub.SendMessage(context.Background(), alice, SendMessagePayload{
		LocationID: forest.String(),
		PlayerID:   alicePlayer,
		PlayerName: "Алиса",
		Message:    "Привет, лес!",
	})
	require.NoError(t, err)

	for _, conn := range []*fakeConn{alice, bob} {
		env, ok := conn.lastEvent(EventNewMessage)
		require.True(t, ok, "room member must receive the message")
		payload := env.Data.(domain.MessagePayload)
		require.Equal(t, "Привет, лес!", payload.Message)
		require.Equal(t, forest.String(), payload.LocationID)
	}

	// Другая комната сообщения не видит
	require.Zero(t, carol.countEvent(EventNewMessage))
}

func TestHubBroadcastCarriesPersistedMessage(t *testing.T) {
	chat := &fakeChat{}
	hub := newTestHub(allowAll{}, chat)
	forest := uuid.New()

	conn := &fakeConn{id: "conn-1"}
	playerID := uuid.NewString()
	join(t, hub, conn, forest, playerID, "Алиса")

	err := hub.SendMessage(context.Background(), conn, SendMessagePayload{
		LocationID: forest.String(),
		PlayerID:   playerID,
		Message:    "первое",
	})
	require.NoError(t, err)

	// Рассылка несёт ID и время, присвоенные хранилищем
	env, ok := conn.lastEvent(EventNewMessage)
	require.True(t, ok)
	payload := env.Data.(domain.MessagePayload)
	require.Equal(t, chat.stored[0].ID, payload.ID)
	require.Equal(t, chat.stored[0].CreatedAt, payload.Timestamp)
}

func TestHubSendFromNonMemberIsDropped(t *testing.T) {
	chat := &fakeChat{}
	hub := newTestHub(allowAll{}, chat)
	forest, village := uuid.New(), uuid.New()

	alice := &fakeConn{id: "conn-1"}
	bob := &fakeConn{id: "conn-2"}
	join(t, hub, alice, forest, uuid.NewString(), "Алиса")
	join(t, hub, bob, village, uuid.NewString(), "Боб")

	// Боб состоит в деревне, но шлёт в лес
	err := hub.SendMessage(context.Background(), bob, SendMessagePayload{
		LocationID: forest.String(),
		PlayerID:   uuid.NewString(),
		Message:    "чужая комната",
	})
	require.NoError(t, err)

	require.Empty(t, chat.stored, "message to a foreign room must not be persisted")
	require.Zero(t, alice.countEvent(EventNewMessage))
}

func TestHubRateLimitNoticeIsPrivate(t *testing.T) {
	chat := &fakeChat{}
	hub := newTestHub(denyAll{}, chat)
	forest := uuid.New()

	alice := &fakeConn{id: "conn-1"}
	bob := &fakeConn{id: "conn-2"}
	alicePlayer := uuid.NewString()
	join(t, hub, alice, forest, alicePlayer, "Алиса")
	join(t, hub, bob, forest, uuid.NewString(), "Боб")

	err := hub.SendMessage(context.Background(), alice, SendMessagePayload{
		LocationID: forest.String(),
		PlayerID:   alicePlayer,
		Message:    "слишком быстро",
	})
	require.NoError(t, err)

	env, ok := alice.lastEvent(EventRateLimit)
	require.True(t, ok, "sender must get a personal notice")
	require.Equal(t, RateLimitPayload{Message: RateLimitNotice}, env.Data)

	require.Zero(t, bob.countEvent(EventRateLimit), "notice must not reach the room")
	require.Empty(t, chat.stored, "rejected message must not be persisted")
	require.Zero(t, alice.countEvent(EventNewMessage))
}

func TestHubSendEmptyAfterSanitizeIsSilentlyDropped(t *testing.T) {
	chat := &fakeChat{}
	hub := newTestHub(allowAll{}, chat)
	forest := uuid.New()

	conn := &fakeConn{id: "conn-1"}
	playerID := uuid.NewString()
	join(t, hub, conn, forest, playerID, "Алиса")

	err := hub.SendMessage(context.Background(), conn, SendMessagePayload{
		LocationID: forest.String(),
		PlayerID:   playerID,
		Message:    "<div>   </div>",
	})
	require.NoError(t, err)
	require.Empty(t, chat.stored)
	require.Zero(t, conn.countEvent(EventNewMessage))
}

func TestHubStorageFailureSkipsBroadcast(t *testing.T) {
	chat := &fakeChat{sendErr: errors.New("db down")}
	hub := newTestHub(allowAll{}, chat)
	forest := uuid.New()

	conn := &fakeConn{id: "conn-1"}
	playerID := uuid.NewString()
	join(t, hub, conn, forest, playerID, "Алиса")

	err := hub.SendMessage(context.Background(), conn, SendMessagePayload{
		LocationID: forest.String(),
		PlayerID:   playerID,
		Message:    "не сохранится",
	})
	require.NoError(t, err)
	require.Zero(t, conn.countEvent(EventNewMessage), "unpersisted message must not be broadcast")
}

func TestHubDisconnectNotifiesRoom(t *testing.T) {
	hub := newTestHub(allowAll{}, nil)
	forest := uuid.New()

	alice := &fakeConn{id: "conn-1"}
	bob := &fakeConn{id: "conn-2"}
	join(t, hub, alice, forest, uuid.NewString(), "Алиса")
	join(t, hub, bob, forest, uuid.NewString(), "Боб")

	hub.Disconnect(alice)

	env, ok := bob.lastEvent(EventParticipantsUpdate)
	require.True(t, ok)
	roster := env.Data.([]domain.Participant)
	require.Len(t, roster, 1)
	require.Equal(t, "Боб", roster[0].Name)

	// Ушедшее соединение больше не получает рассылок
	before := len(alice.received())
	playerID := uuid.NewString()
	err := hub.SendMessage(context.Background(), bob, SendMessagePayload{
		LocationID: forest.String(),
		PlayerID:   playerID,
		Message:    "после ухода",
	})
	require.NoError(t, err)
	require.Len(t, alice.received(), before)
}
