package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"telegram_rpg/internal/domain"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/logger"
)

type fakeChatService struct {
	messages   []*domain.ChatMessage
	lastLimit  int
	lastBefore *time.Time
	sendErr    error
}

func (s *fakeChatService) SendMessage(_ context.Context, locationID, playerID uuid.UUID, playerName, playerAvatar, text string) (*domain.ChatMessage, error) {
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	return &domain.ChatMessage{
		ID:         1,
		LocationID: locationID,
		PlayerID:   playerID,
		PlayerName: playerName,
		Text:       text,
		CreatedAt:  time.Now(),
	}, nil
}

func (s *fakeChatService) History(_ context.Context, _ uuid.UUID, limit int, before *time.Time) ([]*domain.ChatMessage, error) {
	s.lastLimit = limit
	s.lastBefore = before
	return s.messages, nil
}

func newMessageRouter(chat *fakeChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMessageHandler(chat, logger.New("error"))

	router := gin.New()
	router.GET("/api/v1/messages/location/:locationId", h.History)
	router.POST("/api/v1/messages", h.Create)
	return router
}

func TestHistoryReturnsWirePayload(t *testing.T) {
	locationID, playerID := uuid.New(), uuid.New()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	chat := &fakeChatService{messages: []*domain.ChatMessage{
		{ID: 1, LocationID: locationID, PlayerID: playerID, PlayerName: "Алиса", Text: "привет", CreatedAt: created},
		{ID: 2, LocationID: locationID, PlayerID: playerID, PlayerName: "Алиса", Text: "ещё", CreatedAt: created.Add(time.Second)},
	}}
	router := newMessageRouter(chat)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages/location/"+locationID.String()+"?limit=100", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 100, chat.lastLimit)

	var payload []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload, 2)
	require.Equal(t, float64(1), payload[0]["id"])
	require.Equal(t, locationID.String(), payload[0]["locationId"])
	require.Equal(t, playerID.String(), payload[0]["playerId"])
	require.Equal(t, "привет", payload[0]["message"])
	require.Contains(t, payload[0], "playerName")
	require.Contains(t, payload[0], "timestamp")
}

func TestHistoryEmptyIsJSONArray(t *testing.T) {
	router := newMessageRouter(&fakeChatService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages/location/"+uuid.NewString(), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestHistoryParsesBeforeCursor(t *testing.T) {
	chat := &fakeChatService{}
	router := newMessageRouter(chat)

	before := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/messages/location/"+uuid.NewString()+"?before="+before.Format(time.RFC3339), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, chat.lastBefore)
	require.True(t, chat.lastBefore.Equal(before))
}

func TestHistoryRejectsBadInput(t *testing.T) {
	router := newMessageRouter(&fakeChatService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages/location/not-a-uuid", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet,
		"/api/v1/messages/location/"+uuid.NewString()+"?before=вчера", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMessageFallback(t *testing.T) {
	chat := &fakeChatService{}
	router := newMessageRouter(chat)

	body := `{"locationId":"` + uuid.NewString() + `","playerId":"` + uuid.NewString() + `","text":"привет"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "привет", payload["message"])
}

func TestCreateMessageValidation(t *testing.T) {
	router := newMessageRouter(&fakeChatService{sendErr: apperrors.ErrValidation})

	// Нет обязательных полей
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Пустой после очистки текст
	body := `{"locationId":"` + uuid.NewString() + `","playerId":"` + uuid.NewString() + `","text":"<div></div>"}`
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Пустое сообщение")
}
