package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"telegram_rpg/internal/domain"
	"telegram_rpg/internal/service"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/logger"
)

type MessageHandler struct {
	chatService service.ChatService
	log         logger.Logger
}

func NewMessageHandler(chatService service.ChatService, log logger.Logger) *MessageHandler {
	return &MessageHandler{
		chatService: chatService,
		log:         log,
	}
}

// History — страница истории чата локации, от старых к новым.
// GET /messages/location/:locationId?limit=N&before=RFC3339
func (h *MessageHandler) History(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("locationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location ID"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before timestamp"})
			return
		}
		before = &parsed
	}

	messages, err := h.chatService.History(c.Request.Context(), locationID, limit, before)
	if err != nil {
		h.log.Error("Failed to load messages", "error", err, "location_id", locationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}

	payload := make([]domain.MessagePayload, 0, len(messages))
	for _, m := range messages {
		payload = append(payload, m.Payload())
	}

	c.JSON(http.StatusOK, payload)
}

type CreateMessageRequest struct {
	LocationID   string `json:"locationId" binding:"required"`
	PlayerID     string `json:"playerId" binding:"required"`
	PlayerName   string `json:"playerName"`
	PlayerAvatar string `json:"playerAvatar"`
	Text         string `json:"text" binding:"required"`
}

// Create — запасной путь отправки без живого соединения.
// Очистка и усечение текста те же, что и на socket-пути.
func (h *MessageHandler) Create(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "locationId, playerId и text обязательны"})
		return
	}

	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location ID"})
		return
	}
	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player ID"})
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), locationID, playerID, req.PlayerName, req.PlayerAvatar, req.Text)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Пустое сообщение"})
			return
		}
		h.log.Error("Failed to create message", "error", err, "location_id", locationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create message"})
		return
	}

	c.JSON(http.StatusCreated, message.Payload())
}
