package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"telegram_rpg/internal/service"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/logger"
)

type AuthHandler struct {
	authService service.AuthService
	log         logger.Logger
}

func NewAuthHandler(authService service.AuthService, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// Telegram — аутентификация/регистрация по данным Telegram Login Widget.
func (h *AuthHandler) Telegram(c *gin.Context) {
	var req service.TelegramLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные Telegram"})
		return
	}

	resp, err := h.authService.TelegramLogin(c.Request.Context(), req)
	if err != nil {
		h.log.Error("Telegram login failed", "error", err, "telegram_id", req.TelegramID)
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": "Ошибка аутентификации"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token is required"})
		return
	}

	tokens, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": "invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// Me возвращает игрока по access-токену.
func (h *AuthHandler) Me(c *gin.Context) {
	player, exists := c.Get("player")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}
