package handler

import (
	"telegram_rpg/internal/config"
	"telegram_rpg/internal/service"
	"telegram_rpg/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Player    *PlayerHandler
	Location  *LocationHandler
	Message   *MessageHandler
	Admin     *AdminHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(cfg),
		Auth:      NewAuthHandler(services.Auth, log),
		Player:    NewPlayerHandler(services.Player, log),
		Location:  NewLocationHandler(services.Location, log),
		Message:   NewMessageHandler(services.Chat, log),
		Admin:     NewAdminHandler(services.World, cfg, log),
		WebSocket: NewWebSocketHandler(services.Hub, log),
	}
}
