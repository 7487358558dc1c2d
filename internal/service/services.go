package service

import (
	"telegram_rpg/internal/config"
	"telegram_rpg/internal/repository"
	"telegram_rpg/pkg/logger"
)

type Services struct {
	Auth      AuthService
	Player    PlayerService
	Location  LocationService
	Chat      ChatService
	World     WorldService
	RateLimit RateLimitService
	Presence  PresenceTracker
	Limiter   MessageLimiter
	Hub       *RoomHub
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger) *Services {
	chat := NewChatService(repos.Message, cfg.Chat.HistoryDefaultLimit, cfg.Chat.HistoryMaxLimit, cfg.Chat.MaxMessageLength, log)
	presence := NewPresenceTracker()
	limiter := NewSlidingWindowLimiter(cfg.Chat.RateLimitMax, cfg.Chat.RateLimitWindow)

	return &Services{
		Auth:      NewAuthService(repos.Player, repos.Location, cfg.JWT, cfg.Telegram, log),
		Player:    NewPlayerService(repos.Player, repos.Location, repos.Item, log),
		Location:  NewLocationService(repos.Location, repos.Player, repos.Item, log),
		Chat:      chat,
		World:     NewWorldService(repos.Location, repos.Item, log),
		RateLimit: NewRateLimitService(repos.RateLimit, log),
		Presence:  presence,
		Limiter:   limiter,
		Hub:       NewRoomHub(presence, limiter, chat, log),
	}
}
