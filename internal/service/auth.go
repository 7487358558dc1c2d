package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"telegram_rpg/internal/config"
	"telegram_rpg/internal/domain"
	"telegram_rpg/internal/repository"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/jwt"
	"telegram_rpg/pkg/logger"
)

type AuthService interface {
	// TelegramLogin регистрирует или обновляет игрока по данным Telegram
	// Login Widget и выдаёт пару токенов.
	TelegramLogin(ctx context.Context, req TelegramLoginRequest) (*LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*domain.Player, error)
}

type TelegramLoginRequest struct {
	TelegramID string `json:"telegramId" binding:"required"`
	Username   string `json:"username" binding:"required"`
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName"`
	Avatar     string `json:"avatar"`
	AuthDate   int64  `json:"authDate"`
	Hash       string `json:"hash"`
}

type LoginResponse struct {
	Player       *domain.Player `json:"player"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type authService struct {
	playerRepo   repository.PlayerRepository
	locationRepo repository.LocationRepository
	jwtCfg       config.JWTConfig
	telegramCfg  config.TelegramConfig
	log          logger.Logger
}

func NewAuthService(
	playerRepo repository.PlayerRepository,
	locationRepo repository.LocationRepository,
	jwtCfg config.JWTConfig,
	telegramCfg config.TelegramConfig,
	log logger.Logger,
) AuthService {
	return &authService{
		playerRepo:   playerRepo,
		locationRepo: locationRepo,
		jwtCfg:       jwtCfg,
		telegramCfg:  telegramCfg,
		log:          log,
	}
}

func (s *authService) TelegramLogin(ctx context.Context, req TelegramLoginRequest) (*LoginResponse, error) {
	if req.TelegramID == "" || req.Username == "" || req.FirstName == "" {
		return nil, apperrors.ErrValidation
	}

	// Проверка подписи виджета включается токеном бота
	if s.telegramCfg.BotToken != "" && req.Hash != "" {
		if !verifyTelegramHash(req, s.telegramCfg.BotToken) {
			s.log.Warn("Telegram hash verification failed", "telegram_id", req.TelegramID)
			return nil, apperrors.ErrUnauthorized
		}
	}

	player, err := s.playerRepo.GetByTelegramID(ctx, req.TelegramID)
	switch {
	case errors.Is(err, apperrors.ErrPlayerNotFound):
		player, err = s.registerPlayer(ctx, req)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		// Обновляем базовые поля, если изменились
		player.Username = req.Username
		player.FirstName = req.FirstName
		player.LastName = req.LastName
		if req.Avatar != "" {
			player.Avatar = req.Avatar
		}
		if err := s.playerRepo.Update(ctx, player); err != nil {
			return nil, err
		}
	}

	accessToken, err := jwt.GenerateAccessToken(player.ID, player.TelegramID, player.Username, s.jwtCfg.AccessSecret, s.jwtCfg.AccessTTL)
	if err != nil {
		s.log.Error("Failed to generate access token", "error", err)
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := jwt.GenerateRefreshToken(player.ID, s.jwtCfg.RefreshSecret, s.jwtCfg.RefreshTTL)
	if err != nil {
		s.log.Error("Failed to generate refresh token", "error", err)
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &LoginResponse{
		Player:       player,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// registerPlayer создаёт игрока со стартовой локацией и персональным домом.
func (s *authService) registerPlayer(ctx context.Context, req TelegramLoginRequest) (*domain.Player, error) {
	player := &domain.Player{
		ID:         uuid.New(),
		TelegramID: req.TelegramID,
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Avatar:     req.Avatar,
		Level:      1,
		Experience: 0,
		Stats:      domain.DefaultStats(),
		Inventory:  []domain.InventorySlot{},
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
	}

	starting, err := s.locationRepo.GetStarting(ctx)
	if err == nil {
		player.CurrentLocation = &starting.ID
	} else if !errors.Is(err, apperrors.ErrLocationNotFound) {
		return nil, err
	}

	house := &domain.Location{
		ID:                 uuid.New(),
		Name:               fmt.Sprintf("Дом %s", req.FirstName),
		Description:        fmt.Sprintf("Уютный дом игрока %s. Здесь можно отдохнуть и поговорить с самим собой.", req.FirstName),
		Type:               domain.LocationTypeHouse,
		Coordinates:        domain.Coordinates{X: 2, Y: 2},
		IsUnlocked:         true,
		Owner:              &player.ID,
		ConnectedLocations: []domain.LocationConnection{},
		AvailableActions:   []domain.LocationAction{},
		BackgroundImage:    "/images/house.jpg",
	}
	if err := s.locationRepo.Create(ctx, house); err != nil {
		return nil, err
	}
	player.HouseLocation = &house.ID

	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}

	s.log.Info("New player registered", "player_id", player.ID, "telegram_id", player.TelegramID)
	return player, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.jwtCfg.RefreshSecret)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	player, err := s.playerRepo.GetByID(ctx, claims.PlayerID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	accessToken, err := jwt.GenerateAccessToken(player.ID, player.TelegramID, player.Username, s.jwtCfg.AccessSecret, s.jwtCfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	newRefreshToken, err := jwt.GenerateRefreshToken(player.ID, s.jwtCfg.RefreshSecret, s.jwtCfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &TokenResponse{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*domain.Player, error) {
	claims, err := jwt.ValidateToken(tokenString, s.jwtCfg.AccessSecret)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	player, err := s.playerRepo.GetByID(ctx, claims.PlayerID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	if err := s.playerRepo.TouchLastActive(ctx, player.ID); err != nil {
		s.log.Warn("Failed to touch last active", "error", err, "player_id", player.ID)
	}

	return player, nil
}

// verifyTelegramHash сверяет подпись данных Telegram Login Widget:
// HMAC-SHA256 от data-check-string с ключом SHA256(bot_token).
func verifyTelegramHash(req TelegramLoginRequest, botToken string) bool {
	fields := map[string]string{
		"id":         req.TelegramID,
		"first_name": req.FirstName,
		"username":   req.Username,
	}
	if req.LastName != "" {
		fields["last_name"] = req.LastName
	}
	if req.Avatar != "" {
		fields["photo_url"] = req.Avatar
	}
	if req.AuthDate != 0 {
		fields["auth_date"] = fmt.Sprintf("%d", req.AuthDate)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	checkString := strings.Join(pairs, "\n")

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(req.Hash)))
}
