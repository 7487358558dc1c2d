package service

import (
	"context"

	"github.com/google/uuid"

	"telegram_rpg/internal/domain"
	"telegram_rpg/internal/repository"
	"telegram_rpg/pkg/logger"
)

type PlayerService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error)
	// AddExperience начисляет опыт (с пересчётом уровня) и сохраняет игрока.
	AddExperience(ctx context.Context, playerID uuid.UUID, exp int) (*domain.Player, error)
	// Move переводит игрока в новую локацию.
	Move(ctx context.Context, playerID, locationID uuid.UUID) (*domain.Location, error)
	// Inventory возвращает содержимое инвентаря с развёрнутыми предметами.
	Inventory(ctx context.Context, playerID uuid.UUID) ([]InventoryEntry, error)
}

// InventoryEntry — слот инвентаря с полным описанием предмета.
type InventoryEntry struct {
	Item     *domain.Item `json:"item"`
	Quantity int          `json:"quantity"`
}

type playerService struct {
	playerRepo   repository.PlayerRepository
	locationRepo repository.LocationRepository
	itemRepo     repository.ItemRepository
	log          logger.Logger
}

func NewPlayerService(
	playerRepo repository.PlayerRepository,
	locationRepo repository.LocationRepository,
	itemRepo repository.ItemRepository,
	log logger.Logger,
) PlayerService {
	return &playerService{
		playerRepo:   playerRepo,
		locationRepo: locationRepo,
		itemRepo:     itemRepo,
		log:          log,
	}
}

func (s *playerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	return s.playerRepo.GetByID(ctx, id)
}

func (s *playerService) AddExperience(ctx context.Context, playerID uuid.UUID, exp int) (*domain.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	oldLevel := player.Level
	player.AddExperience(exp)

	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, err
	}

	if player.Level > oldLevel {
		s.log.Info("Player leveled up", "player_id", playerID, "level", player.Level)
	}

	return player, nil
}

func (s *playerService) Move(ctx context.Context, playerID, locationID uuid.UUID) (*domain.Location, error) {
	location, err := s.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}

	if err := s.playerRepo.UpdateLocation(ctx, playerID, locationID); err != nil {
		return nil, err
	}

	return location, nil
}

func (s *playerService) Inventory(ctx context.Context, playerID uuid.UUID) ([]InventoryEntry, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	entries := make([]InventoryEntry, 0, len(player.Inventory))
	for _, slot := range player.Inventory {
		item, err := s.itemRepo.GetByID(ctx, slot.ItemID)
		if err != nil {
			// Предмет мог быть удалён из каталога — слот пропускаем
			s.log.Warn("Inventory references unknown item", "item_id", slot.ItemID, "player_id", playerID)
			continue
		}
		entries = append(entries, InventoryEntry{Item: item, Quantity: slot.Quantity})
	}

	return entries, nil
}
