package service

import (
	"context"

	"github.com/google/uuid"

	"telegram_rpg/internal/domain"
	"telegram_rpg/internal/repository"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/logger"
)

type LocationService interface {
	List(ctx context.Context) ([]*domain.Location, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Location, error)
	// PerformAction выполняет действие локации от имени игрока:
	// проверка уровня, начисление опыта, выдача предмета.
	PerformAction(ctx context.Context, locationID, playerID uuid.UUID, actionName string) (*ActionResult, error)
}

// ActionResult — итог действия: обновлённый игрок и полученная награда.
type ActionResult struct {
	Player           *domain.Player `json:"player"`
	ExperienceGained int            `json:"experience_gained"`
	ItemReceived     *domain.Item   `json:"item_received,omitempty"`
}

type locationService struct {
	locationRepo repository.LocationRepository
	playerRepo   repository.PlayerRepository
	itemRepo     repository.ItemRepository
	log          logger.Logger
}

func NewLocationService(
	locationRepo repository.LocationRepository,
	playerRepo repository.PlayerRepository,
	itemRepo repository.ItemRepository,
	log logger.Logger,
) LocationService {
	return &locationService{
		locationRepo: locationRepo,
		playerRepo:   playerRepo,
		itemRepo:     itemRepo,
		log:          log,
	}
}

func (s *locationService) List(ctx context.Context) ([]*domain.Location, error) {
	return s.locationRepo.List(ctx)
}

func (s *locationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Location, error) {
	return s.locationRepo.GetByID(ctx, id)
}

func (s *locationService) PerformAction(ctx context.Context, locationID, playerID uuid.UUID, actionName string) (*ActionResult, error) {
	location, err := s.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}

	var action *domain.LocationAction
	for i := range location.AvailableActions {
		if location.AvailableActions[i].Name == actionName {
			action = &location.AvailableActions[i]
			break
		}
	}
	if action == nil {
		return nil, apperrors.ErrNotFound
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.Level < action.RequiredLevel {
		return nil, apperrors.ErrForbidden
	}

	result := &ActionResult{ExperienceGained: action.ExperienceReward}

	player.AddExperience(action.ExperienceReward)

	if action.ItemReward != nil {
		item, err := s.itemRepo.GetByID(ctx, *action.ItemReward)
		if err == nil {
			player.AddItem(item.ID, 1)
			result.ItemReceived = item
		} else {
			s.log.Warn("Action references unknown item", "item_id", *action.ItemReward, "location_id", locationID)
		}
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, err
	}

	result.Player = player
	return result, nil
}
