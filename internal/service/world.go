package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"telegram_rpg/internal/domain"
	"telegram_rpg/internal/repository"
	apperrors "telegram_rpg/pkg/errors"
	"telegram_rpg/pkg/logger"
)

// WorldService — одноразовая инициализация мира: базовые предметы,
// локации и связи между ними. Повторный запуск ничего не дублирует.
type WorldService interface {
	InitWorld(ctx context.Context) (*WorldInitResult, error)
}

type WorldInitResult struct {
	ItemsCount     int `json:"itemsCount"`
	LocationsCount int `json:"locationsCount"`
}

type worldService struct {
	locationRepo repository.LocationRepository
	itemRepo     repository.ItemRepository
	log          logger.Logger
}

func NewWorldService(locationRepo repository.LocationRepository, itemRepo repository.ItemRepository, log logger.Logger) WorldService {
	return &worldService{
		locationRepo: locationRepo,
		itemRepo:     itemRepo,
		log:          log,
	}
}

func (s *worldService) InitWorld(ctx context.Context) (*WorldInitResult, error) {
	items, err := s.ensureItems(ctx)
	if err != nil {
		return nil, err
	}

	locations, err := s.ensureLocations(ctx, items)
	if err != nil {
		return nil, err
	}

	if err := s.connectLocations(ctx, locations); err != nil {
		return nil, err
	}

	allItems, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	allLocations, err := s.locationRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.log.Info("World initialized", "items", len(allItems), "locations", len(allLocations))
	return &WorldInitResult{ItemsCount: len(allItems), LocationsCount: len(allLocations)}, nil
}

func (s *worldService) ensureItems(ctx context.Context) (map[string]*domain.Item, error) {
	seed := []domain.Item{
		{Name: "Палка", Description: "Обычная деревянная палка, может пригодиться для различных целей", Type: domain.ItemTypeResource, Rarity: domain.RarityCommon, Icon: "🦯", Value: 1},
		{Name: "Ягоды", Description: "Свежие лесные ягоды, восстанавливают немного здоровья", Type: domain.ItemTypeConsumable, Rarity: domain.RarityCommon, Icon: "🫐", Value: 5},
		{Name: "Грибы", Description: "Съедобные лесные грибы, хороший источник питания", Type: domain.ItemTypeConsumable, Rarity: domain.RarityCommon, Icon: "🍄", Value: 8},
		{Name: "Камень", Description: "Твердый камень, может использоваться для крафта или строительства", Type: domain.ItemTypeResource, Rarity: domain.RarityCommon, Icon: "🪨", Value: 3},
	}

	items := make(map[string]*domain.Item, len(seed))
	for i := range seed {
		item := seed[i]
		existing, err := s.itemRepo.GetByName(ctx, item.Name)
		if err == nil {
			items[item.Name] = existing
			continue
		}
		if !errors.Is(err, apperrors.ErrItemNotFound) {
			return nil, err
		}

		item.ID = uuid.New()
		item.Stackable = true
		item.MaxStack = 99
		if err := s.itemRepo.Create(ctx, &item); err != nil {
			return nil, err
		}
		items[item.Name] = &item
	}

	return items, nil
}

func (s *worldService) ensureLocations(ctx context.Context, items map[string]*domain.Item) (map[string]*domain.Location, error) {
	itemID := func(name string) *uuid.UUID {
		if item, ok := items[name]; ok {
			id := item.ID
			return &id
		}
		return nil
	}

	seed := []domain.Location{
		{
			Name:        "Лес",
			Description: "Темный и таинственный лес с высокими деревьями. Здесь можно найти различные ресурсы.",
			Type:        domain.LocationTypeForest,
			Coordinates: domain.Coordinates{X: 0, Y: 0},
			AvailableActions: []domain.LocationAction{
				{Name: "Найти палку", Description: "Поискать подходящую палку среди упавших веток", ExperienceReward: 5, ItemReward: itemID("Палка"), RequiredLevel: 1},
				{Name: "Найти ягоды", Description: "Собрать спелые лесные ягоды", ExperienceReward: 3, ItemReward: itemID("Ягоды"), RequiredLevel: 1},
				{Name: "Найти грибы", Description: "Поискать съедобные грибы под деревьями", ExperienceReward: 4, ItemReward: itemID("Грибы"), RequiredLevel: 1},
			},
			BackgroundImage: "/images/forest.jpg",
		},
		{
			Name:             "Деревня",
			Description:      "Уютная деревня с дружелюбными жителями. Здесь можно отдохнуть и пополнить запасы.",
			Type:             domain.LocationTypeVillage,
			Coordinates:      domain.Coordinates{X: 1, Y: 0},
			AvailableActions: []domain.LocationAction{},
			BackgroundImage:  "/images/village.jpg",
		},
		{
			Name:             "Болото",
			Description:      "Мрачное болото с туманом. Здесь нужно быть осторожным, но можно найти редкие ресурсы.",
			Type:             domain.LocationTypeSwamp,
			Coordinates:      domain.Coordinates{X: 0, Y: 1},
			AvailableActions: []domain.LocationAction{},
			BackgroundImage:  "/images/swamp.jpg",
		},
		{
			Name:        "Пещера",
			Description: "Темная пещера в горах. Здесь можно найти ценные минералы и камни.",
			Type:        domain.LocationTypeCave,
			Coordinates: domain.Coordinates{X: -1, Y: 0},
			AvailableActions: []domain.LocationAction{
				{Name: "Найти камень", Description: "Поискать подходящие камни в пещере", ExperienceReward: 6, ItemReward: itemID("Камень"), RequiredLevel: 1},
			},
			BackgroundImage: "/images/cave.jpg",
		},
	}

	locations := make(map[string]*domain.Location, len(seed))
	for i := range seed {
		location := seed[i]
		existing, err := s.locationRepo.GetByName(ctx, location.Name)
		if err == nil {
			locations[location.Name] = existing
			continue
		}
		if !errors.Is(err, apperrors.ErrLocationNotFound) {
			return nil, err
		}

		location.ID = uuid.New()
		location.IsUnlocked = true
		location.ConnectedLocations = []domain.LocationConnection{}
		if err := s.locationRepo.Create(ctx, &location); err != nil {
			return nil, err
		}
		locations[location.Name] = &location
	}

	return locations, nil
}

func (s *worldService) connectLocations(ctx context.Context, locations map[string]*domain.Location) error {
	forest, village := locations["Лес"], locations["Деревня"]
	swamp, cave := locations["Болото"], locations["Пещера"]
	if forest == nil || village == nil || swamp == nil || cave == nil {
		return nil
	}

	forest.ConnectedLocations = []domain.LocationConnection{
		{LocationID: village.ID, Direction: domain.DirectionEast},
		{LocationID: swamp.ID, Direction: domain.DirectionSouth},
	}
	village.ConnectedLocations = []domain.LocationConnection{
		{LocationID: forest.ID, Direction: domain.DirectionWest},
		{LocationID: cave.ID, Direction: domain.DirectionWest},
	}
	swamp.ConnectedLocations = []domain.LocationConnection{
		{LocationID: forest.ID, Direction: domain.DirectionNorth},
	}
	cave.ConnectedLocations = []domain.LocationConnection{
		{LocationID: village.ID, Direction: domain.DirectionEast},
	}

	for _, location := range []*domain.Location{forest, village, swamp, cave} {
		if err := s.locationRepo.Update(ctx, location); err != nil {
			return err
		}
	}

	return nil
}
