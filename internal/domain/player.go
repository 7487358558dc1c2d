package domain

import (
	"time"

	"github.com/google/uuid"
)

type Player struct {
	ID              uuid.UUID       `json:"id"`
	TelegramID      string          `json:"telegram_id"`
	Username        string          `json:"username"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name,omitempty"`
	Avatar          string          `json:"avatar,omitempty"`
	Level           int             `json:"level"`
	Experience      int             `json:"experience"`
	CurrentLocation *uuid.UUID      `json:"current_location,omitempty"`
	HouseLocation   *uuid.UUID      `json:"house_location,omitempty"`
	Stats           PlayerStats     `json:"stats"`
	Inventory       []InventorySlot `json:"inventory"`
	CreatedAt       time.Time       `json:"created_at"`
	LastActive      time.Time       `json:"last_active"`
}

type PlayerStats struct {
	Strength     int `json:"strength"`
	Agility      int `json:"agility"`
	Intelligence int `json:"intelligence"`
	Vitality     int `json:"vitality"`
}

type InventorySlot struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// DefaultStats — стартовые характеристики нового игрока.
func DefaultStats() PlayerStats {
	return PlayerStats{Strength: 10, Agility: 10, Intelligence: 10, Vitality: 10}
}

// AddExperience начисляет опыт и пересчитывает уровень.
// Каждые 100 опыта — новый уровень, +2 ко всем характеристикам за уровень.
func (p *Player) AddExperience(exp int) {
	p.Experience += exp

	newLevel := p.Experience/100 + 1
	if newLevel > p.Level {
		levelsGained := newLevel - p.Level
		p.Level = newLevel
		p.Stats.Strength += 2 * levelsGained
		p.Stats.Agility += 2 * levelsGained
		p.Stats.Intelligence += 2 * levelsGained
		p.Stats.Vitality += 2 * levelsGained
	}
}

// AddItem кладёт предмет в инвентарь, складывая с существующим стеком.
func (p *Player) AddItem(itemID uuid.UUID, quantity int) {
	for i := range p.Inventory {
		if p.Inventory[i].ItemID == itemID {
			p.Inventory[i].Quantity += quantity
			return
		}
	}
	p.Inventory = append(p.Inventory, InventorySlot{ItemID: itemID, Quantity: quantity})
}
