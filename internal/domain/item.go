package domain

import (
	"github.com/google/uuid"
)

const (
	ItemTypeResource   = "resource"
	ItemTypeWeapon     = "weapon"
	ItemTypeArmor      = "armor"
	ItemTypeConsumable = "consumable"
	ItemTypeQuest      = "quest"
)

const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

type Item struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Rarity      string    `json:"rarity"`
	Stackable   bool      `json:"stackable"`
	MaxStack    int       `json:"max_stack"`
	Icon        string    `json:"icon,omitempty"`
	Value       int       `json:"value"`
}
