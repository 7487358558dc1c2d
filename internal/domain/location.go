package domain

import (
	"github.com/google/uuid"
)

const (
	LocationTypeForest  = "forest"
	LocationTypeVillage = "village"
	LocationTypeSwamp   = "swamp"
	LocationTypeCave    = "cave"
	LocationTypeHouse   = "house"
)

const (
	DirectionNorth = "north"
	DirectionSouth = "south"
	DirectionEast  = "east"
	DirectionWest  = "west"
)

type Location struct {
	ID                 uuid.UUID            `json:"id"`
	Name               string               `json:"name"`
	Description        string               `json:"description"`
	Type               string               `json:"type"`
	Coordinates        Coordinates          `json:"coordinates"`
	ConnectedLocations []LocationConnection `json:"connected_locations"`
	AvailableActions   []LocationAction     `json:"available_actions"`
	BackgroundImage    string               `json:"background_image,omitempty"`
	IsUnlocked         bool                 `json:"is_unlocked"`
	Owner              *uuid.UUID           `json:"owner,omitempty"`
}

type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type LocationConnection struct {
	LocationID uuid.UUID `json:"location_id"`
	Direction  string    `json:"direction"`
}

// LocationAction — действие, доступное в локации (собрать ресурс и т.п.).
type LocationAction struct {
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	ExperienceReward int        `json:"experience_reward"`
	ItemReward       *uuid.UUID `json:"item_reward,omitempty"`
	RequiredLevel    int        `json:"required_level"`
}
