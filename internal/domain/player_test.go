package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newPlayer() *Player {
	return &Player{Level: 1, Experience: 0, Stats: DefaultStats()}
}

func TestAddExperienceLevelMath(t *testing.T) {
	p := newPlayer()

	p.AddExperience(50)
	require.Equal(t, 1, p.Level)
	require.Equal(t, 50, p.Experience)

	// 100 опыта — второй уровень
	p.AddExperience(50)
	require.Equal(t, 2, p.Level)
	require.Equal(t, 100, p.Experience)

	// Большое начисление перескакивает несколько уровней
	p.AddExperience(250)
	require.Equal(t, 4, p.Level)
	require.Equal(t, 350, p.Experience)
}

func TestAddExperienceRaisesStats(t *testing.T) {
	p := newPlayer()

	p.AddExperience(100)
	require.Equal(t, 12, p.Stats.Strength)
	require.Equal(t, 12, p.Stats.Agility)
	require.Equal(t, 12, p.Stats.Intelligence)
	require.Equal(t, 12, p.Stats.Vitality)

	// +2 за каждый из двух набранных уровней
	p.AddExperience(200)
	require.Equal(t, 16, p.Stats.Strength)
}

func TestAddExperienceNoLevelNoStatChange(t *testing.T) {
	p := newPlayer()
	p.AddExperience(99)
	require.Equal(t, 1, p.Level)
	require.Equal(t, DefaultStats(), p.Stats)
}

func TestAddItemStacksExisting(t *testing.T) {
	p := newPlayer()
	stick := uuid.New()
	berry := uuid.New()

	p.AddItem(stick, 1)
	p.AddItem(berry, 3)
	p.AddItem(stick, 2)

	require.Len(t, p.Inventory, 2)
	require.Equal(t, InventorySlot{ItemID: stick, Quantity: 3}, p.Inventory[0])
	require.Equal(t, InventorySlot{ItemID: berry, Quantity: 3}, p.Inventory[1])
}
