package catalog

import (
	"github.com/lunarforge/gachad/internal/domain"
	"github.com/lunarforge/gachad/internal/utils"
)

// PickStrategy decides which character within a rarity tier a pull yields.
// The contract observable from clients does not pin this down, so it stays
// pluggable; uniform selection is the default.
type PickStrategy interface {
	Pick(pool []domain.Character) (*domain.Character, error)
}

// UniformStrategy picks uniformly at random from the pool.
type UniformStrategy struct{}

func (UniformStrategy) Pick(pool []domain.Character) (*domain.Character, error) {
	idx, err := utils.SecureRandomInt(0, len(pool)-1)
	if err != nil {
		return nil, err
	}
	c := pool[idx]
	return &c, nil
}

// FirstStrategy always picks the first candidate. Deterministic, for tests.
type FirstStrategy struct{}

func (FirstStrategy) Pick(pool []domain.Character) (*domain.Character, error) {
	c := pool[0]
	return &c, nil
}
