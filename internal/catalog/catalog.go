package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lunarforge/gachad/internal/domain"
)

// Service exposes the character roster to the roll and selector services.
// The roster is static configuration; ownership state lives in the database.
type Service interface {
	Get(id string) (*domain.Character, error)
	ListByRarity(rarity domain.Rarity) []domain.Character
	PickByRarity(rarity domain.Rarity, exclude []string) (*domain.Character, error)
	PickFrom(ids []string, rarity domain.Rarity) (*domain.Character, error)
}

type service struct {
	byID     map[string]domain.Character
	byRarity map[domain.Rarity][]domain.Character
	strategy PickStrategy
}

// NewService loads the roster file and builds lookup tables.
// A nil strategy defaults to uniform selection within a tier.
func NewService(dir, file string, strategy PickStrategy) (Service, error) {
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return nil, fmt.Errorf("failed to read roster config: %w", err)
	}

	var roster []domain.Character
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse roster config: %w", err)
	}

	return NewServiceFromRoster(roster, strategy)
}

// NewServiceFromRoster builds a catalog from an in-memory roster.
// Exposed for tests and embedded deployments.
func NewServiceFromRoster(roster []domain.Character, strategy PickStrategy) (Service, error) {
	if len(roster) == 0 {
		return nil, fmt.Errorf("%w: empty character roster", domain.ErrInvalidInput)
	}
	if strategy == nil {
		strategy = UniformStrategy{}
	}

	s := &service{
		byID:     make(map[string]domain.Character, len(roster)),
		byRarity: make(map[domain.Rarity][]domain.Character),
		strategy: strategy,
	}
	for _, c := range roster {
		if c.ID == "" || !c.Rarity.Valid() {
			return nil, fmt.Errorf("%w: bad roster entry %q", domain.ErrInvalidInput, c.ID)
		}
		if _, dup := s.byID[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate character id %s", domain.ErrInvalidInput, c.ID)
		}
		s.byID[c.ID] = c
		s.byRarity[c.Rarity] = append(s.byRarity[c.Rarity], c)
	}
	return s, nil
}

func (s *service) Get(id string) (*domain.Character, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCharacterNotFound, id)
	}
	return &c, nil
}

func (s *service) ListByRarity(rarity domain.Rarity) []domain.Character {
	pool := s.byRarity[rarity]
	out := make([]domain.Character, len(pool))
	copy(out, pool)
	return out
}

// PickByRarity selects a character of the tier, excluding the given ids.
// Used for off-banner legendary pulls (exclude = the banner's featured set).
func (s *service) PickByRarity(rarity domain.Rarity, exclude []string) (*domain.Character, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	pool := make([]domain.Character, 0, len(s.byRarity[rarity]))
	for _, c := range s.byRarity[rarity] {
		if !excluded[c.ID] {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no %s characters available", domain.ErrCharacterNotFound, rarity)
	}
	return s.strategy.Pick(pool)
}

// PickFrom selects among the named ids, keeping only entries of the tier.
// Used for featured pulls from a banner's featured set.
func (s *service) PickFrom(ids []string, rarity domain.Rarity) (*domain.Character, error) {
	pool := make([]domain.Character, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.byID[id]; ok && c.Rarity == rarity {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no %s characters among candidates", domain.ErrCharacterNotFound, rarity)
	}
	return s.strategy.Pick(pool)
}
