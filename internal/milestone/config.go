package milestone

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/lunarforge/gachad/internal/domain"
)

// Tier is one configured lifetime-pull milestone.
type Tier struct {
	Threshold int                  `json:"threshold"`
	Reward    domain.RewardPayload `json:"reward"`
}

// LoadTiers reads and validates the milestone configuration file.
func LoadTiers(dir, file string) ([]Tier, error) {
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToReadConfig, err)
	}

	var tiers []Tier
	if err := json.Unmarshal(data, &tiers); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToParseConfig, err)
	}

	if err := validateTiers(tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

func validateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: no milestones configured", domain.ErrInvalidInput)
	}

	seen := make(map[int]bool, len(tiers))
	for _, tier := range tiers {
		if tier.Threshold <= 0 {
			return fmt.Errorf("%w: milestone threshold %d must be positive", domain.ErrInvalidInput, tier.Threshold)
		}
		if seen[tier.Threshold] {
			return fmt.Errorf("%w: duplicate milestone threshold %d", domain.ErrInvalidInput, tier.Threshold)
		}
		seen[tier.Threshold] = true

		switch tier.Reward.Kind {
		case domain.GrantSelector:
			if !tier.Reward.Rarity.Valid() || tier.Reward.Rarity == domain.RarityCommon {
				return fmt.Errorf("%w: milestone %d selector rarity %q", domain.ErrInvalidInput, tier.Threshold, tier.Reward.Rarity)
			}
		case domain.GrantRollTickets:
			if tier.Reward.Tickets <= 0 {
				return fmt.Errorf("%w: milestone %d ticket count must be positive", domain.ErrInvalidInput, tier.Threshold)
			}
		case domain.GrantFatePoints:
			if tier.Reward.Points <= 0 {
				return fmt.Errorf("%w: milestone %d point count must be positive", domain.ErrInvalidInput, tier.Threshold)
			}
		default:
			return fmt.Errorf("%w: milestone %d unknown reward kind %q", domain.ErrInvalidInput, tier.Threshold, tier.Reward.Kind)
		}
	}
	return nil
}

// sortTiers returns the tiers in ascending threshold order.
func sortTiers(tiers []Tier) []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out
}
