package fatepoints

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lunarforge/gachad/internal/domain"
)

// LoadOptions reads and validates the exchange option configuration file.
func LoadOptions(dir, file string) ([]domain.ExchangeOption, error) {
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToReadOptions, err)
	}

	var options []domain.ExchangeOption
	if err := json.Unmarshal(data, &options); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToParseOptions, err)
	}

	if err := validateOptions(options); err != nil {
		return nil, err
	}
	return options, nil
}

func validateOptions(options []domain.ExchangeOption) error {
	if len(options) == 0 {
		return fmt.Errorf("%w: no exchange options configured", domain.ErrInvalidInput)
	}

	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if opt.ID == "" {
			return fmt.Errorf("%w: exchange option with empty id", domain.ErrInvalidInput)
		}
		if seen[opt.ID] {
			return fmt.Errorf("%w: duplicate exchange option id %s", domain.ErrInvalidInput, opt.ID)
		}
		seen[opt.ID] = true

		if opt.Cost <= 0 {
			return fmt.Errorf("%w: option %s cost must be positive", domain.ErrInvalidInput, opt.ID)
		}

		switch opt.Kind {
		case domain.GrantSelector:
			if !opt.Rarity.Valid() || opt.Rarity == domain.RarityCommon {
				return fmt.Errorf("%w: option %s selector rarity %q", domain.ErrInvalidInput, opt.ID, opt.Rarity)
			}
		case domain.GrantPityReduction:
			valid := false
			for _, tier := range domain.PityTiers {
				if opt.Rarity == tier {
					valid = true
				}
			}
			if !valid {
				return fmt.Errorf("%w: option %s pity tier %q", domain.ErrInvalidInput, opt.ID, opt.Rarity)
			}
		case domain.GrantRollTickets:
			if opt.Tickets <= 0 {
				return fmt.Errorf("%w: option %s ticket count must be positive", domain.ErrInvalidInput, opt.ID)
			}
		default:
			return fmt.Errorf("%w: option %s unknown grant kind %q", domain.ErrInvalidInput, opt.ID, opt.Kind)
		}
	}
	return nil
}
