package gacha

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lunarforge/gachad/internal/domain"
)

// TierRate configures one tracked tier. Thresholds live server-side only;
// clients receive them through the pity read endpoint and never hardcode
// their own copies.
type TierRate struct {
	BaseRate     float64 `json:"base_rate"`
	HardPity     int     `json:"hard_pity"`
	SoftPity     int     `json:"soft_pity"`
	BoostPerPull float64 `json:"boost_per_pull"`
}

// RateTable maps each tracked tier to its rate configuration.
type RateTable map[domain.Rarity]TierRate

// Banner is a roll pool with its own featured set. Pity counters are shared
// across banners; only the featured guarantee is banner-scoped.
type Banner struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Featured []string `json:"featured"`
	Active   bool     `json:"active"`
}

// Config is the full gacha configuration loaded from banners.json.
type Config struct {
	Rates             RateTable `json:"rates"`
	FeaturedChance    float64   `json:"featured_chance"`
	FatePointsPerRoll int       `json:"fate_points_per_roll"`
	WeeklyPointsMax   int       `json:"weekly_points_max"`
	Banners           []Banner  `json:"banners"`
}

// LoadConfig reads and validates the gacha configuration file.
func LoadConfig(dir, file string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToReadConfig, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToParseConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural invariants the sampler depends on.
func (c *Config) Validate() error {
	for _, tier := range domain.PityTiers {
		r, ok := c.Rates[tier]
		if !ok {
			return fmt.Errorf("%w: missing rate config for tier %s", domain.ErrInvalidInput, tier)
		}
		if r.BaseRate <= 0 || r.BaseRate >= 1 {
			return fmt.Errorf("%w: tier %s base rate %f out of range", domain.ErrInvalidInput, tier, r.BaseRate)
		}
		if r.HardPity <= 1 {
			return fmt.Errorf("%w: tier %s hard pity %d must exceed 1", domain.ErrInvalidInput, tier, r.HardPity)
		}
		if r.SoftPity < 0 || r.SoftPity >= r.HardPity {
			return fmt.Errorf("%w: tier %s soft pity %d must be below hard pity %d", domain.ErrInvalidInput, tier, r.SoftPity, r.HardPity)
		}
		if r.BoostPerPull < 0 || r.BoostPerPull > 1 {
			return fmt.Errorf("%w: tier %s boost per pull %f out of range", domain.ErrInvalidInput, tier, r.BoostPerPull)
		}
	}
	if c.FeaturedChance <= 0 || c.FeaturedChance >= 1 {
		return fmt.Errorf("%w: featured chance %f out of range", domain.ErrInvalidInput, c.FeaturedChance)
	}
	if c.FatePointsPerRoll <= 0 {
		return fmt.Errorf("%w: fate points per roll must be positive", domain.ErrInvalidInput)
	}
	if c.WeeklyPointsMax <= 0 {
		return fmt.Errorf("%w: weekly points max must be positive", domain.ErrInvalidInput)
	}
	if len(c.Banners) == 0 {
		return fmt.Errorf("%w: at least one banner required", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(c.Banners))
	for _, b := range c.Banners {
		if b.ID == "" {
			return fmt.Errorf("%w: banner with empty id", domain.ErrInvalidInput)
		}
		if seen[b.ID] {
			return fmt.Errorf("%w: duplicate banner id %s", domain.ErrInvalidInput, b.ID)
		}
		seen[b.ID] = true
	}
	return nil
}

// FindBanner returns the banner with the given id, nil if unknown.
func (c *Config) FindBanner(bannerID string) *Banner {
	for i := range c.Banners {
		if c.Banners[i].ID == bannerID {
			return &c.Banners[i]
		}
	}
	return nil
}
