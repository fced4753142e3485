package domain

import "time"

// Rarity identifies a reward tier. Tiers with pity tracking are legendary,
// epic and rare; common is the fallthrough when no tracked tier wins.
type Rarity string

const (
	RarityLegendary Rarity = "legendary"
	RarityEpic      Rarity = "epic"
	RarityRare      Rarity = "rare"
	RarityCommon    Rarity = "common"
)

// PityTiers lists the tracked tiers from rarest to most common. Sampling and
// cascading-reset logic iterate in this order.
var PityTiers = []Rarity{RarityLegendary, RarityEpic, RarityRare}

// Valid reports whether r is a known rarity.
func (r Rarity) Valid() bool {
	switch r {
	case RarityLegendary, RarityEpic, RarityRare, RarityCommon:
		return true
	}
	return false
}

// PityCounter tracks rolls since the last reward of one tier for one user.
// Counters are global across banners; only the featured guarantee is
// banner-scoped (see BannerState).
type PityCounter struct {
	Tier    Rarity `json:"tier"`
	Current int    `json:"current"`
}

// PityState holds all tracked counters for one user.
type PityState struct {
	UserID   string         `json:"userId"`
	Counters map[Rarity]int `json:"counters"`
}

// Counter returns the current count for a tier, zero if never rolled.
func (s *PityState) Counter(tier Rarity) int {
	if s == nil || s.Counters == nil {
		return 0
	}
	return s.Counters[tier]
}

// BannerState is the per-user, per-banner featured guarantee.
// GuaranteedFeatured flips true when a legendary roll loses the 50/50 and
// clears on any featured legendary (won or guaranteed).
type BannerState struct {
	UserID             string `json:"userId"`
	BannerID           string `json:"bannerId"`
	GuaranteedFeatured bool   `json:"guaranteedFeatured"`
}

// CounterAction distinguishes the two mutations a roll applies to counters.
type CounterAction string

const (
	CounterReset     CounterAction = "reset"
	CounterIncrement CounterAction = "increment"
)

// CounterChange reports one counter mutation caused by a roll. The roll
// response carries these so clients never diff before/after state themselves.
type CounterChange struct {
	Tier     Rarity        `json:"tier"`
	Action   CounterAction `json:"action"`
	NewValue int           `json:"newValue"`
	Message  string        `json:"message"`
}

// RollResult is the full outcome of a single roll.
type RollResult struct {
	Rarity          Rarity          `json:"rarity"`
	Character       *Character      `json:"character,omitempty"`
	PityConsumed    bool            `json:"pityConsumed"`
	GuaranteeUsed   bool            `json:"guaranteeUsed"`
	FeaturedWon     bool            `json:"featuredWon"`
	CascadingResets []CounterChange `json:"cascadingResets"`
	ResetMessage    string          `json:"resetMessage,omitempty"`
	TotalPulls      int             `json:"totalPulls"`
	FatePoints      int             `json:"fatePoints"`
	RolledAt        time.Time       `json:"rolledAt"`
}
