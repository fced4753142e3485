package gacha

import (
	"github.com/lunarforge/gachad/internal/domain"
)

// Outcome is the rarity decision for a single roll, before any character is
// attached. NewCounters carries the post-roll counter values; Changes is the
// same mutation expressed as an explicit event log for the client.
type Outcome struct {
	Rarity       domain.Rarity
	PityConsumed bool // hard pity forced this result
	NewCounters  map[domain.Rarity]int
	Changes      []domain.CounterChange
}

// EffectiveRate returns the probability a tier wins this roll given its
// current counter:
//   - below soft pity: the base rate
//   - in soft pity: base + (current - soft + 1) * boost, capped at 1
//   - at hardPity-1 (this roll is the hardPity-th): 1
func EffectiveRate(current int, r TierRate) float64 {
	if current >= r.HardPity-1 {
		return 1.0
	}
	if current < r.SoftPity {
		return r.BaseRate
	}
	p := r.BaseRate + float64(current-r.SoftPity+1)*r.BoostPerPull
	if p > 1.0 {
		p = 1.0
	}
	return p
}

// SampleRarity decides the rarity of one roll. A single uniform draw is
// assigned to the highest tier whose cumulative interval contains it,
// rarest first; common is the fallthrough. The winning tier's counter
// resets to 0 and every other tracked counter advances by 1.
func SampleRarity(counters map[domain.Rarity]int, rates RateTable, rng RandomSource) Outcome {
	// Hard pity short-circuits probability entirely, rarest tier first.
	for _, tier := range domain.PityTiers {
		if counters[tier] >= rates[tier].HardPity-1 {
			return applyWin(tier, true, counters)
		}
	}

	u := rng.Float64()
	cumulative := 0.0
	for _, tier := range domain.PityTiers {
		cumulative += EffectiveRate(counters[tier], rates[tier])
		if u < cumulative {
			return applyWin(tier, false, counters)
		}
	}

	return applyWin(domain.RarityCommon, false, counters)
}

// applyWin builds the post-roll counters and the cascading-reset log.
// A common result resets nothing: all tracked counters advance.
func applyWin(won domain.Rarity, forced bool, counters map[domain.Rarity]int) Outcome {
	out := Outcome{
		Rarity:       won,
		PityConsumed: forced,
		NewCounters:  make(map[domain.Rarity]int, len(domain.PityTiers)),
	}
	for _, tier := range domain.PityTiers {
		if tier == won {
			out.NewCounters[tier] = 0
			out.Changes = append(out.Changes, domain.CounterChange{
				Tier:     tier,
				Action:   domain.CounterReset,
				NewValue: 0,
			})
			continue
		}
		out.NewCounters[tier] = counters[tier] + 1
		out.Changes = append(out.Changes, domain.CounterChange{
			Tier:     tier,
			Action:   domain.CounterIncrement,
			NewValue: counters[tier] + 1,
		})
	}
	return out
}

// FeaturedDecision resolves the banner 50/50 for a legendary result.
type FeaturedDecision struct {
	Featured      bool
	GuaranteeUsed bool
	// GuaranteedNext is the post-roll flag value: set on a 50/50 loss,
	// cleared on any featured win.
	GuaranteedNext bool
}

// DecideFeatured applies the 50/50 rule: a standing guarantee always forces
// the featured character; otherwise a fresh draw under featuredChance wins
// the coin flip. Losing sets the guarantee for the next legendary.
func DecideFeatured(guaranteed bool, featuredChance float64, rng RandomSource) FeaturedDecision {
	if guaranteed {
		return FeaturedDecision{Featured: true, GuaranteeUsed: true, GuaranteedNext: false}
	}
	if rng.Float64() < featuredChance {
		return FeaturedDecision{Featured: true, GuaranteedNext: false}
	}
	return FeaturedDecision{Featured: false, GuaranteedNext: true}
}
