package gacha

import (
	"fmt"

	"github.com/lunarforge/gachad/internal/domain"
)

// TierProgress is the derived read-model for one pity counter. Percent and
// UntilGuaranteed are computed from Current and the configured threshold,
// never stored.
type TierProgress struct {
	Current int     `json:"current"`
	Max     int     `json:"max"`
	Percent float64 `json:"percent"`
}

// SoftPityInfo tells the client whether rate escalation is active for a tier.
type SoftPityInfo struct {
	Active    bool `json:"active"`
	Threshold int  `json:"threshold"`
}

// TierConfig is the authoritative threshold configuration echoed to clients
// so they never hardcode their own copies.
type TierConfig struct {
	HardPity     int     `json:"hardPity"`
	SoftPity     int     `json:"softPity"`
	BoostPerPull float64 `json:"boostPerPull"`
}

// StandardPity groups the banner-agnostic counter views.
type StandardPity struct {
	Progress        map[domain.Rarity]TierProgress `json:"progress"`
	UntilGuaranteed map[domain.Rarity]int          `json:"untilGuaranteed"`
	SoftPity        map[domain.Rarity]SoftPityInfo `json:"softPity"`
}

// BannerPity is the banner-scoped guarantee view.
type BannerPity struct {
	GuaranteedFeatured bool   `json:"guaranteedFeatured"`
	Message            string `json:"message"`
}

// TierConfigSet nests the threshold echo; banner-scoped config slots in
// beside Standard if a future banner ever overrides thresholds.
type TierConfigSet struct {
	Standard map[domain.Rarity]TierConfig `json:"standard"`
}

// PityView is the full pity read-model returned by GET /gacha/pity.
type PityView struct {
	Standard StandardPity  `json:"standard"`
	Banner   BannerPity    `json:"banner"`
	Config   TierConfigSet `json:"config"`
}

// annotateChanges fills the client-facing message on each counter change and
// returns the headline message for the tier that reset, if any did.
func annotateChanges(changes []domain.CounterChange) ([]domain.CounterChange, string) {
	var resetMessage string
	for i, c := range changes {
		switch c.Action {
		case domain.CounterReset:
			changes[i].Message = fmt.Sprintf(MsgCounterResetFmt, c.Tier)
			resetMessage = changes[i].Message
		case domain.CounterIncrement:
			changes[i].Message = fmt.Sprintf(MsgCounterIncrementFmt, c.Tier, c.NewValue)
		}
	}
	return changes, resetMessage
}

// buildPityView derives the read-model from raw state and config.
func buildPityView(state *domain.PityState, banner *domain.BannerState, rates RateTable) *PityView {
	view := &PityView{
		Standard: StandardPity{
			Progress:        make(map[domain.Rarity]TierProgress, len(domain.PityTiers)),
			UntilGuaranteed: make(map[domain.Rarity]int, len(domain.PityTiers)),
			SoftPity:        make(map[domain.Rarity]SoftPityInfo, len(domain.PityTiers)),
		},
		Config: TierConfigSet{
			Standard: make(map[domain.Rarity]TierConfig, len(domain.PityTiers)),
		},
	}

	for _, tier := range domain.PityTiers {
		r := rates[tier]
		current := state.Counter(tier)
		view.Standard.Progress[tier] = TierProgress{
			Current: current,
			Max:     r.HardPity,
			Percent: float64(current) / float64(r.HardPity) * 100,
		}
		view.Standard.UntilGuaranteed[tier] = r.HardPity - current
		view.Standard.SoftPity[tier] = SoftPityInfo{
			Active:    current >= r.SoftPity,
			Threshold: r.SoftPity,
		}
		view.Config.Standard[tier] = TierConfig{
			HardPity:     r.HardPity,
			SoftPity:     r.SoftPity,
			BoostPerPull: r.BoostPerPull,
		}
	}

	view.Banner.GuaranteedFeatured = banner.GuaranteedFeatured
	if banner.GuaranteedFeatured {
		view.Banner.Message = MsgGuaranteedFeatured
	} else {
		view.Banner.Message = MsgFiftyFifty
	}

	return view
}
