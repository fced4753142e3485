package domain

// Event type constants published on the in-process bus.
const (
	EventRollCompleted    = "gacha.roll_completed"
	EventLegendaryPulled  = "gacha.legendary_pulled"
	EventHardPityHit      = "gacha.hard_pity_hit"
	EventMilestoneClaimed = "gacha.milestone_claimed"
	EventExchangeRedeemed = "gacha.exchange_redeemed"
	EventSelectorRedeemed = "gacha.selector_redeemed"
)

// RollCompletedPayload is the payload for EventRollCompleted.
type RollCompletedPayload struct {
	UserID   string     `json:"user_id"`
	BannerID string     `json:"banner_id"`
	Result   RollResult `json:"result"`
}

// MilestoneClaimedPayload is the payload for EventMilestoneClaimed.
type MilestoneClaimedPayload struct {
	UserID    string        `json:"user_id"`
	Threshold int           `json:"threshold"`
	Reward    RewardPayload `json:"reward"`
}
