package domain

// MilestoneReward is a lifetime-pull threshold with its claim state.
// Reached is derived (TotalPulls >= Threshold); Claimed is one-way.
type MilestoneReward struct {
	Threshold int           `json:"threshold"`
	Reached   bool          `json:"reached"`
	Claimed   bool          `json:"claimed"`
	Reward    RewardPayload `json:"reward"`
}

// RewardPayload is the configured payout for a claimed milestone.
type RewardPayload struct {
	Kind    ExchangeGrantKind `json:"kind"`
	Rarity  Rarity            `json:"rarity,omitempty"`
	Tickets int               `json:"tickets,omitempty"`
	Points  int               `json:"points,omitempty"`
}

// MilestoneProgress is a user's lifetime roll count with per-threshold state.
// TotalPulls never decreases.
type MilestoneProgress struct {
	UserID        string            `json:"userId"`
	TotalPulls    int               `json:"totalPulls"`
	Rewards       []MilestoneReward `json:"rewards"`
	NextThreshold int               `json:"nextMilestone,omitempty"`
}
