package domain

import "time"

// FatePoints is a user's secondary-currency ledger. Points accrue one per
// roll, capped per ISO week (Monday 00:00 UTC boundary), and only exchange
// redemptions spend them.
type FatePoints struct {
	UserID         string    `json:"userId"`
	Points         int       `json:"points"`
	PointsThisWeek int       `json:"pointsThisWeek"`
	WeekStart      time.Time `json:"weekStart"`
}

// ExchangeGrantKind names what an exchange option hands out on success.
type ExchangeGrantKind string

const (
	GrantSelector      ExchangeGrantKind = "selector"
	GrantPityReduction ExchangeGrantKind = "pity_reduction"
	GrantRollTickets   ExchangeGrantKind = "roll_tickets"

	// GrantFatePoints appears only in milestone rewards, never in
	// exchange options: points cannot buy points.
	GrantFatePoints ExchangeGrantKind = "fate_points"
)

// ExchangeOption is a configured fate-point redemption. Grant parameters are
// interpreted by kind: selector grants carry a rarity, ticket grants a count.
type ExchangeOption struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Cost        int               `json:"cost"`
	Kind        ExchangeGrantKind `json:"kind"`
	Rarity      Rarity            `json:"rarity,omitempty"`
	Tickets     int               `json:"tickets,omitempty"`
}

// ExchangeResult reports a completed redemption.
type ExchangeResult struct {
	OptionID        string `json:"optionId"`
	Success         bool   `json:"success"`
	PointsRemaining int    `json:"pointsRemaining"`
	Message         string `json:"message"`
}

// WeekStartUTC returns the Monday 00:00 UTC boundary containing t.
// Both the lazy credit-path rollover and the scheduler sweep key on this
// value, which makes the weekly reset idempotent.
func WeekStartUTC(t time.Time) time.Time {
	t = t.UTC()
	// weekday with Monday == 0
	wd := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -wd)
}
