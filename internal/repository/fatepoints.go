package repository

import (
	"context"
	"time"

	"github.com/lunarforge/gachad/internal/domain"
)

// FatePoints defines persistence for the fate-point ledger.
type FatePoints interface {
	GetFatePoints(ctx context.Context, userID string) (*domain.FatePoints, error)

	// ResetStaleWeeks zeroes points_this_week for every row whose stored week
	// start predates weekStart. Returns rows affected. Idempotent; used by
	// the scheduler sweep.
	ResetStaleWeeks(ctx context.Context, weekStart time.Time) (int64, error)

	BeginExchangeTx(ctx context.Context) (ExchangeTx, error)
}

// ExchangeTx wraps one fate-point redemption: debit and grant are
// all-or-nothing.
type ExchangeTx interface {
	Tx

	GetFatePointsForUpdate(ctx context.Context, userID string) (*domain.FatePoints, error)
	DebitPoints(ctx context.Context, userID string, cost int) error

	// Grants, by exchange kind
	CreateSelector(ctx context.Context, selector *domain.Selector) error
	GetPityCounterForUpdate(ctx context.Context, userID string, tier domain.Rarity) (int, error)
	ReducePityCounter(ctx context.Context, userID string, tier domain.Rarity, newValue int) error
	CreditRollTickets(ctx context.Context, userID string, count int) error
}
