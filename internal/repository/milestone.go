package repository

import (
	"context"

	"github.com/lunarforge/gachad/internal/domain"
)

// Milestone defines persistence for lifetime pull counts and claims.
type Milestone interface {
	GetTotalPulls(ctx context.Context, userID string) (int, error)
	GetClaimedThresholds(ctx context.Context, userID string) ([]int, error)

	BeginClaimTx(ctx context.Context) (ClaimTx, error)
}

// ClaimTx wraps one milestone claim so the claim mark and the reward grant
// commit together. MarkClaimed must fail with domain.ErrAlreadyClaimed when
// a row for (userID, threshold) already exists.
type ClaimTx interface {
	Tx

	GetTotalPullsForUpdate(ctx context.Context, userID string) (int, error)
	MarkClaimed(ctx context.Context, userID string, threshold int) error

	CreateSelector(ctx context.Context, selector *domain.Selector) error
	CreditRollTickets(ctx context.Context, userID string, count int) error
	CreditPoints(ctx context.Context, userID string, points int) error
}
