package repository

import (
	"context"

	"github.com/lunarforge/gachad/internal/domain"
)

// Gacha defines the data access required by the roll service.
// Reads outside a transaction serve the display endpoints; all roll
// mutations go through RollTx so pity, billing, fate points and milestone
// writes commit or roll back together.
type Gacha interface {
	GetPityState(ctx context.Context, userID string) (*domain.PityState, error)
	GetBannerState(ctx context.Context, userID, bannerID string) (*domain.BannerState, error)

	// Idempotency replay: a stored result for (userID, key), nil if none.
	GetRollByIdempotencyKey(ctx context.Context, userID, key string) (*domain.RollResult, error)

	BeginRollTx(ctx context.Context) (RollTx, error)
}

// RollTx is the single transaction wrapping one roll. Locked reads give
// per-user serialization: two concurrent rolls for one user queue on the
// pity row instead of both observing hardPity-1.
type RollTx interface {
	Tx

	// Locked read-modify-write surface for the pity counters
	GetPityStateForUpdate(ctx context.Context, userID string) (*domain.PityState, error)
	UpdatePityState(ctx context.Context, state *domain.PityState) error

	GetBannerStateForUpdate(ctx context.Context, userID, bannerID string) (*domain.BannerState, error)
	UpdateBannerState(ctx context.Context, state *domain.BannerState) error

	// Billing collaborator surface, same transaction
	DebitRollTickets(ctx context.Context, userID string, count int) error

	// Side effects of every roll
	CreditFatePoints(ctx context.Context, userID string, amount, weeklyMax int) (*domain.FatePoints, error)
	IncrementTotalPulls(ctx context.Context, userID string) (int, error)

	// Collection grant for the rolled character
	GrantCharacter(ctx context.Context, userID, characterID string) (isNew bool, constellation int, err error)

	SaveRollResult(ctx context.Context, userID, bannerID, idempotencyKey string, result *domain.RollResult) error
}
