package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/lunarforge/gachad/internal/domain"
)

// Selector defines persistence for selector tickets and the collection they
// redeem into.
type Selector interface {
	ListSelectors(ctx context.Context, userID string) ([]domain.Selector, error)
	GetOwnedCharacters(ctx context.Context, userID string) ([]domain.OwnedCharacter, error)

	BeginRedeemTx(ctx context.Context) (RedeemTx, error)
}

// RedeemTx wraps one redemption: the selector delete and the character grant
// commit together regardless of the new-vs-constellation branch.
type RedeemTx interface {
	Tx

	// GetSelectorForUpdate returns nil when the selector does not exist or
	// belongs to another user; the service maps that to ErrSelectorNotFound.
	GetSelectorForUpdate(ctx context.Context, userID string, selectorID uuid.UUID) (*domain.Selector, error)
	DeleteSelector(ctx context.Context, selectorID uuid.UUID) error
	GrantCharacter(ctx context.Context, userID, characterID string) (isNew bool, constellation int, err error)
}
