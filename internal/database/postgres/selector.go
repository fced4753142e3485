package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lunarforge/gachad/internal/domain"
	"github.com/lunarforge/gachad/internal/repository"
)

// SelectorRepository implements the selector repository for PostgreSQL
type SelectorRepository struct {
	db *pgxpool.Pool
}

// NewSelectorRepository creates a new SelectorRepository
func NewSelectorRepository(db *pgxpool.Pool) *SelectorRepository {
	return &SelectorRepository{db: db}
}

// ListSelectors returns the user's unredeemed selector tickets.
func (r *SelectorRepository) ListSelectors(ctx context.Context, userID string) ([]domain.Selector, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, rarity, obtained FROM selectors WHERE user_id = $1 ORDER BY obtained`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list selectors: %w", err)
	}
	defer rows.Close()

	var selectors []domain.Selector
	for rows.Next() {
		var sel domain.Selector
		var rarity string
		if err := rows.Scan(&sel.ID, &sel.UserID, &rarity, &sel.Obtained); err != nil {
			return nil, fmt.Errorf("failed to scan selector: %w", err)
		}
		sel.Rarity = domain.Rarity(rarity)
		selectors = append(selectors, sel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read selectors: %w", err)
	}
	return selectors, nil
}

// GetOwnedCharacters returns the user's collection.
func (r *SelectorRepository) GetOwnedCharacters(ctx context.Context, userID string) ([]domain.OwnedCharacter, error) {
	rows, err := r.db.Query(ctx,
		`SELECT character_id, constellation FROM owned_characters WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get owned characters: %w", err)
	}
	defer rows.Close()

	var owned []domain.OwnedCharacter
	for rows.Next() {
		var oc domain.OwnedCharacter
		if err := rows.Scan(&oc.CharacterID, &oc.Constellation); err != nil {
			return nil, fmt.Errorf("failed to scan owned character: %w", err)
		}
		owned = append(owned, oc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read owned characters: %w", err)
	}
	return owned, nil
}

// BeginRedeemTx starts a transaction and returns a RedeemTx
func (r *SelectorRepository) BeginRedeemTx(ctx context.Context) (repository.RedeemTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin redeem transaction: %w", err)
	}
	return &redeemTx{tx: tx}, nil
}

// redeemTx implements repository.RedeemTx
type redeemTx struct {
	tx pgx.Tx
}

// Commit commits the transaction
func (t *redeemTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *redeemTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return errors.New(domain.ErrMsgTxClosed)
		}
		return err
	}
	return nil
}

// GetSelectorForUpdate locks the ticket row. Returns nil for a missing
// ticket or one owned by another user; the service maps that to
// ErrSelectorNotFound without leaking whose ticket it was.
func (t *redeemTx) GetSelectorForUpdate(ctx context.Context, userID string, selectorID uuid.UUID) (*domain.Selector, error) {
	sel := &domain.Selector{}
	var rarity string
	err := t.tx.QueryRow(ctx,
		`SELECT id, user_id, rarity, obtained FROM selectors
		 WHERE id = $1 AND user_id = $2 FOR UPDATE NOWAIT`,
		selectorID, userID,
	).Scan(&sel.ID, &sel.UserID, &rarity, &sel.Obtained)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isLockConflict(err) {
			return nil, domain.ErrConcurrencyConflict
		}
		return nil, fmt.Errorf("failed to lock selector: %w", err)
	}
	sel.Rarity = domain.Rarity(rarity)
	return sel, nil
}

// DeleteSelector consumes the ticket.
func (t *redeemTx) DeleteSelector(ctx context.Context, selectorID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM selectors WHERE id = $1`, selectorID)
	if err != nil {
		return fmt.Errorf("failed to delete selector: %w", err)
	}
	return nil
}

// GrantCharacter adds the chosen character or raises its constellation.
func (t *redeemTx) GrantCharacter(ctx context.Context, userID, characterID string) (bool, int, error) {
	return grantCharacter(ctx, t.tx, userID, characterID)
}
