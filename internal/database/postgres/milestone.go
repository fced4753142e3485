package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lunarforge/gachad/internal/domain"
	"github.com/lunarforge/gachad/internal/repository"
)

// MilestoneRepository implements the milestone repository for PostgreSQL
type MilestoneRepository struct {
	db *pgxpool.Pool
}

// NewMilestoneRepository creates a new MilestoneRepository
func NewMilestoneRepository(db *pgxpool.Pool) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

// GetTotalPulls reads the lifetime pull counter, zero for new users.
func (r *MilestoneRepository) GetTotalPulls(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT total_pulls FROM pull_counts WHERE user_id = $1`,
		userID,
	).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get total pulls: %w", err)
	}
	return total, nil
}

// GetClaimedThresholds lists the milestones the user has already claimed.
func (r *MilestoneRepository) GetClaimedThresholds(ctx context.Context, userID string) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT threshold FROM milestone_claims WHERE user_id = $1 ORDER BY threshold`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get claimed thresholds: %w", err)
	}
	defer rows.Close()

	var thresholds []int
	for rows.Next() {
		var threshold int
		if err := rows.Scan(&threshold); err != nil {
			return nil, fmt.Errorf("failed to scan claimed threshold: %w", err)
		}
		thresholds = append(thresholds, threshold)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read claimed thresholds: %w", err)
	}
	return thresholds, nil
}

// BeginClaimTx starts a transaction and returns a ClaimTx
func (r *MilestoneRepository) BeginClaimTx(ctx context.Context) (repository.ClaimTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	return &claimTx{tx: tx}, nil
}

// claimTx implements repository.ClaimTx
type claimTx struct {
	tx pgx.Tx
}

// Commit commits the transaction
func (t *claimTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *claimTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return errors.New(domain.ErrMsgTxClosed)
		}
		return err
	}
	return nil
}

// GetTotalPullsForUpdate locks the pull counter row for the claim check.
// A user with no row has zero pulls and nothing to lock.
func (t *claimTx) GetTotalPullsForUpdate(ctx context.Context, userID string) (int, error) {
	var total int
	err := t.tx.QueryRow(ctx,
		`SELECT total_pulls FROM pull_counts WHERE user_id = $1 FOR UPDATE NOWAIT`,
		userID,
	).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		if isLockConflict(err) {
			return 0, domain.ErrConcurrencyConflict
		}
		return 0, fmt.Errorf("failed to lock total pulls: %w", err)
	}
	return total, nil
}

// MarkClaimed records the claim. The primary key turns a duplicate claim,
// including a concurrent one, into ErrAlreadyClaimed.
func (t *claimTx) MarkClaimed(ctx context.Context, userID string, threshold int) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO milestone_claims (user_id, threshold, claimed_at) VALUES ($1, $2, $3)`,
		userID, threshold, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyClaimed
		}
		return fmt.Errorf("failed to mark milestone claimed: %w", err)
	}
	return nil
}

// CreateSelector inserts a selector ticket.
func (t *claimTx) CreateSelector(ctx context.Context, selector *domain.Selector) error {
	return createSelector(ctx, t.tx, selector)
}

// CreditRollTickets adds tickets to the wallet.
func (t *claimTx) CreditRollTickets(ctx context.Context, userID string, count int) error {
	return creditRollTickets(ctx, t.tx, userID, count)
}

// CreditPoints adds fate points directly. Milestone payouts bypass the
// weekly earn cap, which only throttles roll income.
func (t *claimTx) CreditPoints(ctx context.Context, userID string, points int) error {
	weekStart := domain.WeekStartUTC(time.Now())
	_, err := t.tx.Exec(ctx,
		`INSERT INTO fate_points (user_id, points, week_start) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET points = fate_points.points + $2, updated_at = NOW()`,
		userID, points, weekStart,
	)
	if err != nil {
		return fmt.Errorf("failed to credit fate points: %w", err)
	}
	return nil
}
