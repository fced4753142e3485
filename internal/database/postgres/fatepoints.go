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

// FatePointsRepository implements the fate-point repository for PostgreSQL
type FatePointsRepository struct {
	db *pgxpool.Pool
}

// NewFatePointsRepository creates a new FatePointsRepository
func NewFatePointsRepository(db *pgxpool.Pool) *FatePointsRepository {
	return &FatePointsRepository{db: db}
}

// GetFatePoints reads the ledger. Users without a row read as zero.
func (r *FatePointsRepository) GetFatePoints(ctx context.Context, userID string) (*domain.FatePoints, error) {
	fp := &domain.FatePoints{UserID: userID}
	err := r.db.QueryRow(ctx,
		`SELECT points, points_this_week, week_start FROM fate_points WHERE user_id = $1`,
		userID,
	).Scan(&fp.Points, &fp.PointsThisWeek, &fp.WeekStart)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			fp.WeekStart = domain.WeekStartUTC(time.Now())
			return fp, nil
		}
		return nil, fmt.Errorf("failed to get fate points: %w", err)
	}
	return fp, nil
}

// ResetStaleWeeks zeroes every weekly counter whose stored week predates
// weekStart. Safe to run repeatedly.
func (r *FatePointsRepository) ResetStaleWeeks(ctx context.Context, weekStart time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE fate_points SET points_this_week = 0, week_start = $1, updated_at = NOW()
		 WHERE week_start < $1`,
		weekStart,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reset stale weeks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// BeginExchangeTx starts a transaction and returns an ExchangeTx
func (r *FatePointsRepository) BeginExchangeTx(ctx context.Context) (repository.ExchangeTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin exchange transaction: %w", err)
	}
	return &exchangeTx{tx: tx}, nil
}

// exchangeTx implements repository.ExchangeTx
type exchangeTx struct {
	tx pgx.Tx
}

// Commit commits the transaction
func (t *exchangeTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *exchangeTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return errors.New(domain.ErrMsgTxClosed)
		}
		return err
	}
	return nil
}

// GetFatePointsForUpdate locks the ledger row, creating it on first use, and
// applies the lazy weekly rollover while the lock is held.
func (t *exchangeTx) GetFatePointsForUpdate(ctx context.Context, userID string) (*domain.FatePoints, error) {
	weekStart := domain.WeekStartUTC(time.Now())

	_, err := t.tx.Exec(ctx,
		`INSERT INTO fate_points (user_id, week_start) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, weekStart,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure fate point row: %w", err)
	}

	fp := &domain.FatePoints{UserID: userID}
	err = t.tx.QueryRow(ctx,
		`SELECT points, points_this_week, week_start FROM fate_points WHERE user_id = $1 FOR UPDATE NOWAIT`,
		userID,
	).Scan(&fp.Points, &fp.PointsThisWeek, &fp.WeekStart)
	if err != nil {
		if isLockConflict(err) {
			return nil, domain.ErrConcurrencyConflict
		}
		return nil, fmt.Errorf("failed to lock fate points: %w", err)
	}

	if fp.WeekStart.Before(weekStart) {
		_, err = t.tx.Exec(ctx,
			`UPDATE fate_points SET points_this_week = 0, week_start = $2, updated_at = NOW() WHERE user_id = $1`,
			userID, weekStart,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to roll over fate point week: %w", err)
		}
		fp.PointsThisWeek = 0
		fp.WeekStart = weekStart
	}
	return fp, nil
}

// DebitPoints spends points. The guarded UPDATE backs the service-level
// balance check against concurrent spends.
func (t *exchangeTx) DebitPoints(ctx context.Context, userID string, cost int) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE fate_points SET points = points - $2, updated_at = NOW()
		 WHERE user_id = $1 AND points >= $2`,
		userID, cost,
	)
	if err != nil {
		return fmt.Errorf("failed to debit fate points: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientPoints
	}
	return nil
}

// CreateSelector inserts a selector ticket.
func (t *exchangeTx) CreateSelector(ctx context.Context, selector *domain.Selector) error {
	return createSelector(ctx, t.tx, selector)
}

// GetPityCounterForUpdate locks one tier's counter row.
func (t *exchangeTx) GetPityCounterForUpdate(ctx context.Context, userID string, tier domain.Rarity) (int, error) {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO pity_counters (user_id, tier) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, string(tier),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure pity row: %w", err)
	}

	var current int
	err = t.tx.QueryRow(ctx,
		`SELECT current FROM pity_counters WHERE user_id = $1 AND tier = $2 FOR UPDATE NOWAIT`,
		userID, string(tier),
	).Scan(&current)
	if err != nil {
		if isLockConflict(err) {
			return 0, domain.ErrConcurrencyConflict
		}
		return 0, fmt.Errorf("failed to lock pity counter: %w", err)
	}
	return current, nil
}

// ReducePityCounter writes the post-redemption counter value.
func (t *exchangeTx) ReducePityCounter(ctx context.Context, userID string, tier domain.Rarity, newValue int) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE pity_counters SET current = $3, updated_at = NOW() WHERE user_id = $1 AND tier = $2`,
		userID, string(tier), newValue,
	)
	if err != nil {
		return fmt.Errorf("failed to reduce pity counter: %w", err)
	}
	return nil
}

// CreditRollTickets adds tickets to the wallet, creating it on first use.
func (t *exchangeTx) CreditRollTickets(ctx context.Context, userID string, count int) error {
	return creditRollTickets(ctx, t.tx, userID, count)
}

// createSelector is shared by the exchange and milestone paths.
func createSelector(ctx context.Context, tx pgx.Tx, selector *domain.Selector) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO selectors (id, user_id, rarity, obtained) VALUES ($1, $2, $3, $4)`,
		selector.ID, selector.UserID, string(selector.Rarity), selector.Obtained,
	)
	if err != nil {
		return fmt.Errorf("failed to create selector: %w", err)
	}
	return nil
}

// creditRollTickets is shared by the exchange and milestone paths.
func creditRollTickets(ctx context.Context, tx pgx.Tx, userID string, count int) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO wallets (user_id, roll_tickets) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET roll_tickets = wallets.roll_tickets + $2, updated_at = NOW()`,
		userID, count,
	)
	if err != nil {
		return fmt.Errorf("failed to credit roll tickets: %w", err)
	}
	return nil
}
