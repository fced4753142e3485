package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lunarforge/gachad/internal/domain"
	"github.com/lunarforge/gachad/internal/repository"
)

// GachaRepository implements the gacha repository for PostgreSQL
type GachaRepository struct {
	db *pgxpool.Pool
}

// NewGachaRepository creates a new GachaRepository
func NewGachaRepository(db *pgxpool.Pool) *GachaRepository {
	return &GachaRepository{db: db}
}

// GetPityState retrieves all tracked counters for a user. Users who never
// rolled read as zero on every tier.
func (r *GachaRepository) GetPityState(ctx context.Context, userID string) (*domain.PityState, error) {
	return scanPityState(ctx, r.db, userID, false)
}

// GetBannerState retrieves the per-banner featured guarantee.
func (r *GachaRepository) GetBannerState(ctx context.Context, userID, bannerID string) (*domain.BannerState, error) {
	state := &domain.BannerState{UserID: userID, BannerID: bannerID}
	err := r.db.QueryRow(ctx,
		`SELECT guaranteed_featured FROM banner_states WHERE user_id = $1 AND banner_id = $2`,
		userID, bannerID,
	).Scan(&state.GuaranteedFeatured)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return state, nil
		}
		return nil, fmt.Errorf("failed to get banner state: %w", err)
	}
	return state, nil
}

// GetRollByIdempotencyKey returns the stored outcome for a replayed roll,
// nil when the key was never used.
func (r *GachaRepository) GetRollByIdempotencyKey(ctx context.Context, userID, key string) (*domain.RollResult, error) {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT result FROM roll_results WHERE user_id = $1 AND idempotency_key = $2`,
		userID, key,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get roll by idempotency key: %w", err)
	}

	var result domain.RollResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored roll: %w", err)
	}
	return &result, nil
}

// BeginRollTx starts a transaction and returns a RollTx for roll operations
func (r *GachaRepository) BeginRollTx(ctx context.Context) (repository.RollTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin roll transaction: %w", err)
	}
	return &rollTx{tx: tx}, nil
}

// rollTx implements repository.RollTx
type rollTx struct {
	tx pgx.Tx
}

// Commit commits the transaction
func (t *rollTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *rollTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return errors.New(domain.ErrMsgTxClosed)
		}
		return err
	}
	return nil
}

// GetPityStateForUpdate locks the user's counter rows. NOWAIT turns a
// concurrent roll on the same user into ErrConcurrencyConflict, which the
// service retries instead of queueing mid-transaction.
func (t *rollTx) GetPityStateForUpdate(ctx context.Context, userID string) (*domain.PityState, error) {
	if err := ensurePityRows(ctx, t.tx, userID); err != nil {
		return nil, err
	}
	return scanPityState(ctx, t.tx, userID, true)
}

// UpdatePityState writes every tracked counter.
func (t *rollTx) UpdatePityState(ctx context.Context, state *domain.PityState) error {
	for tier, current := range state.Counters {
		_, err := t.tx.Exec(ctx,
			`UPDATE pity_counters SET current = $3, updated_at = NOW() WHERE user_id = $1 AND tier = $2`,
			state.UserID, string(tier), current,
		)
		if err != nil {
			return fmt.Errorf("failed to update pity counter %s: %w", tier, err)
		}
	}
	return nil
}

// GetBannerStateForUpdate locks the user's banner row, creating it on first
// use so the lock has something to hold.
func (t *rollTx) GetBannerStateForUpdate(ctx context.Context, userID, bannerID string) (*domain.BannerState, error) {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO banner_states (user_id, banner_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, bannerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure banner state: %w", err)
	}

	state := &domain.BannerState{UserID: userID, BannerID: bannerID}
	err = t.tx.QueryRow(ctx,
		`SELECT guaranteed_featured FROM banner_states WHERE user_id = $1 AND banner_id = $2 FOR UPDATE NOWAIT`,
		userID, bannerID,
	).Scan(&state.GuaranteedFeatured)
	if err != nil {
		if isLockConflict(err) {
			return nil, domain.ErrConcurrencyConflict
		}
		return nil, fmt.Errorf("failed to lock banner state: %w", err)
	}
	return state, nil
}

// UpdateBannerState writes the featured guarantee flag.
func (t *rollTx) UpdateBannerState(ctx context.Context, state *domain.BannerState) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE banner_states SET guaranteed_featured = $3, updated_at = NOW() WHERE user_id = $1 AND banner_id = $2`,
		state.UserID, state.BannerID, state.GuaranteedFeatured,
	)
	if err != nil {
		return fmt.Errorf("failed to update banner state: %w", err)
	}
	return nil
}

// DebitRollTickets charges the wallet. The guarded UPDATE makes the check
// and the debit one statement; zero rows means the balance was short.
func (t *rollTx) DebitRollTickets(ctx context.Context, userID string, count int) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE wallets SET roll_tickets = roll_tickets - $2, updated_at = NOW()
		 WHERE user_id = $1 AND roll_tickets >= $2`,
		userID, count,
	)
	if err != nil {
		return fmt.Errorf("failed to debit roll tickets: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

// CreditFatePoints credits the weekly-capped ledger. A stale stored week is
// rolled over first, keyed on the Monday boundary, so the rollover is
// idempotent under concurrent credits.
func (t *rollTx) CreditFatePoints(ctx context.Context, userID string, amount, weeklyMax int) (*domain.FatePoints, error) {
	weekStart := domain.WeekStartUTC(time.Now())

	_, err := t.tx.Exec(ctx,
		`INSERT INTO fate_points (user_id, week_start) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, weekStart,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure fate point row: %w", err)
	}

	_, err = t.tx.Exec(ctx,
		`UPDATE fate_points SET points_this_week = 0, week_start = $2, updated_at = NOW()
		 WHERE user_id = $1 AND week_start < $2`,
		userID, weekStart,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to roll over fate point week: %w", err)
	}

	_, err = t.tx.Exec(ctx,
		`UPDATE fate_points
		 SET points = points + LEAST($2, $3 - points_this_week),
		     points_this_week = points_this_week + LEAST($2, $3 - points_this_week),
		     updated_at = NOW()
		 WHERE user_id = $1 AND points_this_week < $3`,
		userID, amount, weeklyMax,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to credit fate points: %w", err)
	}

	fp := &domain.FatePoints{UserID: userID}
	err = t.tx.QueryRow(ctx,
		`SELECT points, points_this_week, week_start FROM fate_points WHERE user_id = $1`,
		userID,
	).Scan(&fp.Points, &fp.PointsThisWeek, &fp.WeekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to read fate points: %w", err)
	}
	return fp, nil
}

// IncrementTotalPulls advances the lifetime counter and returns the new total.
func (t *rollTx) IncrementTotalPulls(ctx context.Context, userID string) (int, error) {
	var total int
	err := t.tx.QueryRow(ctx,
		`INSERT INTO pull_counts (user_id, total_pulls) VALUES ($1, 1)
		 ON CONFLICT (user_id) DO UPDATE SET total_pulls = pull_counts.total_pulls + 1, updated_at = NOW()
		 RETURNING total_pulls`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to increment total pulls: %w", err)
	}
	return total, nil
}

// GrantCharacter adds the character to the collection, or raises its
// constellation on a duplicate.
func (t *rollTx) GrantCharacter(ctx context.Context, userID, characterID string) (bool, int, error) {
	return grantCharacter(ctx, t.tx, userID, characterID)
}

// SaveRollResult stores the outcome for idempotency replay. Rolls without a
// client key have nothing to replay.
func (t *rollTx) SaveRollResult(ctx context.Context, userID, bannerID, idempotencyKey string, result *domain.RollResult) error {
	if idempotencyKey == "" {
		return nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal roll result: %w", err)
	}

	_, err = t.tx.Exec(ctx,
		`INSERT INTO roll_results (user_id, idempotency_key, banner_id, result, rolled_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, idempotencyKey, bannerID, raw, result.RolledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("failed to save roll result: %w", err)
	}
	return nil
}

// rowQuerier covers both the pool and an open transaction.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ensurePityRows inserts zero rows for any tier the user has never touched.
func ensurePityRows(ctx context.Context, tx pgx.Tx, userID string) error {
	for _, tier := range domain.PityTiers {
		_, err := tx.Exec(ctx,
			`INSERT INTO pity_counters (user_id, tier) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, string(tier),
		)
		if err != nil {
			return fmt.Errorf("failed to ensure pity row %s: %w", tier, err)
		}
	}
	return nil
}

func scanPityState(ctx context.Context, q rowQuerier, userID string, forUpdate bool) (*domain.PityState, error) {
	query := `SELECT tier, current FROM pity_counters WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE NOWAIT`
	}

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		if isLockConflict(err) {
			return nil, domain.ErrConcurrencyConflict
		}
		return nil, fmt.Errorf("failed to get pity state: %w", err)
	}
	defer rows.Close()

	state := &domain.PityState{
		UserID:   userID,
		Counters: make(map[domain.Rarity]int, len(domain.PityTiers)),
	}
	for _, tier := range domain.PityTiers {
		state.Counters[tier] = 0
	}
	for rows.Next() {
		var tier string
		var current int
		if err := rows.Scan(&tier, &current); err != nil {
			return nil, fmt.Errorf("failed to scan pity counter: %w", err)
		}
		state.Counters[domain.Rarity(tier)] = current
	}
	if err := rows.Err(); err != nil {
		if isLockConflict(err) {
			return nil, domain.ErrConcurrencyConflict
		}
		return nil, fmt.Errorf("failed to read pity counters: %w", err)
	}
	return state, nil
}

// grantCharacter is shared by the roll, selector and exchange paths. The
// xmax trick distinguishes a fresh insert from a constellation bump.
func grantCharacter(ctx context.Context, tx pgx.Tx, userID, characterID string) (bool, int, error) {
	var constellation int
	var isNew bool
	err := tx.QueryRow(ctx,
		`INSERT INTO owned_characters (user_id, character_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, character_id)
		 DO UPDATE SET constellation = owned_characters.constellation + 1
		 RETURNING constellation, (xmax = 0) AS is_new`,
		userID, characterID,
	).Scan(&constellation, &isNew)
	if err != nil {
		return false, 0, fmt.Errorf("failed to grant character: %w", err)
	}
	return isNew, constellation, nil
}
