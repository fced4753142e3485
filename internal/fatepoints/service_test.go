package fatepoints

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunarforge/gachad/internal/domain"
	"github.com/lunarforge/gachad/internal/event"
	"github.com/lunarforge/gachad/internal/gacha"
	"github.com/lunarforge/gachad/internal/repository"
)

type fakeLedger struct {
	mu        sync.Mutex
	points    map[string]*domain.FatePoints
	pity      map[string]map[domain.Rarity]int
	tickets   map[string]int
	selectors []*domain.Selector

	sweepRows int64
	grantErr  error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		points:  make(map[string]*domain.FatePoints),
		pity:    make(map[string]map[domain.Rarity]int),
		tickets: make(map[string]int),
	}
}

func (f *fakeLedger) GetFatePoints(_ context.Context, userID string) (*domain.FatePoints, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fp, ok := f.points[userID]; ok {
		cp := *fp
		return &cp, nil
	}
	return &domain.FatePoints{UserID: userID, WeekStart: domain.WeekStartUTC(time.Now())}, nil
}

func (f *fakeLedger) ResetStaleWeeks(_ context.Context, _ time.Time) (int64, error) {
	return f.sweepRows, nil
}

func (f *fakeLedger) BeginExchangeTx(_ context.Context) (repository.ExchangeTx, error) {
	return &fakeExchangeTx{f: f}, nil
}

type fakeExchangeTx struct {
	f     *fakeLedger
	done  bool
	apply []func()
}

func (t *fakeExchangeTx) Commit(_ context.Context) error {
	if t.done {
		return errors.New(domain.ErrMsgTxClosed)
	}
	t.done = true
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	for _, fn := range t.apply {
		fn()
	}
	return nil
}

func (t *fakeExchangeTx) Rollback(_ context.Context) error {
	if t.done {
		return errors.New(domain.ErrMsgTxClosed)
	}
	t.done = true
	t.apply = nil
	return nil
}

func (t *fakeExchangeTx) GetFatePointsForUpdate(ctx context.Context, userID string) (*domain.FatePoints, error) {
	return t.f.GetFatePoints(ctx, userID)
}

func (t *fakeExchangeTx) DebitPoints(_ context.Context, userID string, cost int) error {
	t.apply = append(t.apply, func() {
		if fp, ok := t.f.points[userID]; ok {
			fp.Points -= cost
		}
	})
	return nil
}

func (t *fakeExchangeTx) CreateSelector(_ context.Context, selector *domain.Selector) error {
	if t.f.grantErr != nil {
		return t.f.grantErr
	}
	t.apply = append(t.apply, func() { t.f.selectors = append(t.f.selectors, selector) })
	return nil
}

func (t *fakeExchangeTx) GetPityCounterForUpdate(_ context.Context, userID string, tier domain.Rarity) (int, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	return t.f.pity[userID][tier], nil
}

func (t *fakeExchangeTx) ReducePityCounter(_ context.Context, userID string, tier domain.Rarity, newValue int) error {
	t.apply = append(t.apply, func() {
		if t.f.pity[userID] == nil {
			t.f.pity[userID] = make(map[domain.Rarity]int)
		}
		t.f.pity[userID][tier] = newValue
	})
	return nil
}

func (t *fakeExchangeTx) CreditRollTickets(_ context.Context, userID string, count int) error {
	t.apply = append(t.apply, func() { t.f.tickets[userID] += count })
	return nil
}

func testOptions() []domain.ExchangeOption {
	return []domain.ExchangeOption{
		{ID: "opt_selector_epic", Name: "Epic Selector", Cost: 200, Kind: domain.GrantSelector, Rarity: domain.RarityEpic},
		{ID: "opt_pity_boost", Name: "Pity Boost", Cost: 300, Kind: domain.GrantPityReduction, Rarity: domain.RarityLegendary},
		{ID: "opt_tickets", Name: "Ticket Pack", Cost: 100, Kind: domain.GrantRollTickets, Tickets: 5},
	}
}

func testLedgerRates() gacha.RateTable {
	return gacha.RateTable{
		domain.RarityLegendary: {BaseRate: 0.006, HardPity: 90, SoftPity: 74, BoostPerPull: 0.06},
		domain.RarityEpic:      {BaseRate: 0.051, HardPity: 50, SoftPity: 40, BoostPerPull: 0.1},
		domain.RarityRare:      {BaseRate: 0.2, HardPity: 10, SoftPity: 8, BoostPerPull: 0.2},
	}
}

func newTestService(t *testing.T, ledger *fakeLedger) Service {
	t.Helper()
	svc, err := NewService(ledger, testLedgerRates(), testOptions(), event.NewMemoryBus())
	require.NoError(t, err)
	return svc
}

func TestValidateOptions(t *testing.T) {
	t.Run("rejects duplicate ids", func(t *testing.T) {
		opts := append(testOptions(), testOptions()[0])
		_, err := NewService(newFakeLedger(), testLedgerRates(), opts, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects selector without rarity", func(t *testing.T) {
		opts := []domain.ExchangeOption{{ID: "opt_bad", Cost: 10, Kind: domain.GrantSelector}}
		_, err := NewService(newFakeLedger(), testLedgerRates(), opts, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects ticket grant without count", func(t *testing.T) {
		opts := []domain.ExchangeOption{{ID: "opt_bad", Cost: 10, Kind: domain.GrantRollTickets}}
		_, err := NewService(newFakeLedger(), testLedgerRates(), opts, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		opts := []domain.ExchangeOption{{ID: "opt_bad", Cost: 10, Kind: "mystery_box"}}
		_, err := NewService(newFakeLedger(), testLedgerRates(), opts, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestGet(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(t, ledger)
	ctx := context.Background()

	t.Run("empty user id", func(t *testing.T) {
		_, err := svc.Get(ctx, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("stale week reads as zero", func(t *testing.T) {
		ledger.points["user_1"] = &domain.FatePoints{
			UserID:         "user_1",
			Points:         120,
			PointsThisWeek: 80,
			WeekStart:      domain.WeekStartUTC(time.Now()).AddDate(0, 0, -7),
		}

		fp, err := svc.Get(ctx, "user_1")
		require.NoError(t, err)
		assert.Equal(t, 120, fp.Points)
		assert.Equal(t, 0, fp.PointsThisWeek)
		assert.Equal(t, domain.WeekStartUTC(time.Now()), fp.WeekStart)
	})

	t.Run("current week passes through", func(t *testing.T) {
		ledger.points["user_2"] = &domain.FatePoints{
			UserID:         "user_2",
			Points:         40,
			PointsThisWeek: 40,
			WeekStart:      domain.WeekStartUTC(time.Now()),
		}

		fp, err := svc.Get(ctx, "user_2")
		require.NoError(t, err)
		assert.Equal(t, 40, fp.PointsThisWeek)
	})
}

func TestExchange(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown option", func(t *testing.T) {
		svc := newTestService(t, newFakeLedger())
		_, err := svc.Exchange(ctx, "user_1", "opt_ghost")
		assert.ErrorIs(t, err, domain.ErrExchangeNotFound)
	})

	t.Run("insufficient points", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.points["user_1"] = &domain.FatePoints{UserID: "user_1", Points: 50}
		svc := newTestService(t, ledger)

		_, err := svc.Exchange(ctx, "user_1", "opt_tickets")
		assert.ErrorIs(t, err, domain.ErrInsufficientPoints)
		assert.Equal(t, 50, ledger.points["user_1"].Points)
	})

	t.Run("selector grant", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.points["user_1"] = &domain.FatePoints{UserID: "user_1", Points: 250}
		svc := newTestService(t, ledger)

		result, err := svc.Exchange(ctx, "user_1", "opt_selector_epic")
		require.NoError(t, err)

		assert.Equal(t, 50, result.PointsRemaining)
		assert.Equal(t, 50, ledger.points["user_1"].Points)
		require.Len(t, ledger.selectors, 1)
		assert.Equal(t, domain.RarityEpic, ledger.selectors[0].Rarity)
		assert.Equal(t, "user_1", ledger.selectors[0].UserID)
	})

	t.Run("ticket grant formats the receipt", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.points["user_1"] = &domain.FatePoints{UserID: "user_1", Points: 2000}
		svc := newTestService(t, ledger)

		result, err := svc.Exchange(ctx, "user_1", "opt_tickets")
		require.NoError(t, err)

		assert.Equal(t, 5, ledger.tickets["user_1"])
		assert.Contains(t, result.Message, "Ticket Pack")
		assert.Contains(t, result.Message, "1,900")
	})

	t.Run("pity reduction advances to halfway", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.points["user_1"] = &domain.FatePoints{UserID: "user_1", Points: 500}
		ledger.pity["user_1"] = map[domain.Rarity]int{domain.RarityLegendary: 10}
		svc := newTestService(t, ledger)

		_, err := svc.Exchange(ctx, "user_1", "opt_pity_boost")
		require.NoError(t, err)
		assert.Equal(t, 45, ledger.pity["user_1"][domain.RarityLegendary])
	})

	t.Run("pity reduction past halfway is rejected", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.points["user_1"] = &domain.FatePoints{UserID: "user_1", Points: 500}
		ledger.pity["user_1"] = map[domain.Rarity]int{domain.RarityLegendary: 60}
		svc := newTestService(t, ledger)

		_, err := svc.Exchange(ctx, "user_1", "opt_pity_boost")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, 500, ledger.points["user_1"].Points, "debit must roll back")
		assert.Equal(t, 60, ledger.pity["user_1"][domain.RarityLegendary])
	})

	t.Run("failed grant rolls back the debit", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.points["user_1"] = &domain.FatePoints{UserID: "user_1", Points: 250}
		ledger.grantErr = errors.New("constraint violation")
		svc := newTestService(t, ledger)

		_, err := svc.Exchange(ctx, "user_1", "opt_selector_epic")
		require.Error(t, err)
		assert.Equal(t, 250, ledger.points["user_1"].Points)
		assert.Empty(t, ledger.selectors)
	})
}

func TestSweepStaleWeeks(t *testing.T) {
	ledger := newFakeLedger()
	ledger.sweepRows = 7
	svc := newTestService(t, ledger)

	affected, err := svc.SweepStaleWeeks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), affected)
}

func TestWeekStartUTC(t *testing.T) {
	t.Run("midweek", func(t *testing.T) {
		// Thursday 2026-08-27 15:30 UTC
		ts := time.Date(2026, 8, 27, 15, 30, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), domain.WeekStartUTC(ts))
	})

	t.Run("sunday belongs to the previous monday", func(t *testing.T) {
		ts := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), domain.WeekStartUTC(ts))
	})

	t.Run("monday midnight is its own boundary", func(t *testing.T) {
		ts := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, ts, domain.WeekStartUTC(ts))
	})
}
