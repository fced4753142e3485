package fatepoints

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lunarforge/gachad/internal/domain"
	"github.com/lunarforge/gachad/internal/event"
	"github.com/lunarforge/gachad/internal/gacha"
	"github.com/lunarforge/gachad/internal/logger"
	"github.com/lunarforge/gachad/internal/metrics"
	"github.com/lunarforge/gachad/internal/repository"
)

// Service defines the interface for fate-point ledger operations
type Service interface {
	Get(ctx context.Context, userID string) (*domain.FatePoints, error)
	Options() []domain.ExchangeOption
	Exchange(ctx context.Context, userID, optionID string) (*domain.ExchangeResult, error)
	SweepStaleWeeks(ctx context.Context) (int64, error)
	Shutdown(ctx context.Context) error
}

type service struct {
	repo     repository.FatePoints
	rates    gacha.RateTable
	options  []domain.ExchangeOption
	byID     map[string]domain.ExchangeOption
	eventBus event.Bus
	printer  *message.Printer
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewService creates a new fate-point ledger service.
func NewService(repo repository.FatePoints, rates gacha.RateTable, options []domain.ExchangeOption, eventBus event.Bus) (Service, error) {
	if err := validateOptions(options); err != nil {
		return nil, err
	}

	byID := make(map[string]domain.ExchangeOption, len(options))
	for _, opt := range options {
		byID[opt.ID] = opt
	}
	return &service{
		repo:     repo,
		rates:    rates,
		options:  options,
		byID:     byID,
		eventBus: eventBus,
		printer:  message.NewPrinter(language.English),
		now:      time.Now,
	}, nil
}

// Get returns the user's ledger. The weekly counter is normalized against
// the current Monday boundary, so a stale stored week reads as zero even
// before any write triggers the rollover.
func (s *service) Get(ctx context.Context, userID string) (*domain.FatePoints, error) {
	log := logger.FromContext(ctx)
	log.Debug(LogMsgGetPointsCalled, "user_id", userID)

	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}

	fp, err := s.repo.GetFatePoints(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetPoints, err)
	}

	weekStart := domain.WeekStartUTC(s.now())
	if fp.WeekStart.Before(weekStart) {
		fp.PointsThisWeek = 0
		fp.WeekStart = weekStart
	}
	return fp, nil
}

// Options lists the configured redemptions.
func (s *service) Options() []domain.ExchangeOption {
	out := make([]domain.ExchangeOption, len(s.options))
	copy(out, s.options)
	return out
}

// Exchange redeems one configured option. Debit and grant share a
// transaction; a failed grant refunds the debit by rolling back.
func (s *service) Exchange(ctx context.Context, userID, optionID string) (*domain.ExchangeResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgExchangeCalled, "user_id", userID, "option_id", optionID)

	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}
	opt, ok := s.byID[optionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrExchangeNotFound, optionID)
	}

	tx, err := s.repo.BeginExchangeTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	fp, err := tx.GetFatePointsForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetPoints, err)
	}
	if fp.Points < opt.Cost {
		return nil, fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientPoints, fp.Points, opt.Cost)
	}

	if err := tx.DebitPoints(ctx, userID, opt.Cost); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToDebitPoints, err)
	}

	if err := s.applyGrant(ctx, tx, userID, opt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	metrics.ExchangesRedeemed.WithLabelValues(opt.ID).Inc()

	// Run async with detached context to prevent cancellation affecting publishes
	s.wg.Add(1)
	go s.publishExchangeEvent(context.Background(), userID, opt)

	remaining := fp.Points - opt.Cost
	log.Info(LogMsgExchangeCompleted, "user_id", userID, "option_id", opt.ID, "remaining", remaining)
	return &domain.ExchangeResult{
		OptionID:        opt.ID,
		Success:         true,
		PointsRemaining: remaining,
		Message:         s.printer.Sprintf(MsgFormatRedeemed, opt.Name, opt.Cost, remaining),
	}, nil
}

// applyGrant dispatches the option's grant inside the open transaction.
func (s *service) applyGrant(ctx context.Context, tx repository.ExchangeTx, userID string, opt domain.ExchangeOption) error {
	switch opt.Kind {
	case domain.GrantSelector:
		selector := &domain.Selector{
			ID:       uuid.New(),
			UserID:   userID,
			Rarity:   opt.Rarity,
			Obtained: s.now().UTC(),
		}
		if err := tx.CreateSelector(ctx, selector); err != nil {
			return fmt.Errorf("%s: %w", ErrContextFailedToGrant, err)
		}

	case domain.GrantPityReduction:
		current, err := tx.GetPityCounterForUpdate(ctx, userID, opt.Rarity)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrContextFailedToGrant, err)
		}
		// The grant advances the counter to halfway to the guarantee.
		// Redeeming past that point would spend points for nothing.
		target := s.rates[opt.Rarity].HardPity / 2
		if current >= target {
			return fmt.Errorf("%w: %s pity already at %d of %d", domain.ErrInvalidInput, opt.Rarity, current, target)
		}
		if err := tx.ReducePityCounter(ctx, userID, opt.Rarity, target); err != nil {
			return fmt.Errorf("%s: %w", ErrContextFailedToGrant, err)
		}

	case domain.GrantRollTickets:
		if err := tx.CreditRollTickets(ctx, userID, opt.Tickets); err != nil {
			return fmt.Errorf("%s: %w", ErrContextFailedToGrant, err)
		}
	}
	return nil
}

// SweepStaleWeeks zeroes the weekly counters of every user whose stored week
// predates the current Monday boundary. The scheduler runs this shortly
// after the boundary; running it twice is harmless.
func (s *service) SweepStaleWeeks(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)
	weekStart := domain.WeekStartUTC(s.now())
	log.Info(LogMsgWeeklySweepStarted, "week_start", weekStart)

	affected, err := s.repo.ResetStaleWeeks(ctx, weekStart)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextFailedToSweep, err)
	}

	log.Info(LogMsgWeeklySweepCompleted, "rows", affected)
	return affected, nil
}

func (s *service) publishExchangeEvent(ctx context.Context, userID string, opt domain.ExchangeOption) {
	defer s.wg.Done()

	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event.NewExchangeRedeemedEvent(userID, opt.ID, opt.Cost)); err != nil {
		logger.FromContext(ctx).Error(LogMsgFailedToPublishEvent, "error", err, "type", event.ExchangeRedeemed)
	}
}

// Shutdown waits for async event publishes to finish.
func (s *service) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgShuttingDownService)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(LogMsgServiceShutdownDone)
		return nil
	case <-ctx.Done():
		log.Warn(LogMsgServiceShutdownForce)
		return ctx.Err()
	}
}
