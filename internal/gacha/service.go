package gacha

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lunarforge/gachad/internal/catalog"
	"github.com/lunarforge/gachad/internal/domain"
	"github.com/lunarforge/gachad/internal/event"
	"github.com/lunarforge/gachad/internal/logger"
	"github.com/lunarforge/gachad/internal/metrics"
	"github.com/lunarforge/gachad/internal/repository"
)

// Service defines the interface for roll operations
type Service interface {
	Roll(ctx context.Context, userID, bannerID, idempotencyKey string) (*domain.RollResult, error)
	GetPity(ctx context.Context, userID, bannerID string) (*PityView, error)
	Config() *Config
	Shutdown(ctx context.Context) error
}

type service struct {
	repo     repository.Gacha
	catalog  catalog.Service
	eventBus event.Bus
	cfg      *Config
	rng      RandomSource
	cache    *pityCache
	wg       sync.WaitGroup // Tracks async goroutines for graceful shutdown
}

// NewService creates a new roll service. A nil rng selects the production
// crypto source; tests pass a seeded one.
func NewService(repo repository.Gacha, cat catalog.Service, eventBus event.Bus, cfg *Config, rng RandomSource) Service {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &service{
		repo:     repo,
		catalog:  cat,
		eventBus: eventBus,
		cfg:      cfg,
		rng:      rng,
		cache:    newPityCache(PityCacheSize, 30*time.Second),
	}
}

// Config exposes the loaded gacha configuration to handlers and exchanges.
func (s *service) Config() *Config {
	return s.cfg
}

// Roll executes one paid roll for the user on the banner. The billing debit,
// pity mutation, fate-point credit and milestone increment share one
// transaction; a partial outcome can never be observed.
func (s *service) Roll(ctx context.Context, userID, bannerID, idempotencyKey string) (*domain.RollResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgRollCalled, "user_id", userID, "banner_id", bannerID)

	if userID == "" || bannerID == "" {
		return nil, fmt.Errorf("%w: user and banner ids required", domain.ErrInvalidInput)
	}

	banner := s.cfg.FindBanner(bannerID)
	if banner == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBannerNotFound, bannerID)
	}
	if !banner.Active {
		return nil, fmt.Errorf("%w: %s", domain.ErrBannerInactive, bannerID)
	}

	// An aborted request must not charge the user twice: replays keyed on
	// the client-supplied idempotency key return the stored outcome.
	if idempotencyKey != "" {
		prior, err := s.repo.GetRollByIdempotencyKey(ctx, userID, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToCheckReplay, err)
		}
		if prior != nil {
			log.Info(LogMsgIdempotentReplay, "user_id", userID)
			return prior, nil
		}
	}

	var result *domain.RollResult
	var err error
	for attempt := 1; attempt <= RollTxMaxAttempts; attempt++ {
		result, err = s.executeRollTx(ctx, userID, banner, idempotencyKey)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			break
		}
		metrics.RollTxRetries.Inc()
		log.Warn(LogMsgRollRetried, "user_id", userID, "attempt", attempt)
	}
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(userID)
	s.recordRollMetrics(bannerID, result)

	// Run async with detached context to prevent cancellation affecting publishes
	s.wg.Add(1)
	go s.publishRollEvents(context.Background(), userID, bannerID, *result)

	log.Info(LogMsgRollCompleted, "user_id", userID, "rarity", result.Rarity, "pity_consumed", result.PityConsumed)
	return result, nil
}

// executeRollTx runs the full roll inside one transaction.
func (s *service) executeRollTx(ctx context.Context, userID string, banner *Banner, idempotencyKey string) (*domain.RollResult, error) {
	tx, err := s.repo.BeginRollTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.DebitRollTickets(ctx, userID, 1); err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return nil, domain.ErrInsufficientFunds
		}
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToDebitTickets, err)
	}

	state, err := tx.GetPityStateForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetPity, err)
	}

	outcome := SampleRarity(state.Counters, s.cfg.Rates, s.rng)
	changes, resetMessage := annotateChanges(outcome.Changes)
	result := &domain.RollResult{
		Rarity:          outcome.Rarity,
		PityConsumed:    outcome.PityConsumed,
		CascadingResets: changes,
		ResetMessage:    resetMessage,
		RolledAt:        time.Now().UTC(),
	}
	if outcome.PityConsumed {
		logger.FromContext(ctx).Info(LogMsgHardPityForced, "user_id", userID, "tier", outcome.Rarity)
	}

	character, err := s.resolveCharacter(ctx, tx, userID, banner, outcome.Rarity, result)
	if err != nil {
		return nil, err
	}
	result.Character = character

	if character != nil {
		if _, _, err := tx.GrantCharacter(ctx, userID, character.ID); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToGrant, err)
		}
	}

	state.Counters = outcome.NewCounters
	if err := tx.UpdatePityState(ctx, state); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdatePity, err)
	}

	fp, err := tx.CreditFatePoints(ctx, userID, s.cfg.FatePointsPerRoll, s.cfg.WeeklyPointsMax)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCreditPoints, err)
	}
	result.FatePoints = fp.Points

	total, err := tx.IncrementTotalPulls(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCountPull, err)
	}
	result.TotalPulls = total

	if err := tx.SaveRollResult(ctx, userID, banner.ID, idempotencyKey, result); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSaveRoll, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}
	return result, nil
}

// resolveCharacter attaches a character to the rarity outcome. Legendary
// results run the banner 50/50 against the locked banner state; epic and
// rare pick from the shared pool; common yields no character.
func (s *service) resolveCharacter(ctx context.Context, tx repository.RollTx, userID string, banner *Banner, rarity domain.Rarity, result *domain.RollResult) (*domain.Character, error) {
	switch rarity {
	case domain.RarityLegendary:
		bstate, err := tx.GetBannerStateForUpdate(ctx, userID, banner.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetBanner, err)
		}

		decision := DecideFeatured(bstate.GuaranteedFeatured, s.cfg.FeaturedChance, s.rng)
		result.FeaturedWon = decision.Featured
		result.GuaranteeUsed = decision.GuaranteeUsed

		bstate.GuaranteedFeatured = decision.GuaranteedNext
		if err := tx.UpdateBannerState(ctx, bstate); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateBanner, err)
		}

		var character *domain.Character
		if decision.Featured {
			character, err = s.catalog.PickFrom(banner.Featured, domain.RarityLegendary)
		} else {
			character, err = s.catalog.PickByRarity(domain.RarityLegendary, banner.Featured)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToPickCharacter, err)
		}
		return character, nil

	case domain.RarityEpic, domain.RarityRare:
		character, err := s.catalog.PickByRarity(rarity, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToPickCharacter, err)
		}
		return character, nil

	default:
		// Common drops are filler items, not roster characters.
		return nil, nil
	}
}

// GetPity returns the derived pity read-model for the display components.
func (s *service) GetPity(ctx context.Context, userID, bannerID string) (*PityView, error) {
	log := logger.FromContext(ctx)
	log.Debug(LogMsgGetPityCalled, "user_id", userID, "banner_id", bannerID)

	if userID == "" || bannerID == "" {
		return nil, fmt.Errorf("%w: user and banner ids required", domain.ErrInvalidInput)
	}
	if s.cfg.FindBanner(bannerID) == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBannerNotFound, bannerID)
	}

	if view, ok := s.cache.Get(userID, bannerID); ok {
		return view, nil
	}

	state, err := s.repo.GetPityState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetPity, err)
	}
	bstate, err := s.repo.GetBannerState(ctx, userID, bannerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetBanner, err)
	}

	view := buildPityView(state, bstate, s.cfg.Rates)
	s.cache.Set(userID, bannerID, view)
	return view, nil
}

func (s *service) recordRollMetrics(bannerID string, result *domain.RollResult) {
	metrics.RollsTotal.WithLabelValues(bannerID, string(result.Rarity)).Inc()
	if result.PityConsumed {
		metrics.HardPityHits.WithLabelValues(string(result.Rarity)).Inc()
	}
	if result.FeaturedWon {
		metrics.FeaturedWins.WithLabelValues(bannerID).Inc()
	}
	if result.GuaranteeUsed {
		metrics.GuaranteesConsumed.WithLabelValues(bannerID).Inc()
	}
	metrics.FatePointsCredited.Add(float64(s.cfg.FatePointsPerRoll))
}

// publishRollEvents publishes the roll outcome on the bus.
func (s *service) publishRollEvents(ctx context.Context, userID, bannerID string, result domain.RollResult) {
	defer s.wg.Done()

	if s.eventBus == nil {
		return
	}

	if err := s.eventBus.Publish(ctx, event.NewRollCompletedEvent(userID, bannerID, result)); err != nil {
		logger.FromContext(ctx).Error(LogMsgFailedToPublishEvent, "error", err, "type", event.RollCompleted)
	}

	if result.Rarity == domain.RarityLegendary && result.Character != nil {
		evt := event.NewLegendaryPulledEvent(userID, bannerID, result.Character.ID, result.FeaturedWon, result.PityConsumed)
		if err := s.eventBus.Publish(ctx, evt); err != nil {
			logger.FromContext(ctx).Error(LogMsgFailedToPublishEvent, "error", err, "type", event.LegendaryPulled)
		}
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
