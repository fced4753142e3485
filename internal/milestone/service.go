package milestone

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lunarforge/gachad/internal/domain"
	"github.com/lunarforge/gachad/internal/event"
	"github.com/lunarforge/gachad/internal/logger"
	"github.com/lunarforge/gachad/internal/metrics"
	"github.com/lunarforge/gachad/internal/repository"
)

// Service defines the interface for lifetime-pull milestone operations.
// The counter itself advances inside the roll transaction; this service
// only reads progress and settles claims.
type Service interface {
	GetProgress(ctx context.Context, userID string) (*domain.MilestoneProgress, error)
	Claim(ctx context.Context, userID string, threshold int) (*domain.MilestoneReward, error)
	Shutdown(ctx context.Context) error
}

type service struct {
	repo     repository.Milestone
	tiers    []Tier
	byThresh map[int]Tier
	eventBus event.Bus
	wg       sync.WaitGroup
}

// NewService creates a new milestone service.
func NewService(repo repository.Milestone, tiers []Tier, eventBus event.Bus) (Service, error) {
	if err := validateTiers(tiers); err != nil {
		return nil, err
	}

	sorted := sortTiers(tiers)
	byThresh := make(map[int]Tier, len(sorted))
	for _, tier := range sorted {
		byThresh[tier.Threshold] = tier
	}
	return &service{
		repo:     repo,
		tiers:    sorted,
		byThresh: byThresh,
		eventBus: eventBus,
	}, nil
}

// GetProgress returns the lifetime pull count with per-threshold state.
func (s *service) GetProgress(ctx context.Context, userID string) (*domain.MilestoneProgress, error) {
	log := logger.FromContext(ctx)
	log.Debug(LogMsgGetProgressCalled, "user_id", userID)

	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}

	total, err := s.repo.GetTotalPulls(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetPulls, err)
	}
	claimed, err := s.repo.GetClaimedThresholds(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetClaims, err)
	}
	claimedSet := make(map[int]bool, len(claimed))
	for _, threshold := range claimed {
		claimedSet[threshold] = true
	}

	progress := &domain.MilestoneProgress{
		UserID:     userID,
		TotalPulls: total,
		Rewards:    make([]domain.MilestoneReward, 0, len(s.tiers)),
	}
	for _, tier := range s.tiers {
		reached := total >= tier.Threshold
		progress.Rewards = append(progress.Rewards, domain.MilestoneReward{
			Threshold: tier.Threshold,
			Reached:   reached,
			Claimed:   claimedSet[tier.Threshold],
			Reward:    tier.Reward,
		})
		if !reached && progress.NextThreshold == 0 {
			progress.NextThreshold = tier.Threshold
		}
	}
	return progress, nil
}

// Claim settles one reached milestone. The claim mark and the reward grant
// commit together; a duplicate claim surfaces ErrAlreadyClaimed from the
// unique constraint, which also settles concurrent claim races.
func (s *service) Claim(ctx context.Context, userID string, threshold int) (*domain.MilestoneReward, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgClaimCalled, "user_id", userID, "threshold", threshold)

	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}
	tier, ok := s.byThresh[threshold]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrNoSuchMilestone, threshold)
	}

	tx, err := s.repo.BeginClaimTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	total, err := tx.GetTotalPullsForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetPulls, err)
	}
	if total < tier.Threshold {
		return nil, fmt.Errorf("%w: %d of %d pulls", domain.ErrNotReached, total, tier.Threshold)
	}

	if err := tx.MarkClaimed(ctx, userID, tier.Threshold); err != nil {
		if errors.Is(err, domain.ErrAlreadyClaimed) {
			return nil, domain.ErrAlreadyClaimed
		}
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToMarkClaimed, err)
	}

	if err := s.grantReward(ctx, tx, userID, tier.Reward); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	metrics.MilestonesClaimed.Inc()

	// Run async with detached context to prevent cancellation affecting publishes
	s.wg.Add(1)
	go s.publishClaimEvent(context.Background(), userID, tier)

	log.Info(LogMsgClaimCompleted, "user_id", userID, "threshold", tier.Threshold)
	return &domain.MilestoneReward{
		Threshold: tier.Threshold,
		Reached:   true,
		Claimed:   true,
		Reward:    tier.Reward,
	}, nil
}

func (s *service) grantReward(ctx context.Context, tx repository.ClaimTx, userID string, reward domain.RewardPayload) error {
	switch reward.Kind {
	case domain.GrantSelector:
		selector := &domain.Selector{
			ID:       uuid.New(),
			UserID:   userID,
			Rarity:   reward.Rarity,
			Obtained: time.Now().UTC(),
		}
		if err := tx.CreateSelector(ctx, selector); err != nil {
			return fmt.Errorf("%s: %w", ErrContextFailedToGrantReward, err)
		}
	case domain.GrantRollTickets:
		if err := tx.CreditRollTickets(ctx, userID, reward.Tickets); err != nil {
			return fmt.Errorf("%s: %w", ErrContextFailedToGrantReward, err)
		}
	case domain.GrantFatePoints:
		if err := tx.CreditPoints(ctx, userID, reward.Points); err != nil {
			return fmt.Errorf("%s: %w", ErrContextFailedToGrantReward, err)
		}
	}
	return nil
}

func (s *service) publishClaimEvent(ctx context.Context, userID string, tier Tier) {
	defer s.wg.Done()

	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event.NewMilestoneClaimedEvent(userID, tier.Threshold, tier.Reward)); err != nil {
		logger.FromContext(ctx).Error(LogMsgFailedToPublishEvent, "error", err, "type", event.MilestoneClaimed)
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
