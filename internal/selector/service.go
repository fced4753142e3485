package selector

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/lunarforge/gachad/internal/catalog"
	"github.com/lunarforge/gachad/internal/domain"
	"github.com/lunarforge/gachad/internal/event"
	"github.com/lunarforge/gachad/internal/logger"
	"github.com/lunarforge/gachad/internal/metrics"
	"github.com/lunarforge/gachad/internal/repository"
)

// Service defines the interface for selector ticket operations
type Service interface {
	List(ctx context.Context, userID string) ([]domain.Selector, error)
	ListEligible(ctx context.Context, userID string, rarity domain.Rarity) ([]domain.EligibleCharacter, error)
	Redeem(ctx context.Context, userID string, selectorID uuid.UUID, characterID string) (*domain.RedemptionResult, error)
	Shutdown(ctx context.Context) error
}

type service struct {
	repo     repository.Selector
	catalog  catalog.Service
	eventBus event.Bus
	wg       sync.WaitGroup
}

// NewService creates a new selector service.
func NewService(repo repository.Selector, cat catalog.Service, eventBus event.Bus) Service {
	return &service{
		repo:     repo,
		catalog:  cat,
		eventBus: eventBus,
	}
}

// List returns the user's unredeemed selector tickets.
func (s *service) List(ctx context.Context, userID string) ([]domain.Selector, error) {
	log := logger.FromContext(ctx)
	log.Debug(LogMsgListCalled, "user_id", userID)

	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}

	selectors, err := s.repo.ListSelectors(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToListSelectors, err)
	}
	return selectors, nil
}

// ListEligible returns the roster entries a selector of the given rarity can
// redeem into, annotated with current ownership.
func (s *service) ListEligible(ctx context.Context, userID string, rarity domain.Rarity) ([]domain.EligibleCharacter, error) {
	log := logger.FromContext(ctx)
	log.Debug(LogMsgListEligibleCalled, "user_id", userID, "rarity", rarity)

	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}
	if !rarity.Valid() || rarity == domain.RarityCommon {
		return nil, fmt.Errorf("%w: rarity %q", domain.ErrInvalidInput, rarity)
	}

	owned, err := s.repo.GetOwnedCharacters(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToListOwned, err)
	}
	ownedSet := make(map[string]bool, len(owned))
	for _, oc := range owned {
		ownedSet[oc.CharacterID] = true
	}

	pool := s.catalog.ListByRarity(rarity)
	eligible := make([]domain.EligibleCharacter, 0, len(pool))
	for _, c := range pool {
		eligible = append(eligible, domain.EligibleCharacter{
			ID:    c.ID,
			Name:  c.Name,
			Owned: ownedSet[c.ID],
		})
	}
	return eligible, nil
}

// Redeem consumes a selector ticket for the chosen character. The ticket
// delete and the grant commit together; a duplicate grant raises the
// character's constellation instead of failing.
func (s *service) Redeem(ctx context.Context, userID string, selectorID uuid.UUID, characterID string) (*domain.RedemptionResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgRedeemCalled, "user_id", userID, "selector_id", selectorID, "character_id", characterID)

	if userID == "" || characterID == "" {
		return nil, fmt.Errorf("%w: user and character ids required", domain.ErrInvalidInput)
	}

	character, err := s.catalog.Get(characterID)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginRedeemTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	sel, err := tx.GetSelectorForUpdate(ctx, userID, selectorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetSelector, err)
	}
	if sel == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSelectorNotFound, selectorID)
	}
	if sel.Rarity != character.Rarity {
		return nil, fmt.Errorf("%w: selector is %s, %s is %s", domain.ErrRarityMismatch, sel.Rarity, character.ID, character.Rarity)
	}

	if err := tx.DeleteSelector(ctx, selectorID); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToDelete, err)
	}

	isNew, constellation, err := tx.GrantCharacter(ctx, userID, character.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGrant, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	metrics.SelectorsRedeemed.WithLabelValues(string(sel.Rarity)).Inc()

	// Run async with detached context to prevent cancellation affecting publishes
	s.wg.Add(1)
	go s.publishRedeemEvent(context.Background(), userID, sel, character.ID)

	result := &domain.RedemptionResult{
		CharacterID:   character.ID,
		IsNew:         isNew,
		Constellation: constellation,
	}
	if isNew {
		result.Message = fmt.Sprintf(MsgFormatNewCharacter, character.Name)
	} else {
		result.Message = fmt.Sprintf(MsgFormatConstellation, character.Name, constellation)
	}

	log.Info(LogMsgRedeemCompleted, "user_id", userID, "character_id", character.ID, "is_new", isNew)
	return result, nil
}

func (s *service) publishRedeemEvent(ctx context.Context, userID string, sel *domain.Selector, characterID string) {
	defer s.wg.Done()

	if s.eventBus == nil {
		return
	}
	evt := event.NewSelectorRedeemedEvent(userID, sel.ID.String(), characterID, string(sel.Rarity))
	if err := s.eventBus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Error(LogMsgFailedToPublishEvent, "error", err, "type", event.SelectorRedeemed)
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
