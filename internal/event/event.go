package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lunarforge/gachad/internal/domain"
)

// Type represents the type of an event
type Type string

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// Event types published by the gacha services
const (
	RollCompleted    Type = Type(domain.EventRollCompleted)
	LegendaryPulled  Type = Type(domain.EventLegendaryPulled)
	HardPityHit      Type = Type(domain.EventHardPityHit)
	MilestoneClaimed Type = Type(domain.EventMilestoneClaimed)
	ExchangeRedeemed Type = Type(domain.EventExchangeRedeemed)
	SelectorRedeemed Type = Type(domain.EventSelectorRedeemed)
)

// LegendaryPulledPayloadV1 is the typed payload for legendary pull events
type LegendaryPulledPayloadV1 struct {
	UserID      string `json:"user_id"`
	BannerID    string `json:"banner_id"`
	CharacterID string `json:"character_id"`
	Featured    bool   `json:"featured"`
	HardPity    bool   `json:"hard_pity"`
	Timestamp   int64  `json:"timestamp"`
}

// NewRollCompletedEvent creates a roll completed event
func NewRollCompletedEvent(userID, bannerID string, result domain.RollResult) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    RollCompleted,
		Payload: domain.RollCompletedPayload{
			UserID:   userID,
			BannerID: bannerID,
			Result:   result,
		},
	}
}

// NewLegendaryPulledEvent creates a legendary pulled event
func NewLegendaryPulledEvent(userID, bannerID, characterID string, featured, hardPity bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LegendaryPulled,
		Payload: LegendaryPulledPayloadV1{
			UserID:      userID,
			BannerID:    bannerID,
			CharacterID: characterID,
			Featured:    featured,
			HardPity:    hardPity,
			Timestamp:   time.Now().Unix(),
		},
	}
}

// ExchangeRedeemedPayloadV1 is the typed payload for exchange redemption events
type ExchangeRedeemedPayloadV1 struct {
	UserID    string `json:"user_id"`
	OptionID  string `json:"option_id"`
	Cost      int    `json:"cost"`
	Timestamp int64  `json:"timestamp"`
}

// NewExchangeRedeemedEvent creates an exchange redeemed event
func NewExchangeRedeemedEvent(userID, optionID string, cost int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ExchangeRedeemed,
		Payload: ExchangeRedeemedPayloadV1{
			UserID:    userID,
			OptionID:  optionID,
			Cost:      cost,
			Timestamp: time.Now().Unix(),
		},
	}
}

// SelectorRedeemedPayloadV1 is the typed payload for selector redemption events
type SelectorRedeemedPayloadV1 struct {
	UserID      string `json:"user_id"`
	SelectorID  string `json:"selector_id"`
	CharacterID string `json:"character_id"`
	Rarity      string `json:"rarity"`
	Timestamp   int64  `json:"timestamp"`
}

// NewSelectorRedeemedEvent creates a selector redeemed event
func NewSelectorRedeemedEvent(userID, selectorID, characterID, rarity string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    SelectorRedeemed,
		Payload: SelectorRedeemedPayloadV1{
			UserID:      userID,
			SelectorID:  selectorID,
			CharacterID: characterID,
			Rarity:      rarity,
			Timestamp:   time.Now().Unix(),
		},
	}
}

// NewMilestoneClaimedEvent creates a milestone claimed event
func NewMilestoneClaimedEvent(userID string, threshold int, reward domain.RewardPayload) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    MilestoneClaimed,
		Payload: domain.MilestoneClaimedPayload{
			UserID:    userID,
			Threshold: threshold,
			Reward:    reward,
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	// Handlers execute synchronously; a worker pool can slot in here later
	// without changing the Bus interface.
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
