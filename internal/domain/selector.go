package domain

import (
	"time"

	"github.com/google/uuid"
)

// Selector is a ticket redeemable for one specific character of its rarity.
// Redemption consumes the ticket in the same transaction as the grant.
type Selector struct {
	ID       uuid.UUID `json:"id"`
	UserID   string    `json:"userId"`
	Rarity   Rarity    `json:"rarity"`
	Obtained time.Time `json:"obtained"`
}

// RedemptionResult reports the outcome of consuming a selector.
// IsNew is true when the character was granted fresh; false means the user
// already owned it and a constellation level was added instead.
type RedemptionResult struct {
	CharacterID   string `json:"characterId"`
	IsNew         bool   `json:"isNew"`
	Constellation int    `json:"constellation"`
	Message       string `json:"message"`
}
