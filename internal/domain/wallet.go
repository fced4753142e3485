package domain

// Wallet holds the roll-ticket balance debited by the billing collaborator
// when a paid roll executes. Tickets come from exchanges and milestone
// rewards; the wallet can never go negative.
type Wallet struct {
	UserID      string `json:"userId"`
	RollTickets int    `json:"rollTickets"`
}
