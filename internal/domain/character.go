package domain

// Character is a roster entry from the catalog collaborator.
type Character struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rarity Rarity `json:"rarity"`
}

// OwnedCharacter is a character in a user's collection. Constellation counts
// duplicate acquisitions beyond the first.
type OwnedCharacter struct {
	CharacterID   string `json:"characterId"`
	Constellation int    `json:"constellation"`
}

// EligibleCharacter is a roster entry annotated with ownership, as returned
// by the selector list endpoint.
type EligibleCharacter struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owned bool   `json:"owned"`
}
