package domain

import "time"

// Drop is a minted, owned instance of an item definition.
// The item reference and pattern are fixed at mint time; consumed only ever
// flips false to true; the owner changes through ledger transfers alone.
type Drop struct {
	ID        string    `json:"drop_id" db:"drop_id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ItemID    int       `json:"item_id" db:"item_id"`
	Pattern   int32     `json:"pattern" db:"pattern"`
	Consumed  bool      `json:"consumed" db:"consumed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
