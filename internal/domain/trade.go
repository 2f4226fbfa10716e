package domain

import "time"

// TradeStatus is the trade offer lifecycle. Proposed is the only live state;
// the other three are terminal and final.
type TradeStatus string

const (
	TradeProposed  TradeStatus = "proposed"
	TradeAccepted  TradeStatus = "accepted"
	TradeDeclined  TradeStatus = "declined"
	TradeRescinded TradeStatus = "rescinded"
)

// Terminal reports whether the status permits no further transitions.
func (s TradeStatus) Terminal() bool {
	return s == TradeAccepted || s == TradeDeclined || s == TradeRescinded
}

// TradeOffer is a proposed bidirectional exchange of owned drops. The item
// sets are fixed at proposal time; acceptance re-validates ownership before
// any transfer happens.
type TradeOffer struct {
	ID            string      `json:"offer_id"`
	SenderID      string      `json:"sender_id"`
	ReceiverID    string      `json:"receiver_id"`
	SenderItems   []string    `json:"sender_items"`
	ReceiverItems []string    `json:"receiver_items"`
	Note          string      `json:"note,omitempty"`
	Status        TradeStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
