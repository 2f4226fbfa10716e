package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mossdale/dropforge/internal/metrics"
)

// EventSchemaVersion is the current payload schema version
const EventSchemaVersion = "1.0"

// Type represents the type of an event
type Type string

// Committed economy event types. Publishers emit these only after the owning
// transaction commits; delivery is at-least-once and payloads carry the final
// committed values.
const (
	RewardDropped   Type = "economy.reward_dropped"
	ReactionApplied Type = "economy.reaction_applied"
	TradeResolved   Type = "economy.trade_resolved"
)

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// RewardDroppedPayloadV1 is the typed payload for committed reward mints
type RewardDroppedPayloadV1 struct {
	PostID    string `json:"post_id"`
	OwnerID   string `json:"owner_id"`
	DropID    string `json:"drop_id"`
	ItemID    int    `json:"item_id"`
	ItemName  string `json:"item_name,omitempty"`
	Rarity    string `json:"rarity"`
	Pattern   int32  `json:"pattern"`
	Timestamp int64  `json:"timestamp"`
}

// ReactionAppliedPayloadV1 is the typed payload for committed reactions
type ReactionAppliedPayloadV1 struct {
	PostID           string `json:"post_id"`
	DropID           string `json:"drop_id"`
	ActorID          string `json:"actor_id"`
	AuthorID         string `json:"author_id"`
	ExperienceDelta  int64  `json:"experience_delta"`
	AuthorExperience int64  `json:"author_experience"`
	Timestamp        int64  `json:"timestamp"`
}

// TradeResolvedPayloadV1 is the typed payload for terminal trade offers
type TradeResolvedPayloadV1 struct {
	OfferID    string `json:"offer_id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Status     string `json:"status"`
	ItemsMoved int    `json:"items_moved"`
	Timestamp  int64  `json:"timestamp"`
}

// NewRewardDroppedEvent creates a committed-reward event
func NewRewardDroppedEvent(postID, ownerID, dropID string, itemID int, itemName, rarity string, pattern int32) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    RewardDropped,
		Payload: RewardDroppedPayloadV1{
			PostID:    postID,
			OwnerID:   ownerID,
			DropID:    dropID,
			ItemID:    itemID,
			ItemName:  itemName,
			Rarity:    rarity,
			Pattern:   pattern,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewReactionAppliedEvent creates a committed-reaction event
func NewReactionAppliedEvent(postID, dropID, actorID, authorID string, delta, authorExperience int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ReactionApplied,
		Payload: ReactionAppliedPayloadV1{
			PostID:           postID,
			DropID:           dropID,
			ActorID:          actorID,
			AuthorID:         authorID,
			ExperienceDelta:  delta,
			AuthorExperience: authorExperience,
			Timestamp:        time.Now().Unix(),
		},
	}
}

// NewTradeResolvedEvent creates a terminal trade event
func NewTradeResolvedEvent(offerID, senderID, receiverID, status string, itemsMoved int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    TradeResolved,
		Payload: TradeResolvedPayloadV1{
			OfferID:    offerID,
			SenderID:   senderID,
			ReceiverID: receiverID,
			Status:     status,
			ItemsMoved: itemsMoved,
			Timestamp:  time.Now().Unix(),
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

// Publish publishes an event to all subscribers. Handlers run synchronously;
// a failing handler never un-commits the transaction that produced the event,
// so errors are collected and reported to the publisher for logging.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d handler(s) failed for %s: %v", len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
