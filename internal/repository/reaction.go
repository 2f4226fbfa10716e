package repository

import (
	"context"

	"github.com/mossdale/dropforge/internal/domain"
)

// Reaction backs one-shot reaction consumption and the experience ledger.
type Reaction interface {
	GetDrop(ctx context.Context, dropID string) (*domain.Drop, error)
	GetItem(ctx context.Context, itemID int) (*domain.ItemDefinition, error)
	GetPost(ctx context.Context, postID string) (*domain.Post, error)
	BeginTx(ctx context.Context) (ReactionTx, error)
}

// ReactionTx applies a single reaction: consume, append, adjust - all or
// nothing.
type ReactionTx interface {
	Tx
	MarkConsumed(ctx context.Context, dropID, ownerID string) error
	AppendPostReaction(ctx context.Context, postID, dropID string) error
	// AdjustExperience adds delta to the user's experience, clamped at a
	// floor of zero, and returns the committed value.
	AdjustExperience(ctx context.Context, userID string, delta int64) (int64, error)
}
