package repository

import (
	"context"
	"time"

	"github.com/mossdale/dropforge/internal/domain"
)

// Reward backs the drop selector: post insertion, cooldown advancement and
// minting commit as one unit, so a post never references a reward that was
// rolled back.
type Reward interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	BeginTx(ctx context.Context) (RewardTx, error)
}

// RewardTx is the transaction for a single qualifying post-creation event.
type RewardTx interface {
	Tx
	// AdvanceLastReward conditionally moves the cooldown timestamp from
	// expected to now. Zero rows affected means another event won the
	// race; the caller skips the drop and keeps the post.
	AdvanceLastReward(ctx context.Context, userID string, expected, now time.Time) (bool, error)
	GetAvailableByRarity(ctx context.Context, rarity domain.Rarity) ([]domain.ItemDefinition, error)
	MintDrop(ctx context.Context, itemID int, ownerID string, pattern int32) (*domain.Drop, error)
	InsertPost(ctx context.Context, post *domain.Post) error
}
