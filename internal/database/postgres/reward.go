package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/repository"
)

// RewardRepository implements repository.Reward for PostgreSQL
type RewardRepository struct {
	pool *pgxpool.Pool
}

// NewRewardRepository creates a new RewardRepository
func NewRewardRepository(pool *pgxpool.Pool) repository.Reward {
	return &RewardRepository{pool: pool}
}

// GetUser retrieves a user with economy fields
func (r *RewardRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return getUser(ctx, r.pool, userID)
}

// RewardTx implements repository.RewardTx
type RewardTx struct {
	tx pgx.Tx
}

// BeginTx starts the post-creation transaction
func (r *RewardRepository) BeginTx(ctx context.Context) (repository.RewardTx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &RewardTx{tx: tx}, nil
}

// Commit commits the transaction
func (t *RewardTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *RewardTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

const sqlAdvanceLastReward = `
UPDATE users SET last_reward = $3, updated_at = NOW()
WHERE user_id = $1 AND last_reward = $2`

// AdvanceLastReward moves the cooldown gate only if nobody else has since
// the caller read it. Zero rows means a concurrent qualifying event won.
func (t *RewardTx) AdvanceLastReward(ctx context.Context, userID string, expected, now time.Time) (bool, error) {
	tag, err := t.tx.Exec(ctx, sqlAdvanceLastReward, userID, expected, now)
	if err != nil {
		return false, fmt.Errorf("failed to advance last reward: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetAvailableByRarity reads droppable definitions inside the transaction so
// availability is judged at mint time, not cache time
func (t *RewardTx) GetAvailableByRarity(ctx context.Context, rarity domain.Rarity) ([]domain.ItemDefinition, error) {
	return getAvailableByRarity(ctx, t.tx, rarity)
}

// MintDrop creates the reward instance inside the post transaction
func (t *RewardTx) MintDrop(ctx context.Context, itemID int, ownerID string, pattern int32) (*domain.Drop, error) {
	return insertDrop(ctx, t.tx, itemID, ownerID, pattern)
}

const sqlInsertPost = `
INSERT INTO posts (thread_id, author_id, body, post_date, reward_drop_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING post_id`

// InsertPost writes the post row with its reward slot fixed forever
func (t *RewardTx) InsertPost(ctx context.Context, post *domain.Post) error {
	var threadID any
	if post.ThreadID != "" {
		threadID = post.ThreadID
	}
	err := t.tx.QueryRow(ctx, sqlInsertPost,
		threadID, post.AuthorID, post.Body, post.PostDate, post.RewardDropID).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}
