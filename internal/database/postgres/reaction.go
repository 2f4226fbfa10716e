package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/repository"
)

// ReactionRepository implements repository.Reaction for PostgreSQL
type ReactionRepository struct {
	pool *pgxpool.Pool
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(pool *pgxpool.Pool) repository.Reaction {
	return &ReactionRepository{pool: pool}
}

// GetDrop retrieves a drop by ID
func (r *ReactionRepository) GetDrop(ctx context.Context, dropID string) (*domain.Drop, error) {
	return getDrop(ctx, r.pool, dropID)
}

// GetItem retrieves an item definition by ID
func (r *ReactionRepository) GetItem(ctx context.Context, itemID int) (*domain.ItemDefinition, error) {
	return getItem(ctx, r.pool, itemID)
}

const sqlSelectPost = `
SELECT post_id, COALESCE(thread_id::text, ''), author_id, body, post_date, reward_drop_id
FROM posts WHERE post_id = $1`

const sqlSelectPostReactions = `
SELECT drop_id FROM post_reactions WHERE post_id = $1 ORDER BY applied_at, drop_id`

// GetPost retrieves a post with its reaction list
func (r *ReactionRepository) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	var p domain.Post
	err := r.pool.QueryRow(ctx, sqlSelectPost, postID).
		Scan(&p.ID, &p.ThreadID, &p.AuthorID, &p.Body, &p.PostDate, &p.RewardDropID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	rows, err := r.pool.Query(ctx, sqlSelectPostReactions, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query post reactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dropID string
		if err := rows.Scan(&dropID); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		p.Reactions = append(p.Reactions, dropID)
	}
	return &p, rows.Err()
}

// ReactionTx implements repository.ReactionTx
type ReactionTx struct {
	tx pgx.Tx
}

// BeginTx starts a reaction-application transaction
func (r *ReactionRepository) BeginTx(ctx context.Context) (repository.ReactionTx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &ReactionTx{tx: tx}, nil
}

// Commit commits the transaction
func (t *ReactionTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *ReactionTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// MarkConsumed conditionally flips the consumed flag
func (t *ReactionTx) MarkConsumed(ctx context.Context, dropID, ownerID string) error {
	return markConsumed(ctx, t.tx, dropID, ownerID)
}

const sqlInsertPostReaction = `
INSERT INTO post_reactions (post_id, drop_id) VALUES ($1, $2)`

// AppendPostReaction adds a consumed reaction drop to the post's list
func (t *ReactionTx) AppendPostReaction(ctx context.Context, postID, dropID string) error {
	if _, err := t.tx.Exec(ctx, sqlInsertPostReaction, postID, dropID); err != nil {
		return fmt.Errorf("failed to append post reaction: %w", err)
	}
	return nil
}

const sqlAdjustExperience = `
UPDATE users SET experience = GREATEST(0, experience + $2), updated_at = NOW()
WHERE user_id = $1
RETURNING experience`

// AdjustExperience applies the signed delta with a floor of zero
func (t *ReactionTx) AdjustExperience(ctx context.Context, userID string, delta int64) (int64, error) {
	var experience int64
	err := t.tx.QueryRow(ctx, sqlAdjustExperience, userID, delta).Scan(&experience)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
		}
		return 0, fmt.Errorf("failed to adjust experience: %w", err)
	}
	return experience, nil
}
