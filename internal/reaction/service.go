package reaction

import (
	"context"
	"fmt"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/event"
	"github.com/mossdale/dropforge/internal/logger"
	"github.com/mossdale/dropforge/internal/metrics"
	"github.com/mossdale/dropforge/internal/repository"
)

// Result reports a committed reaction application.
type Result struct {
	PostID           string `json:"post_id"`
	DropID           string `json:"drop_id"`
	ExperienceDelta  int64  `json:"experience_delta"`
	AuthorExperience int64  `json:"author_experience"`
	AuthorLevel      int    `json:"author_level"`
}

// Service consumes reaction drops against posts and keeps the experience
// ledger. A reaction drop is one-shot: consuming it, appending it to the
// post and moving the author's experience commit as a single transaction.
type Service interface {
	Apply(ctx context.Context, actorID, dropID, postID string) (*Result, error)
	AuthorLevel(ctx context.Context, user *domain.User) int
}

type service struct {
	repo repository.Reaction
	bus  event.Bus
}

// NewService creates a new reaction service
func NewService(repo repository.Reaction, bus event.Bus) Service {
	return &service{repo: repo, bus: bus}
}

// Apply consumes the actor's reaction drop against the post. The actor must
// own the drop, the drop must be a reaction kind and still unconsumed, and
// the post must belong to someone else. The experience adjustment clamps at
// zero; the floor never turns a reaction into a no-op on the consumption side.
func (s *service) Apply(ctx context.Context, actorID, dropID, postID string) (*Result, error) {
	log := logger.FromContext(ctx)
	log.Info("Apply called", "actor_id", actorID, "drop_id", dropID, "post_id", postID)

	drop, err := s.repo.GetDrop(ctx, dropID)
	if err != nil {
		return nil, err
	}
	if drop.OwnerID != actorID {
		return nil, fmt.Errorf("%w: drop %s", domain.ErrNotOwner, dropID)
	}
	if drop.Consumed {
		return nil, fmt.Errorf("%w: drop %s", domain.ErrAlreadyConsumed, dropID)
	}

	def, err := s.repo.GetItem(ctx, drop.ItemID)
	if err != nil {
		return nil, err
	}
	if def.Kind.Name != domain.KindReaction || def.Kind.Reaction == nil {
		return nil, fmt.Errorf("%w: item %q is not a reaction", domain.ErrKindMismatch, def.Name)
	}

	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID == actorID {
		return nil, domain.ErrSelfReaction
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	// The conditional consume is the serialization point: two racing
	// applications of the same drop resolve to one winner here.
	if err := tx.MarkConsumed(ctx, dropID, actorID); err != nil {
		return nil, err
	}
	if err := tx.AppendPostReaction(ctx, postID, dropID); err != nil {
		return nil, err
	}

	delta := def.Kind.Reaction.ExperienceDelta
	authorXP, err := tx.AdjustExperience(ctx, post.AuthorID, delta)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.ReactionsApplied.Inc()
	log.Info("Reaction applied", "post_id", postID, "drop_id", dropID,
		"delta", delta, "author_experience", authorXP)

	if err := s.bus.Publish(ctx, event.NewReactionAppliedEvent(
		postID, dropID, actorID, post.AuthorID, delta, authorXP)); err != nil {
		log.Warn("Failed to publish reaction event", "error", err)
	}

	return &Result{
		PostID:           postID,
		DropID:           dropID,
		ExperienceDelta:  delta,
		AuthorExperience: authorXP,
		AuthorLevel:      domain.LevelForExperience(authorXP),
	}, nil
}

// AuthorLevel derives the display level from the user's committed experience.
func (s *service) AuthorLevel(_ context.Context, user *domain.User) int {
	return domain.LevelForExperience(user.Experience)
}
