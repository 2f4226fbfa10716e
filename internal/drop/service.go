package drop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/event"
	"github.com/mossdale/dropforge/internal/logger"
	"github.com/mossdale/dropforge/internal/metrics"
	"github.com/mossdale/dropforge/internal/repository"
	"github.com/mossdale/dropforge/internal/utils"
)

// PostResult is the outcome of a post-creation event. Reward is nil when the
// roll missed, the catalog had nothing to offer, or the cooldown gate held.
type PostResult struct {
	Post   *domain.Post `json:"post"`
	Reward *domain.Drop `json:"reward,omitempty"`
	Rarity string       `json:"rarity,omitempty"`
}

// Service runs the reward pipeline for qualifying post-creation events
type Service interface {
	CreatePost(ctx context.Context, authorID, threadID, body string) (*PostResult, error)
}

type service struct {
	repo     repository.Reward
	bus      event.Bus
	cooldown time.Duration

	// Injected RNG hooks so odds are deterministic under test
	randUint32 func() uint32
	randInt32n func(n int32) int32
	randIndex  func(n int) int
	now        func() time.Time
}

// NewService creates a new drop selector service
func NewService(repo repository.Reward, bus event.Bus, cooldown time.Duration) Service {
	return &service{
		repo:       repo,
		bus:        bus,
		cooldown:   cooldown,
		randUint32: utils.RandomUint32,
		randInt32n: utils.RandomInt32n,
		randIndex:  utils.RandomIndex,
		now:        time.Now,
	}
}

// CreatePost inserts the post and, when the author is past the reward
// cooldown, rolls for a drop. The post insert, the mint and the cooldown
// advance commit as one transaction; a post never references a reward that
// did not commit with it.
func (s *service) CreatePost(ctx context.Context, authorID, threadID, body string) (*PostResult, error) {
	log := logger.FromContext(ctx)
	log.Info("CreatePost called", "author_id", authorID, "thread_id", threadID)

	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: empty post body", domain.ErrInvalidInput)
	}

	user, err := s.repo.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	now := s.now()
	post := &domain.Post{
		ThreadID: threadID,
		AuthorID: authorID,
		Body:     body,
		PostDate: now,
	}

	var reward *domain.Drop
	var rewardDef *domain.ItemDefinition

	if now.Sub(user.LastReward) >= s.cooldown {
		// The cooldown advances on every qualifying event, drop or not.
		// The conditional update also serializes concurrent posts: the
		// loser skips the roll and keeps its post.
		advanced, err := tx.AdvanceLastReward(ctx, authorID, user.LastReward, now)
		if err != nil {
			return nil, err
		}
		switch {
		case !advanced:
			log.Debug("Lost reward race to concurrent post", "author_id", authorID)
			metrics.RewardRollsTotal.WithLabelValues(metrics.OutcomeLostRace).Inc()
		case !rollHits(s.randUint32()):
			metrics.RewardRollsTotal.WithLabelValues(metrics.OutcomeNoDrop).Inc()
		default:
			reward, rewardDef, err = s.mintReward(ctx, tx, authorID)
			if err != nil {
				return nil, err
			}
		}
	} else {
		metrics.RewardRollsTotal.WithLabelValues(metrics.OutcomeCooldown).Inc()
	}

	if reward != nil {
		post.RewardDropID = &reward.ID
	}

	if err := tx.InsertPost(ctx, post); err != nil {
		log.Error("Failed to insert post", "error", err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result := &PostResult{Post: post}
	if reward != nil {
		result.Reward = reward
		result.Rarity = string(rewardDef.Rarity)
		metrics.RewardRollsTotal.WithLabelValues(metrics.OutcomeMinted).Inc()
		metrics.RewardsMinted.WithLabelValues(string(rewardDef.Rarity)).Inc()
		log.Info("Reward minted", "author_id", authorID, "drop_id", reward.ID,
			"item", rewardDef.Name, "rarity", rewardDef.Rarity, "pattern", reward.Pattern)

		if err := s.bus.Publish(ctx, event.NewRewardDroppedEvent(
			post.ID, authorID, reward.ID, rewardDef.ID, rewardDef.Name,
			string(rewardDef.Rarity), reward.Pattern)); err != nil {
			log.Warn("Failed to publish reward event", "error", err)
		}
	}

	return result, nil
}

// mintReward rolls a tier, walks down to the first tier with available
// definitions, and mints one uniform pick with a fresh pattern.
func (s *service) mintReward(ctx context.Context, tx repository.RewardTx, ownerID string) (*domain.Drop, *domain.ItemDefinition, error) {
	rarity := rollRarity(s.randUint32())

	for {
		defs, err := tx.GetAvailableByRarity(ctx, rarity)
		if err != nil {
			return nil, nil, err
		}
		if len(defs) > 0 {
			def := defs[s.randIndex(len(defs))]
			pattern := s.randInt32n(def.PatternCount)
			minted, err := tx.MintDrop(ctx, def.ID, ownerID, pattern)
			if err != nil {
				return nil, nil, err
			}
			return minted, &def, nil
		}

		next, ok := rarity.LessRare()
		if !ok {
			metrics.RewardRollsTotal.WithLabelValues(metrics.OutcomeEmpty).Inc()
			return nil, nil, nil
		}
		rarity = next
	}
}
