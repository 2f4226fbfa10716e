package ledger

import (
	"context"
	"fmt"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/logger"
	"github.com/mossdale/dropforge/internal/repository"
	"github.com/mossdale/dropforge/internal/utils"
)

// Service exposes the ownership ledger: inventory reads, direct gifts, and
// explicit minting for unique items that never enter the random drop pool.
type Service interface {
	GetInventory(ctx context.Context, ownerID string) ([]domain.Drop, error)
	GetDrop(ctx context.Context, dropID string) (*domain.Drop, error)
	Gift(ctx context.Context, fromID, toID, dropID string) (*domain.Drop, error)
	MintUnique(ctx context.Context, def *domain.ItemDefinition, ownerID string) (*domain.Drop, error)
}

type service struct {
	repo      repository.Ledger
	randInt32 func(n int32) int32
}

// NewService creates a new ledger service
func NewService(repo repository.Ledger) Service {
	return &service{repo: repo, randInt32: utils.RandomInt32n}
}

// GetInventory lists every drop the owner holds, consumed ones included;
// callers filter on Consumed when they only want usable items
func (s *service) GetInventory(ctx context.Context, ownerID string) ([]domain.Drop, error) {
	return s.repo.GetInventory(ctx, ownerID)
}

// GetDrop retrieves a single drop row
func (s *service) GetDrop(ctx context.Context, dropID string) (*domain.Drop, error) {
	return s.repo.GetDrop(ctx, dropID)
}

// Gift moves one drop directly to another user. The conditional transfer
// carries the giver as expected owner, so a concurrent trade or gift of the
// same drop leaves exactly one of them standing. Equip slots referencing the
// drop are cleared in the same transaction.
func (s *service) Gift(ctx context.Context, fromID, toID, dropID string) (*domain.Drop, error) {
	log := logger.FromContext(ctx)
	log.Info("Gift called", "from_id", fromID, "to_id", toID, "drop_id", dropID)

	if fromID == toID {
		return nil, fmt.Errorf("%w: cannot gift to yourself", domain.ErrInvalidInput)
	}

	drop, err := s.repo.GetDrop(ctx, dropID)
	if err != nil {
		return nil, err
	}
	if drop.OwnerID != fromID {
		return nil, fmt.Errorf("%w: drop %s", domain.ErrNotOwner, dropID)
	}
	if drop.Consumed {
		return nil, fmt.Errorf("%w: drop %s", domain.ErrAlreadyConsumed, dropID)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.TransferOwnership(ctx, dropID, fromID, toID); err != nil {
		return nil, err
	}
	if err := tx.ClearEquipReferences(ctx, fromID, dropID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	drop.OwnerID = toID
	log.Info("Drop gifted", "drop_id", dropID, "from_id", fromID, "to_id", toID)
	return drop, nil
}

// MintUnique mints a drop outside the random reward path. Unique-rarity
// definitions only exist through this entry point.
func (s *service) MintUnique(ctx context.Context, def *domain.ItemDefinition, ownerID string) (*domain.Drop, error) {
	log := logger.FromContext(ctx)
	log.Info("MintUnique called", "item_id", def.ID, "owner_id", ownerID)

	if def.Rarity != domain.RarityUnique {
		return nil, fmt.Errorf("%w: item %q is not unique rarity", domain.ErrInvalidInput, def.Name)
	}

	pattern := s.randInt32(def.PatternCount)
	drop, err := s.repo.Mint(ctx, def.ID, ownerID, pattern)
	if err != nil {
		log.Error("Failed to mint drop", "error", err)
		return nil, err
	}

	log.Info("Unique drop minted", "drop_id", drop.ID, "item_id", def.ID, "owner_id", ownerID)
	return drop, nil
}
