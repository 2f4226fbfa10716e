package equip

import (
	"context"
	"fmt"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/logger"
	"github.com/mossdale/dropforge/internal/repository"
)

// Service manages the per-user presentation slots. Equipping never changes
// ownership; it records which owned drops the user currently displays.
type Service interface {
	Equip(ctx context.Context, userID, dropID string) (*domain.EquipSlots, error)
	Unequip(ctx context.Context, userID, dropID string) (*domain.EquipSlots, error)
	GetEquipped(ctx context.Context, userID string) (*domain.EquipSlots, error)
}

type service struct {
	repo repository.Equip
}

// NewService creates a new equip service
func NewService(repo repository.Equip) Service {
	return &service{repo: repo}
}

// Equip places the drop into the slot its item kind selects. Avatars fill the
// profile picture slot, backgrounds the background slot; either replaces the
// current occupant. Badges append into the ordered badge list, capped at
// MaxEquippedBadges, and equipping an already-equipped badge is a no-op.
func (s *service) Equip(ctx context.Context, userID, dropID string) (*domain.EquipSlots, error) {
	log := logger.FromContext(ctx)
	log.Info("Equip called", "user_id", userID, "drop_id", dropID)

	user, drop, def, err := s.load(ctx, userID, dropID)
	if err != nil {
		return nil, err
	}
	if drop.Consumed {
		return nil, fmt.Errorf("%w: drop %s", domain.ErrAlreadyConsumed, dropID)
	}

	slots := user.Equipped
	switch def.Kind.Name {
	case domain.KindAvatar:
		slots.ProfilePic = &dropID
	case domain.KindBackground:
		slots.Background = &dropID
	case domain.KindBadge:
		if slots.HasBadge(dropID) {
			return &slots, nil
		}
		if len(slots.Badges) >= domain.MaxEquippedBadges {
			return nil, fmt.Errorf("%w: limit %d", domain.ErrBadgeSlotsFull, domain.MaxEquippedBadges)
		}
		badges := make([]string, len(slots.Badges), len(slots.Badges)+1)
		copy(badges, slots.Badges)
		slots.Badges = append(badges, dropID)
	default:
		return nil, fmt.Errorf("%w: %s items cannot be equipped", domain.ErrKindMismatch, def.Kind.Name)
	}

	// Conditional write: lands only if the slots still read user.Equipped and
	// the drop is still an unconsumed holding of this user. The in-memory
	// checks above give friendly errors; this is what enforces them.
	if err := s.repo.EquipDrop(ctx, userID, dropID, user.Equipped, slots); err != nil {
		log.Error("Failed to update equip slots", "error", err)
		return nil, err
	}

	log.Info("Item equipped", "user_id", userID, "drop_id", dropID, "kind", def.Kind.Name)
	return &slots, nil
}

// Unequip clears whichever slot references the drop. Clearing a slot that
// does not reference it is a no-op, not an error.
func (s *service) Unequip(ctx context.Context, userID, dropID string) (*domain.EquipSlots, error) {
	log := logger.FromContext(ctx)
	log.Info("Unequip called", "user_id", userID, "drop_id", dropID)

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	slots := user.Equipped
	if !slots.References(dropID) {
		return &slots, nil
	}

	if slots.ProfilePic != nil && *slots.ProfilePic == dropID {
		slots.ProfilePic = nil
	}
	if slots.Background != nil && *slots.Background == dropID {
		slots.Background = nil
	}
	if slots.HasBadge(dropID) {
		badges := make([]string, 0, len(slots.Badges))
		for _, id := range slots.Badges {
			if id != dropID {
				badges = append(badges, id)
			}
		}
		slots.Badges = badges
	}

	if err := s.repo.UpdateEquipSlots(ctx, userID, user.Equipped, slots); err != nil {
		log.Error("Failed to update equip slots", "error", err)
		return nil, err
	}

	log.Info("Item unequipped", "user_id", userID, "drop_id", dropID)
	return &slots, nil
}

// GetEquipped returns the user's current slot selection
func (s *service) GetEquipped(ctx context.Context, userID string) (*domain.EquipSlots, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user.Equipped, nil
}

func (s *service) load(ctx context.Context, userID, dropID string) (*domain.User, *domain.Drop, *domain.ItemDefinition, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	drop, err := s.repo.GetDrop(ctx, dropID)
	if err != nil {
		return nil, nil, nil, err
	}
	if drop.OwnerID != userID {
		return nil, nil, nil, fmt.Errorf("%w: drop %s", domain.ErrNotOwner, dropID)
	}
	def, err := s.repo.GetItem(ctx, drop.ItemID)
	if err != nil {
		return nil, nil, nil, err
	}
	return user, drop, def, nil
}
