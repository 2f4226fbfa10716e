package repository

import (
	"context"

	"github.com/mossdale/dropforge/internal/domain"
)

// User exposes the economy fields embedded in the user record. Account
// creation and auth belong to an external collaborator; upsert exists for
// wiring and tests.
type User interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpsertUser(ctx context.Context, user *domain.User) error
	// UpdateEquipSlots is a single-row conditional mutation of the
	// presentation slots: the write lands only if the row still holds
	// expected, otherwise ErrEquipConflict. It never touches ledger
	// ownership.
	UpdateEquipSlots(ctx context.Context, userID string, expected, next domain.EquipSlots) error
}

// Equip is the read/write surface the equip service needs.
type Equip interface {
	User
	GetDrop(ctx context.Context, dropID string) (*domain.Drop, error)
	GetItem(ctx context.Context, itemID int) (*domain.ItemDefinition, error)
	// EquipDrop writes next in place of expected, additionally gated on the
	// caller still owning an unconsumed dropID in the same statement. Zero
	// affected rows is diagnosed into ErrNotOwner, ErrAlreadyConsumed or
	// ErrEquipConflict, never reported as success.
	EquipDrop(ctx context.Context, userID, dropID string, expected, next domain.EquipSlots) error
}
