package repository

import (
	"context"

	"github.com/mossdale/dropforge/internal/domain"
)

// Ledger is the ownership source of truth for minted drops. Each primitive is
// linearizable per drop row: conditional updates carry the expected prior
// state, and an update that touches zero rows is a failure, never a success.
type Ledger interface {
	GetDrop(ctx context.Context, dropID string) (*domain.Drop, error)
	GetInventory(ctx context.Context, ownerID string) ([]domain.Drop, error)
	Mint(ctx context.Context, itemID int, ownerID string, pattern int32) (*domain.Drop, error)
	BeginTx(ctx context.Context) (LedgerTx, error)
}

// LedgerTx groups ledger primitives inside one transaction so that dependent
// writes (equip-slot clearing, gift transfers) commit or roll back together.
type LedgerTx interface {
	Tx
	GetDrop(ctx context.Context, dropID string) (*domain.Drop, error)
	// TransferOwnership moves a drop between users. Fails with
	// domain.ErrNotOwner when the current owner is not expectedOwner.
	TransferOwnership(ctx context.Context, dropID, expectedOwner, newOwner string) error
	// MarkConsumed flips the consumed flag once. Fails with
	// domain.ErrAlreadyConsumed on reuse and domain.ErrNotOwner when the
	// drop is not held by owner.
	MarkConsumed(ctx context.Context, dropID, ownerID string) error
	// ClearEquipReferences drops any equip-slot reference the owner holds
	// to the given drop. Transfers call this so no slot dangles.
	ClearEquipReferences(ctx context.Context, ownerID, dropID string) error
}
