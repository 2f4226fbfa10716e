package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/repository"
)

// LedgerRepository implements repository.Ledger for PostgreSQL
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(pool *pgxpool.Pool) repository.Ledger {
	return &LedgerRepository{pool: pool}
}

// LedgerTx implements repository.LedgerTx
type LedgerTx struct {
	tx pgx.Tx
}

// BeginTx starts a new ledger transaction
func (r *LedgerRepository) BeginTx(ctx context.Context) (repository.LedgerTx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &LedgerTx{tx: tx}, nil
}

// GetDrop retrieves a drop by ID
func (r *LedgerRepository) GetDrop(ctx context.Context, dropID string) (*domain.Drop, error) {
	return getDrop(ctx, r.pool, dropID)
}

const sqlSelectInventory = `
SELECT drop_id, item_id, owner_id, pattern, consumed, created_at
FROM drops WHERE owner_id = $1 ORDER BY created_at, drop_id`

// GetInventory retrieves every drop currently owned by a user
func (r *LedgerRepository) GetInventory(ctx context.Context, ownerID string) ([]domain.Drop, error) {
	rows, err := r.pool.Query(ctx, sqlSelectInventory, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var drops []domain.Drop
	for rows.Next() {
		var d domain.Drop
		if err := rows.Scan(&d.ID, &d.ItemID, &d.OwnerID, &d.Pattern, &d.Consumed, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan drop: %w", err)
		}
		drops = append(drops, d)
	}
	return drops, rows.Err()
}

// Mint creates a new drop outside any enclosing transaction
func (r *LedgerRepository) Mint(ctx context.Context, itemID int, ownerID string, pattern int32) (*domain.Drop, error) {
	return insertDrop(ctx, r.pool, itemID, ownerID, pattern)
}

// Commit commits the transaction
func (t *LedgerTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *LedgerTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// GetDrop retrieves a drop inside the transaction
func (t *LedgerTx) GetDrop(ctx context.Context, dropID string) (*domain.Drop, error) {
	return getDrop(ctx, t.tx, dropID)
}

// TransferOwnership conditionally reassigns a drop
func (t *LedgerTx) TransferOwnership(ctx context.Context, dropID, expectedOwner, newOwner string) error {
	return transferOwnership(ctx, t.tx, dropID, expectedOwner, newOwner)
}

// MarkConsumed conditionally flips the consumed flag
func (t *LedgerTx) MarkConsumed(ctx context.Context, dropID, ownerID string) error {
	return markConsumed(ctx, t.tx, dropID, ownerID)
}

// ClearEquipReferences removes dangling equip-slot references
func (t *LedgerTx) ClearEquipReferences(ctx context.Context, ownerID, dropID string) error {
	return clearEquipReferences(ctx, t.tx, ownerID, dropID)
}
