package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mossdale/dropforge/internal/domain"
)

// dbtx abstracts over *pgxpool.Pool and pgx.Tx so row helpers run both
// inside and outside transactions.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const sqlSelectDrop = `
SELECT drop_id, item_id, owner_id, pattern, consumed, created_at
FROM drops WHERE drop_id = $1`

func getDrop(ctx context.Context, db dbtx, dropID string) (*domain.Drop, error) {
	var d domain.Drop
	err := db.QueryRow(ctx, sqlSelectDrop, dropID).
		Scan(&d.ID, &d.ItemID, &d.OwnerID, &d.Pattern, &d.Consumed, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDropNotFound
		}
		return nil, fmt.Errorf("failed to get drop: %w", err)
	}
	return &d, nil
}

const sqlTransferOwnership = `
UPDATE drops SET owner_id = $3 WHERE drop_id = $1 AND owner_id = $2`

// transferOwnership is the ledger's conditional owner swap. The WHERE clause
// carries the expected owner; zero affected rows is a failure, diagnosed
// against the current row rather than reported as success.
func transferOwnership(ctx context.Context, db dbtx, dropID, expectedOwner, newOwner string) error {
	tag, err := db.Exec(ctx, sqlTransferOwnership, dropID, expectedOwner, newOwner)
	if err != nil {
		return fmt.Errorf("failed to transfer drop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := getDrop(ctx, db, dropID); err != nil {
			return err
		}
		return fmt.Errorf("%w: drop %s", domain.ErrNotOwner, dropID)
	}
	return nil
}

const sqlMarkConsumed = `
UPDATE drops SET consumed = TRUE
WHERE drop_id = $1 AND owner_id = $2 AND NOT consumed`

func markConsumed(ctx context.Context, db dbtx, dropID, ownerID string) error {
	tag, err := db.Exec(ctx, sqlMarkConsumed, dropID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to mark drop consumed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		drop, err := getDrop(ctx, db, dropID)
		if err != nil {
			return err
		}
		if drop.OwnerID != ownerID {
			return fmt.Errorf("%w: drop %s", domain.ErrNotOwner, dropID)
		}
		return fmt.Errorf("%w: drop %s", domain.ErrAlreadyConsumed, dropID)
	}
	return nil
}

const sqlClearEquipReferences = `
UPDATE users SET
    equip_profile_pic = CASE WHEN equip_profile_pic = $2 THEN NULL ELSE equip_profile_pic END,
    equip_background = CASE WHEN equip_background = $2 THEN NULL ELSE equip_background END,
    equip_badges = array_remove(equip_badges, $2::uuid),
    updated_at = NOW()
WHERE user_id = $1`

func clearEquipReferences(ctx context.Context, db dbtx, ownerID, dropID string) error {
	if _, err := db.Exec(ctx, sqlClearEquipReferences, ownerID, dropID); err != nil {
		return fmt.Errorf("failed to clear equip references: %w", err)
	}
	return nil
}

const sqlInsertDrop = `
INSERT INTO drops (item_id, owner_id, pattern)
VALUES ($1, $2, $3)
RETURNING drop_id, created_at`

func insertDrop(ctx context.Context, db dbtx, itemID int, ownerID string, pattern int32) (*domain.Drop, error) {
	d := domain.Drop{
		ItemID:  itemID,
		OwnerID: ownerID,
		Pattern: pattern,
	}
	err := db.QueryRow(ctx, sqlInsertDrop, itemID, ownerID, pattern).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert drop: %w", err)
	}
	return &d, nil
}

const sqlSelectItem = `
SELECT item_id, item_name, item_description, thumbnail, rarity, kind, available, pattern_count, attributes
FROM items`

func scanItem(row pgx.Row) (*domain.ItemDefinition, error) {
	var def domain.ItemDefinition
	var kindRaw []byte
	var attrs []byte
	err := row.Scan(&def.ID, &def.Name, &def.Description, &def.Thumbnail, &def.Rarity,
		&kindRaw, &def.Available, &def.PatternCount, &attrs)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(kindRaw, &def.Kind); err != nil {
		return nil, fmt.Errorf("failed to decode item kind: %w", err)
	}
	def.Attributes = attrs
	return &def, nil
}

func getItem(ctx context.Context, db dbtx, itemID int) (*domain.ItemDefinition, error) {
	def, err := scanItem(db.QueryRow(ctx, sqlSelectItem+` WHERE item_id = $1`, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return def, nil
}

const sqlAvailableByRarity = ` WHERE rarity = $1 AND available ORDER BY item_id`

func getAvailableByRarity(ctx context.Context, db dbtx, rarity domain.Rarity) ([]domain.ItemDefinition, error) {
	rows, err := db.Query(ctx, sqlSelectItem+sqlAvailableByRarity, string(rarity))
	if err != nil {
		return nil, fmt.Errorf("failed to query available items: %w", err)
	}
	defer rows.Close()

	var defs []domain.ItemDefinition
	for rows.Next() {
		def, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		defs = append(defs, *def)
	}
	return defs, rows.Err()
}
