package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/repository"
)

// CatalogRepository implements repository.Catalog for PostgreSQL
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(pool *pgxpool.Pool) repository.Catalog {
	return &CatalogRepository{pool: pool}
}

// GetItem retrieves an item definition by ID
func (r *CatalogRepository) GetItem(ctx context.Context, itemID int) (*domain.ItemDefinition, error) {
	return getItem(ctx, r.pool, itemID)
}

// GetItemByName retrieves an item definition by its unique name
func (r *CatalogRepository) GetItemByName(ctx context.Context, name string) (*domain.ItemDefinition, error) {
	def, err := scanItem(r.pool.QueryRow(ctx, sqlSelectItem+` WHERE item_name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item by name: %w", err)
	}
	return def, nil
}

// ListItems retrieves all item definitions
func (r *CatalogRepository) ListItems(ctx context.Context) ([]domain.ItemDefinition, error) {
	rows, err := r.pool.Query(ctx, sqlSelectItem+` ORDER BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
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

// GetAvailableByRarity retrieves droppable definitions in one rarity tier
func (r *CatalogRepository) GetAvailableByRarity(ctx context.Context, rarity domain.Rarity) ([]domain.ItemDefinition, error) {
	return getAvailableByRarity(ctx, r.pool, rarity)
}

const sqlInsertItem = `
INSERT INTO items (item_name, item_description, thumbnail, rarity, kind, available, pattern_count, attributes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING item_id`

// InsertItem inserts a new item definition. The kind payload is validated
// before it reaches the row; nothing trusts it on the way back out.
func (r *CatalogRepository) InsertItem(ctx context.Context, def *domain.ItemDefinition) (int, error) {
	if err := def.Kind.Validate(); err != nil {
		return 0, err
	}
	if !def.Rarity.Valid() {
		return 0, fmt.Errorf("%w: unknown rarity %q", domain.ErrInvalidInput, def.Rarity)
	}

	kindRaw, err := json.Marshal(def.Kind)
	if err != nil {
		return 0, fmt.Errorf("failed to encode item kind: %w", err)
	}

	patternCount := def.PatternCount
	if patternCount <= 0 {
		patternCount = domain.DefaultPatternCount
	}

	var attrs any
	if len(def.Attributes) > 0 {
		attrs = []byte(def.Attributes)
	}

	var itemID int
	err = r.pool.QueryRow(ctx, sqlInsertItem,
		def.Name, def.Description, def.Thumbnail, string(def.Rarity),
		kindRaw, def.Available, patternCount, attrs).Scan(&itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert item: %w", err)
	}
	return itemID, nil
}

const sqlSetAvailability = `UPDATE items SET available = $2 WHERE item_id = $1`

// SetAvailability toggles whether a definition participates in drops
func (r *CatalogRepository) SetAvailability(ctx context.Context, itemID int, available bool) error {
	tag, err := r.pool.Exec(ctx, sqlSetAvailability, itemID, available)
	if err != nil {
		return fmt.Errorf("failed to set availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: item %d", domain.ErrItemNotFound, itemID)
	}
	return nil
}
