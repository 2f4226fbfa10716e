package repository

import (
	"context"

	"github.com/mossdale/dropforge/internal/domain"
)

// Catalog provides access to immutable item definitions. Only the
// availability flag mutates after insert; everything else is fixed.
type Catalog interface {
	GetItem(ctx context.Context, itemID int) (*domain.ItemDefinition, error)
	GetItemByName(ctx context.Context, name string) (*domain.ItemDefinition, error)
	ListItems(ctx context.Context) ([]domain.ItemDefinition, error)
	GetAvailableByRarity(ctx context.Context, rarity domain.Rarity) ([]domain.ItemDefinition, error)
	InsertItem(ctx context.Context, def *domain.ItemDefinition) (int, error)
	SetAvailability(ctx context.Context, itemID int, available bool) error
}
