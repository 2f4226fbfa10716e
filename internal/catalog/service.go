package catalog

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/logger"
	"github.com/mossdale/dropforge/internal/repository"
)

// cacheSize bounds the definition cache. Catalogs are small; this exists so
// an unbounded catalog cannot grow the cache without limit.
const cacheSize = 1024

// Service reads item definitions through a cache. Definitions are immutable
// after insert except for availability, so cached rows only need invalidation
// on the availability path.
type Service interface {
	GetItem(ctx context.Context, itemID int) (*domain.ItemDefinition, error)
	GetItemByName(ctx context.Context, name string) (*domain.ItemDefinition, error)
	ListItems(ctx context.Context) ([]domain.ItemDefinition, error)
	GetAvailableByRarity(ctx context.Context, rarity domain.Rarity) ([]domain.ItemDefinition, error)
	AddItem(ctx context.Context, def *domain.ItemDefinition) (int, error)
	SetAvailability(ctx context.Context, itemID int, available bool) error
}

type service struct {
	repo  repository.Catalog
	cache *lru.Cache[int, *domain.ItemDefinition]
}

// NewService creates a new catalog service
func NewService(repo repository.Catalog) (Service, error) {
	cache, err := lru.New[int, *domain.ItemDefinition](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog cache: %w", err)
	}
	return &service{repo: repo, cache: cache}, nil
}

// GetItem retrieves one definition, from cache when possible
func (s *service) GetItem(ctx context.Context, itemID int) (*domain.ItemDefinition, error) {
	if def, ok := s.cache.Get(itemID); ok {
		return def, nil
	}

	def, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	s.cache.Add(itemID, def)
	return def, nil
}

// GetItemByName retrieves one definition by its unique name. Name lookups
// skip the cache; the ID is the cache key.
func (s *service) GetItemByName(ctx context.Context, name string) (*domain.ItemDefinition, error) {
	def, err := s.repo.GetItemByName(ctx, name)
	if err != nil {
		return nil, err
	}

	s.cache.Add(def.ID, def)
	return def, nil
}

// ListItems returns the full catalog
func (s *service) ListItems(ctx context.Context) ([]domain.ItemDefinition, error) {
	return s.repo.ListItems(ctx)
}

// GetAvailableByRarity returns droppable definitions in one tier. Reads go to
// the store; the drop selector needs the committed availability view, not a
// cached one.
func (s *service) GetAvailableByRarity(ctx context.Context, rarity domain.Rarity) ([]domain.ItemDefinition, error) {
	return s.repo.GetAvailableByRarity(ctx, rarity)
}

// AddItem validates and inserts a new definition
func (s *service) AddItem(ctx context.Context, def *domain.ItemDefinition) (int, error) {
	log := logger.FromContext(ctx)

	if def.Name == "" {
		return 0, fmt.Errorf("%w: item name is required", domain.ErrInvalidInput)
	}
	if !def.Rarity.Valid() {
		return 0, fmt.Errorf("%w: unknown rarity %q", domain.ErrInvalidInput, def.Rarity)
	}
	if err := def.Kind.Validate(); err != nil {
		return 0, err
	}
	if def.PatternCount <= 0 {
		def.PatternCount = domain.DefaultPatternCount
	}

	itemID, err := s.repo.InsertItem(ctx, def)
	if err != nil {
		log.Error("Failed to insert item", "error", err)
		return 0, err
	}

	log.Info("Catalog item added", "item_id", itemID, "name", def.Name)
	return itemID, nil
}

// SetAvailability flips the drop-pool flag and invalidates the cached row
func (s *service) SetAvailability(ctx context.Context, itemID int, available bool) error {
	if err := s.repo.SetAvailability(ctx, itemID, available); err != nil {
		return err
	}

	s.cache.Remove(itemID)
	logger.FromContext(ctx).Info("Item availability changed", "item_id", itemID, "available", available)
	return nil
}
