package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/logger"
	"github.com/mossdale/dropforge/internal/repository"
)

// Sentinel errors for the catalog loader
var (
	ErrDuplicateName = errors.New("duplicate item name")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config represents the JSON catalog seed file
type Config struct {
	Version     string `json:"version" validate:"required"`
	Description string `json:"description"`

	Items []Def `json:"items" validate:"required,min=1,dive"`
}

// Def represents a single item definition in the JSON
type Def struct {
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description"`
	Thumbnail    string          `json:"thumbnail" validate:"required"`
	Rarity       domain.Rarity   `json:"rarity" validate:"required"`
	Kind         domain.ItemKind `json:"kind"`
	Available    *bool           `json:"available,omitempty"`
	PatternCount int32           `json:"pattern_count,omitempty" validate:"omitempty,gt=0"`
	Attributes   json.RawMessage `json:"attributes,omitempty"`
}

// Loader handles loading and validating the catalog seed file
type Loader interface {
	Load(path string) (*Config, error)
	Validate(config *Config) error
	SyncToDatabase(ctx context.Context, config *Config, repo repository.Catalog) (*SyncResult, error)
}

// SyncResult contains the result of syncing the catalog to the database
type SyncResult struct {
	ItemsInserted int
	ItemsUpdated  int
	ItemsSkipped  int
}

type catalogLoader struct {
	validate *validator.Validate
}

// NewLoader creates a new Loader instance
func NewLoader() Loader {
	return &catalogLoader{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Load reads and parses a catalog JSON file
func (l *catalogLoader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return &config, nil
}

// Validate checks the catalog configuration for errors
func (l *catalogLoader) Validate(config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := l.validate.Struct(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	names := make(map[string]bool, len(config.Items))
	for i := range config.Items {
		def := &config.Items[i]

		if names[def.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, def.Name)
		}
		names[def.Name] = true

		if !def.Rarity.Valid() {
			return fmt.Errorf("%w: item %q has unknown rarity %q", ErrInvalidConfig, def.Name, def.Rarity)
		}
		if err := def.Kind.Validate(); err != nil {
			return fmt.Errorf("item %q: %w", def.Name, err)
		}
	}

	return nil
}

// SyncToDatabase seeds the catalog idempotently. Definitions are immutable
// once written except for the availability flag, so an existing item only
// ever gets its availability reconciled; everything else is skipped.
func (l *catalogLoader) SyncToDatabase(ctx context.Context, config *Config, repo repository.Catalog) (*SyncResult, error) {
	log := logger.FromContext(ctx)

	existing, err := repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing items: %w", err)
	}

	existingByName := make(map[string]*domain.ItemDefinition, len(existing))
	for i := range existing {
		existingByName[existing[i].Name] = &existing[i]
	}

	result := &SyncResult{}
	for _, def := range config.Items {
		available := true
		if def.Available != nil {
			available = *def.Available
		}

		if current, ok := existingByName[def.Name]; ok {
			if current.Available != available {
				if err := repo.SetAvailability(ctx, current.ID, available); err != nil {
					return nil, fmt.Errorf("failed to update availability for %q: %w", def.Name, err)
				}
				result.ItemsUpdated++
				log.Info("Updated item availability", "name", def.Name, "available", available)
			} else {
				result.ItemsSkipped++
			}
			continue
		}

		patternCount := def.PatternCount
		if patternCount == 0 {
			patternCount = domain.DefaultPatternCount
		}

		itemID, err := repo.InsertItem(ctx, &domain.ItemDefinition{
			Name:         def.Name,
			Description:  def.Description,
			Thumbnail:    def.Thumbnail,
			Rarity:       def.Rarity,
			Kind:         def.Kind,
			Available:    available,
			PatternCount: patternCount,
			Attributes:   def.Attributes,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to insert item %q: %w", def.Name, err)
		}

		result.ItemsInserted++
		log.Info("Inserted catalog item", "name", def.Name, "id", itemID, "rarity", def.Rarity)
	}

	log.Info("Catalog sync completed",
		"inserted", result.ItemsInserted,
		"updated", result.ItemsUpdated,
		"skipped", result.ItemsSkipped)

	return result, nil
}
