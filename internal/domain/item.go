package domain

import (
	"encoding/json"
	"fmt"
)

// Rarity orders item definitions from most to least likely to drop.
// Unique items never drop; they exist only through explicit minting.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityUltraRare Rarity = "ultra_rare"
	RarityLegendary Rarity = "legendary"
	RarityUnique    Rarity = "unique"
)

// DroppableRarities lists tiers eligible for random drops, rarest first.
// Tier fallback during selection walks this slice toward common.
var DroppableRarities = []Rarity{
	RarityLegendary,
	RarityUltraRare,
	RarityRare,
	RarityUncommon,
	RarityCommon,
}

// Valid reports whether r is a known rarity tier.
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityUltraRare, RarityLegendary, RarityUnique:
		return true
	}
	return false
}

// LessRare returns the next tier down, or false from common.
func (r Rarity) LessRare() (Rarity, bool) {
	switch r {
	case RarityLegendary:
		return RarityUltraRare, true
	case RarityUltraRare:
		return RarityRare, true
	case RarityRare:
		return RarityUncommon, true
	case RarityUncommon:
		return RarityCommon, true
	default:
		return "", false
	}
}

// KindName tags the closed set of item kind variants.
type KindName string

const (
	KindBadge      KindName = "badge"
	KindReaction   KindName = "reaction"
	KindBackground KindName = "background"
	KindAvatar     KindName = "avatar"
)

// ItemKind is the tagged variant payload of an item definition. Exactly one
// of the pointer fields matching Name is set; the payload is validated when
// the catalog row is written, not trusted at read time.
type ItemKind struct {
	Name       KindName        `json:"name"`
	Reaction   *ReactionKind   `json:"reaction,omitempty"`
	Background *BackgroundKind `json:"background,omitempty"`
	Avatar     *AvatarKind     `json:"avatar,omitempty"`
}

// ReactionKind configures a one-shot consumable that moves experience to the
// author of the post it is applied to.
type ReactionKind struct {
	ExperienceDelta int64 `json:"experience_delta"`
}

// BackgroundKind configures a cosmetic profile background gradient.
type BackgroundKind struct {
	Colors []string `json:"colors"`
}

// AvatarKind configures a cosmetic profile picture.
type AvatarKind struct {
	AssetRef string `json:"asset_ref"`
}

// Validate enforces the closed-variant shape at catalog-write time.
func (k ItemKind) Validate() error {
	switch k.Name {
	case KindBadge:
		if k.Reaction != nil || k.Background != nil || k.Avatar != nil {
			return fmt.Errorf("%w: badge kind carries no payload", ErrInvalidInput)
		}
	case KindReaction:
		if k.Reaction == nil {
			return fmt.Errorf("%w: reaction kind requires experience delta", ErrInvalidInput)
		}
	case KindBackground:
		if k.Background == nil || len(k.Background.Colors) == 0 {
			return fmt.Errorf("%w: background kind requires colors", ErrInvalidInput)
		}
	case KindAvatar:
		if k.Avatar == nil || k.Avatar.AssetRef == "" {
			return fmt.Errorf("%w: avatar kind requires asset reference", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown item kind %q", ErrInvalidInput, k.Name)
	}
	return nil
}

// ItemDefinition is a catalog row. Immutable once written except for the
// availability flag, which gates random drops only.
type ItemDefinition struct {
	ID           int             `json:"item_id" db:"item_id"`
	Name         string          `json:"name" db:"item_name"`
	Description  string          `json:"description" db:"item_description"`
	Thumbnail    string          `json:"thumbnail" db:"thumbnail"`
	Rarity       Rarity          `json:"rarity" db:"rarity"`
	Kind         ItemKind        `json:"kind" db:"kind"`
	Available    bool            `json:"available" db:"available"`
	PatternCount int32           `json:"pattern_count" db:"pattern_count"`
	Attributes   json.RawMessage `json:"attributes,omitempty" db:"attributes"`
}

// DefaultPatternCount is the pattern space used when a definition does not
// narrow it; matches a 16-bit cosmetic variant index.
const DefaultPatternCount int32 = 65536
