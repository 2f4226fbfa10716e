package drop

import (
	"math"

	"github.com/mossdale/dropforge/internal/domain"
)

// Drop odds are expressed as cutoffs over the uint32 space so a single roll
// decides the tier. A roll at or above a cutoff lands in that tier.
//
// Cutoff widths: legendary ~0.01%, ultra rare ~0.1%, rare ~1%, uncommon ~15%,
// everything below falls through to common.
const (
	legendaryCutoff uint32 = math.MaxUint32 - 429497
	ultraRareCutoff uint32 = legendaryCutoff - 4294970
	rareCutoff      uint32 = ultraRareCutoff - 42949672
	uncommonCutoff  uint32 = rareCutoff - 644245090
)

// dropChanceCutoff gates whether a qualifying event drops at all (~15%).
const dropChanceCutoff uint32 = math.MaxUint32 - 644245090

// rollRarity maps one uniform roll to a rarity tier.
func rollRarity(roll uint32) domain.Rarity {
	switch {
	case roll >= legendaryCutoff:
		return domain.RarityLegendary
	case roll >= ultraRareCutoff:
		return domain.RarityUltraRare
	case roll >= rareCutoff:
		return domain.RarityRare
	case roll >= uncommonCutoff:
		return domain.RarityUncommon
	default:
		return domain.RarityCommon
	}
}

// rollHits reports whether a drop occurs for this qualifying event.
func rollHits(roll uint32) bool {
	return roll > dropChanceCutoff
}
