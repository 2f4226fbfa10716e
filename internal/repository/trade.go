package repository

import (
	"context"

	"github.com/mossdale/dropforge/internal/domain"
)

// Trade persists trade offers and performs the atomic acceptance swap.
type Trade interface {
	CreateOffer(ctx context.Context, offer *domain.TradeOffer) error
	GetOffer(ctx context.Context, offerID string) (*domain.TradeOffer, error)
	ListOffersForUser(ctx context.Context, userID string) ([]domain.TradeOffer, error)
	GetDrop(ctx context.Context, dropID string) (*domain.Drop, error)
	BeginTx(ctx context.Context) (TradeTx, error)
}

// TradeTx wraps one offer resolution. The conditional status flip is the
// gate: only the caller whose UPDATE touches the Proposed row proceeds to
// move items; everyone else observes zero rows and backs off.
type TradeTx interface {
	Tx
	SetStatusIfProposed(ctx context.Context, offerID string, to domain.TradeStatus) (bool, error)
	GetDrop(ctx context.Context, dropID string) (*domain.Drop, error)
	TransferOwnership(ctx context.Context, dropID, expectedOwner, newOwner string) error
	ClearEquipReferences(ctx context.Context, ownerID, dropID string) error
}
