package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/repository"
)

// TradeRepository implements repository.Trade for PostgreSQL
type TradeRepository struct {
	pool *pgxpool.Pool
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(pool *pgxpool.Pool) repository.Trade {
	return &TradeRepository{pool: pool}
}

const sqlInsertOffer = `
INSERT INTO trade_offers (sender_id, receiver_id, sender_items, receiver_items, note, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING offer_id, created_at, updated_at`

// CreateOffer inserts a new proposed offer with its item sets frozen
func (r *TradeRepository) CreateOffer(ctx context.Context, offer *domain.TradeOffer) error {
	err := r.pool.QueryRow(ctx, sqlInsertOffer,
		offer.SenderID, offer.ReceiverID, offer.SenderItems, offer.ReceiverItems,
		offer.Note, string(offer.Status)).
		Scan(&offer.ID, &offer.CreatedAt, &offer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trade offer: %w", err)
	}
	return nil
}

const sqlSelectOffer = `
SELECT offer_id, sender_id, receiver_id, sender_items, receiver_items, note, status, created_at, updated_at
FROM trade_offers`

func scanOffer(row pgx.Row) (*domain.TradeOffer, error) {
	var o domain.TradeOffer
	var status string
	err := row.Scan(&o.ID, &o.SenderID, &o.ReceiverID, &o.SenderItems, &o.ReceiverItems,
		&o.Note, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = domain.TradeStatus(status)
	return &o, nil
}

// GetOffer retrieves a trade offer by ID
func (r *TradeRepository) GetOffer(ctx context.Context, offerID string) (*domain.TradeOffer, error) {
	o, err := scanOffer(r.pool.QueryRow(ctx, sqlSelectOffer+` WHERE offer_id = $1`, offerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get trade offer: %w", err)
	}
	return o, nil
}

// ListOffersForUser retrieves all offers a user sent or received
func (r *TradeRepository) ListOffersForUser(ctx context.Context, userID string) ([]domain.TradeOffer, error) {
	rows, err := r.pool.Query(ctx,
		sqlSelectOffer+` WHERE sender_id = $1 OR receiver_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trade offers: %w", err)
	}
	defer rows.Close()

	var offers []domain.TradeOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade offer: %w", err)
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

// GetDrop retrieves a drop for proposal-time validation
func (r *TradeRepository) GetDrop(ctx context.Context, dropID string) (*domain.Drop, error) {
	return getDrop(ctx, r.pool, dropID)
}

// TradeTx implements repository.TradeTx
type TradeTx struct {
	tx pgx.Tx
}

// BeginTx starts an offer-resolution transaction
func (r *TradeRepository) BeginTx(ctx context.Context) (repository.TradeTx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &TradeTx{tx: tx}, nil
}

// Commit commits the transaction
func (t *TradeTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *TradeTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

const sqlSetStatusIfProposed = `
UPDATE trade_offers SET status = $2, updated_at = NOW()
WHERE offer_id = $1 AND status = 'proposed'`

// SetStatusIfProposed is the gate every resolution races through: the WHERE
// clause admits exactly one winner per offer
func (t *TradeTx) SetStatusIfProposed(ctx context.Context, offerID string, to domain.TradeStatus) (bool, error) {
	tag, err := t.tx.Exec(ctx, sqlSetStatusIfProposed, offerID, string(to))
	if err != nil {
		return false, fmt.Errorf("failed to update offer status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetDrop retrieves a drop inside the transaction
func (t *TradeTx) GetDrop(ctx context.Context, dropID string) (*domain.Drop, error) {
	return getDrop(ctx, t.tx, dropID)
}

// TransferOwnership conditionally reassigns a drop
func (t *TradeTx) TransferOwnership(ctx context.Context, dropID, expectedOwner, newOwner string) error {
	return transferOwnership(ctx, t.tx, dropID, expectedOwner, newOwner)
}

// ClearEquipReferences removes dangling equip-slot references
func (t *TradeTx) ClearEquipReferences(ctx context.Context, ownerID, dropID string) error {
	return clearEquipReferences(ctx, t.tx, ownerID, dropID)
}
