package trade

import (
	"context"
	"fmt"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/event"
	"github.com/mossdale/dropforge/internal/logger"
	"github.com/mossdale/dropforge/internal/metrics"
	"github.com/mossdale/dropforge/internal/repository"
)

// Service is the trade negotiation state machine. Offers move
// Proposed -> {Accepted, Declined, Rescinded}; the three terminal states are
// final and acceptance swaps every listed item atomically or none at all.
type Service interface {
	Propose(ctx context.Context, senderID, receiverID string, senderItems, receiverItems []string, note string) (*domain.TradeOffer, error)
	Accept(ctx context.Context, offerID, callerID string) (*domain.TradeOffer, error)
	Decline(ctx context.Context, offerID, callerID string) (*domain.TradeOffer, error)
	Rescind(ctx context.Context, offerID, callerID string) (*domain.TradeOffer, error)
	GetOffer(ctx context.Context, offerID string) (*domain.TradeOffer, error)
	ListOffersForUser(ctx context.Context, userID string) ([]domain.TradeOffer, error)
}

type service struct {
	repo repository.Trade
	bus  event.Bus
}

// NewService creates a new trade service
func NewService(repo repository.Trade, bus event.Bus) Service {
	return &service{repo: repo, bus: bus}
}

// Propose validates both item sets against current ownership and freezes
// them into a Proposed offer. Ownership can still change before acceptance;
// Accept re-validates.
func (s *service) Propose(ctx context.Context, senderID, receiverID string, senderItems, receiverItems []string, note string) (*domain.TradeOffer, error) {
	log := logger.FromContext(ctx)
	log.Info("Propose called", "sender_id", senderID, "receiver_id", receiverID,
		"sender_items", len(senderItems), "receiver_items", len(receiverItems))

	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot trade with yourself", domain.ErrInvalidInput)
	}
	if len(senderItems) == 0 && len(receiverItems) == 0 {
		return nil, fmt.Errorf("%w: offer lists no items", domain.ErrInvalidInput)
	}
	if hasDuplicates(senderItems) || hasDuplicates(receiverItems) {
		return nil, fmt.Errorf("%w: duplicate items in offer", domain.ErrInvalidInput)
	}

	if err := s.checkSide(ctx, senderItems, senderID); err != nil {
		return nil, err
	}
	if err := s.checkSide(ctx, receiverItems, receiverID); err != nil {
		return nil, err
	}

	offer := &domain.TradeOffer{
		SenderID:      senderID,
		ReceiverID:    receiverID,
		SenderItems:   senderItems,
		ReceiverItems: receiverItems,
		Note:          note,
		Status:        domain.TradeProposed,
	}
	if err := s.repo.CreateOffer(ctx, offer); err != nil {
		log.Error("Failed to create trade offer", "error", err)
		return nil, err
	}

	log.Info("Trade offer proposed", "offer_id", offer.ID)
	return offer, nil
}

// checkSide verifies each listed drop is currently owned by the given user
// and still unconsumed.
func (s *service) checkSide(ctx context.Context, dropIDs []string, ownerID string) error {
	for _, dropID := range dropIDs {
		drop, err := s.repo.GetDrop(ctx, dropID)
		if err != nil {
			return err
		}
		if drop.OwnerID != ownerID {
			return fmt.Errorf("%w: drop %s", domain.ErrNotOwner, dropID)
		}
		if drop.Consumed {
			return fmt.Errorf("%w: drop %s", domain.ErrAlreadyConsumed, dropID)
		}
	}
	return nil
}

// Accept performs the atomic swap. The conditional Proposed->Accepted flip
// gates the whole transaction, so racing acceptors resolve to exactly one
// winner; the loser observes the offer as no longer pending. A failed
// ownership re-check aborts with the offer left Proposed and no items moved.
func (s *service) Accept(ctx context.Context, offerID, callerID string) (*domain.TradeOffer, error) {
	log := logger.FromContext(ctx)
	log.Info("Accept called", "offer_id", offerID, "caller_id", callerID)

	offer, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.ReceiverID != callerID {
		return nil, fmt.Errorf("%w: only the receiver may accept", domain.ErrInvalidInput)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	won, err := tx.SetStatusIfProposed(ctx, offerID, domain.TradeAccepted)
	if err != nil {
		return nil, err
	}
	if !won {
		metrics.TradeConflicts.Inc()
		return nil, fmt.Errorf("%w: offer %s", domain.ErrOfferNotPending, offerID)
	}

	// Re-validate at acceptance time: every listed item must still sit
	// with the side that listed it. The transfer itself re-checks the
	// owner row-conditionally, closing the window between read and write.
	for _, dropID := range offer.SenderItems {
		if err := s.transferChecked(ctx, tx, dropID, offer.SenderID, offer.ReceiverID); err != nil {
			metrics.TradeConflicts.Inc()
			return nil, err
		}
	}
	for _, dropID := range offer.ReceiverItems {
		if err := s.transferChecked(ctx, tx, dropID, offer.ReceiverID, offer.SenderID); err != nil {
			metrics.TradeConflicts.Inc()
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	offer.Status = domain.TradeAccepted
	itemsMoved := len(offer.SenderItems) + len(offer.ReceiverItems)
	metrics.TradesResolved.WithLabelValues(string(domain.TradeAccepted)).Inc()
	log.Info("Trade accepted", "offer_id", offerID, "items_moved", itemsMoved)

	s.publishResolved(ctx, offer, itemsMoved)
	return offer, nil
}

// transferChecked moves one drop and translates an ownership mismatch into
// the trade-level conflict error. The enclosing transaction rolls back, which
// also reverts the status flip - the offer stays Proposed.
func (s *service) transferChecked(ctx context.Context, tx repository.TradeTx, dropID, from, to string) error {
	if err := tx.TransferOwnership(ctx, dropID, from, to); err != nil {
		if domain.Kind(err) == domain.KindOwnership {
			return fmt.Errorf("%w: drop %s", domain.ErrTradeInvalid, dropID)
		}
		return err
	}
	// Moving an equipped item must not leave the old owner's slots dangling.
	return tx.ClearEquipReferences(ctx, from, dropID)
}

// Decline moves the offer to its terminal Declined state. No items move.
func (s *service) Decline(ctx context.Context, offerID, callerID string) (*domain.TradeOffer, error) {
	return s.resolveWithoutTransfer(ctx, offerID, callerID, domain.TradeDeclined)
}

// Rescind lets the sender withdraw a still-pending offer. No items move.
func (s *service) Rescind(ctx context.Context, offerID, callerID string) (*domain.TradeOffer, error) {
	return s.resolveWithoutTransfer(ctx, offerID, callerID, domain.TradeRescinded)
}

func (s *service) resolveWithoutTransfer(ctx context.Context, offerID, callerID string, to domain.TradeStatus) (*domain.TradeOffer, error) {
	log := logger.FromContext(ctx)
	log.Info("Resolve called", "offer_id", offerID, "caller_id", callerID, "status", to)

	offer, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	switch to {
	case domain.TradeDeclined:
		if offer.ReceiverID != callerID {
			return nil, fmt.Errorf("%w: only the receiver may decline", domain.ErrInvalidInput)
		}
	case domain.TradeRescinded:
		if offer.SenderID != callerID {
			return nil, fmt.Errorf("%w: only the sender may rescind", domain.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: status %s", domain.ErrInvalidInput, to)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	won, err := tx.SetStatusIfProposed(ctx, offerID, to)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("%w: offer %s", domain.ErrOfferNotPending, offerID)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	offer.Status = to
	metrics.TradesResolved.WithLabelValues(string(to)).Inc()
	log.Info("Trade resolved", "offer_id", offerID, "status", to)

	s.publishResolved(ctx, offer, 0)
	return offer, nil
}

// GetOffer retrieves a trade offer
func (s *service) GetOffer(ctx context.Context, offerID string) (*domain.TradeOffer, error) {
	return s.repo.GetOffer(ctx, offerID)
}

// ListOffersForUser retrieves all offers a user participates in
func (s *service) ListOffersForUser(ctx context.Context, userID string) ([]domain.TradeOffer, error) {
	return s.repo.ListOffersForUser(ctx, userID)
}

func (s *service) publishResolved(ctx context.Context, offer *domain.TradeOffer, itemsMoved int) {
	err := s.bus.Publish(ctx, event.NewTradeResolvedEvent(
		offer.ID, offer.SenderID, offer.ReceiverID, string(offer.Status), itemsMoved))
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to publish trade event", "error", err)
	}
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
