package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/logger"
	"github.com/mossdale/dropforge/internal/trade"
)

// TradeHandler groups the trade offer endpoints
type TradeHandler struct {
	service trade.Service
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(service trade.Service) *TradeHandler {
	return &TradeHandler{service: service}
}

// ProposeTradeRequest represents a new trade offer
type ProposeTradeRequest struct {
	SenderID      string   `json:"sender_id" validate:"required"`
	ReceiverID    string   `json:"receiver_id" validate:"required,nefield=SenderID"`
	SenderItems   []string `json:"sender_items"`
	ReceiverItems []string `json:"receiver_items"`
	Note          string   `json:"note" validate:"max=500"`
}

// ResolveTradeRequest identifies the caller resolving an offer
type ResolveTradeRequest struct {
	CallerID string `json:"caller_id" validate:"required"`
}

// HandlePropose creates a new trade offer
func (h *TradeHandler) HandlePropose(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req ProposeTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("Failed to decode propose request", "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return
	}
	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, respondValidationError(err))
		return
	}

	offer, err := h.service.Propose(r.Context(), req.SenderID, req.ReceiverID,
		req.SenderItems, req.ReceiverItems, req.Note)
	if err != nil {
		log.Error("Failed to propose trade", "error", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, offer)
}

// HandleAccept resolves an offer by swapping the listed items
func (h *TradeHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.service.Accept)
}

// HandleDecline resolves an offer without moving items
func (h *TradeHandler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.service.Decline)
}

// HandleRescind withdraws a pending offer
func (h *TradeHandler) HandleRescind(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.service.Rescind)
}

// HandleGetOffer returns one trade offer
func (h *TradeHandler) HandleGetOffer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	offerID := chi.URLParam(r, "offerID")
	if offerID == "" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingURLParam, "offerID"))
		return
	}

	offer, err := h.service.GetOffer(r.Context(), offerID)
	if err != nil {
		log.Error("Failed to get trade offer", "error", err, "offer_id", offerID)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, offer)
}

// HandleListOffers lists every offer a user participates in
func (h *TradeHandler) HandleListOffers(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingURLParam, "user_id"))
		return
	}

	offers, err := h.service.ListOffersForUser(r.Context(), userID)
	if err != nil {
		log.Error("Failed to list trade offers", "error", err, "user_id", userID)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, offers)
}

func (h *TradeHandler) resolve(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, offerID, callerID string) (*domain.TradeOffer, error)) {
	log := logger.FromContext(r.Context())

	offerID := chi.URLParam(r, "offerID")
	if offerID == "" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingURLParam, "offerID"))
		return
	}

	var req ResolveTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("Failed to decode resolve request", "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return
	}
	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, respondValidationError(err))
		return
	}

	offer, err := fn(r.Context(), offerID, req.CallerID)
	if err != nil {
		log.Error("Failed to resolve trade", "error", err, "offer_id", offerID)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, offer)
}
