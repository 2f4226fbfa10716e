package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mossdale/dropforge/internal/ledger"
	"github.com/mossdale/dropforge/internal/logger"
)

// GiftRequest represents a direct one-way transfer of an owned drop
type GiftRequest struct {
	FromID string `json:"from_id" validate:"required"`
	ToID   string `json:"to_id" validate:"required,nefield=FromID"`
	DropID string `json:"drop_id" validate:"required"`
}

// HandleGift transfers a drop directly between users
func HandleGift(ledgerService ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req GiftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode gift request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondJSON(w, http.StatusBadRequest, respondValidationError(err))
			return
		}

		d, err := ledgerService.Gift(r.Context(), req.FromID, req.ToID, req.DropID)
		if err != nil {
			log.Error("Failed to gift drop", "error", err, "drop_id", req.DropID)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, d)
	}
}
