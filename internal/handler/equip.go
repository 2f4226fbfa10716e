package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/equip"
	"github.com/mossdale/dropforge/internal/logger"
)

// EquipRequest represents an equip or unequip action
type EquipRequest struct {
	UserID string `json:"user_id" validate:"required"`
	DropID string `json:"drop_id" validate:"required"`
}

// HandleEquip places an owned drop into its presentation slot
func HandleEquip(equipService equip.Service) http.HandlerFunc {
	return equipAction(equipService.Equip)
}

// HandleUnequip clears the slot referencing a drop
func HandleUnequip(equipService equip.Service) http.HandlerFunc {
	return equipAction(equipService.Unequip)
}

// HandleGetEquipped returns the user's current slot selection
func HandleGetEquipped(equipService equip.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingURLParam, "user_id"))
			return
		}

		slots, err := equipService.GetEquipped(r.Context(), userID)
		if err != nil {
			log.Error("Failed to get equipped items", "error", err, "user_id", userID)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, slots)
	}
}

func equipAction(fn func(ctx context.Context, userID, dropID string) (*domain.EquipSlots, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req EquipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode equip request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondJSON(w, http.StatusBadRequest, respondValidationError(err))
			return
		}

		slots, err := fn(r.Context(), req.UserID, req.DropID)
		if err != nil {
			log.Error("Failed to change equip slots", "error", err, "drop_id", req.DropID)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, slots)
	}
}
