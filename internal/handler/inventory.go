package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mossdale/dropforge/internal/ledger"
	"github.com/mossdale/dropforge/internal/logger"
)

// HandleGetInventory lists the unconsumed drops a user owns
func HandleGetInventory(ledgerService ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingURLParam, "user_id"))
			return
		}

		drops, err := ledgerService.GetInventory(r.Context(), userID)
		if err != nil {
			log.Error("Failed to get inventory", "error", err, "user_id", userID)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, drops)
	}
}

// HandleGetDrop returns one ledger row
func HandleGetDrop(ledgerService ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		dropID := chi.URLParam(r, "dropID")
		if dropID == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingURLParam, "dropID"))
			return
		}

		d, err := ledgerService.GetDrop(r.Context(), dropID)
		if err != nil {
			log.Error("Failed to get drop", "error", err, "drop_id", dropID)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, d)
	}
}
