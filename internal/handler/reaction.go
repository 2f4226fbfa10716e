package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mossdale/dropforge/internal/logger"
	"github.com/mossdale/dropforge/internal/reaction"
)

// ApplyReactionRequest represents consuming a reaction drop against a post
type ApplyReactionRequest struct {
	ActorID string `json:"actor_id" validate:"required"`
	DropID  string `json:"drop_id" validate:"required"`
	PostID  string `json:"post_id" validate:"required"`
}

// HandleApplyReaction consumes a reaction drop against a post
func HandleApplyReaction(reactionService reaction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req ApplyReactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode reaction request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondJSON(w, http.StatusBadRequest, respondValidationError(err))
			return
		}

		result, err := reactionService.Apply(r.Context(), req.ActorID, req.DropID, req.PostID)
		if err != nil {
			log.Error("Failed to apply reaction", "error", err, "drop_id", req.DropID)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}
