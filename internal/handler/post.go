package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mossdale/dropforge/internal/drop"
	"github.com/mossdale/dropforge/internal/logger"
)

// CreatePostRequest represents a post-creation event entering the economy
type CreatePostRequest struct {
	AuthorID string `json:"author_id" validate:"required"`
	ThreadID string `json:"thread_id"`
	Body     string `json:"body" validate:"required"`
}

// HandleCreatePost records a post and runs the reward roll for it
func HandleCreatePost(dropService drop.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode create post request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondJSON(w, http.StatusBadRequest, respondValidationError(err))
			return
		}

		result, err := dropService.CreatePost(r.Context(), req.AuthorID, req.ThreadID, req.Body)
		if err != nil {
			log.Error("Failed to create post", "error", err, "author_id", req.AuthorID)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, result)
	}
}
