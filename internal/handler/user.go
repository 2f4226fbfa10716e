package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/logger"
	"github.com/mossdale/dropforge/internal/repository"
)

// UserProfileResponse is the economy view of a user: raw experience plus the
// values derived from it on read.
type UserProfileResponse struct {
	*domain.User
	Level          int  `json:"level"`
	CanAttachMedia bool `json:"can_attach_media"`
}

// UpsertUserRequest represents creating or updating a user record
type UpsertUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

// HandleGetUser returns a user's economy profile with derived level fields
func HandleGetUser(userRepo repository.User) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID := chi.URLParam(r, "userID")
		if userID == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingURLParam, "userID"))
			return
		}

		user, err := userRepo.GetUser(r.Context(), userID)
		if err != nil {
			log.Error("Failed to get user", "error", err, "user_id", userID)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, UserProfileResponse{
			User:           user,
			Level:          domain.LevelForExperience(user.Experience),
			CanAttachMedia: domain.CanAttachMedia(user.Experience),
		})
	}
}

// HandleUpsertUser creates or updates a user by username
func HandleUpsertUser(userRepo repository.User) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req UpsertUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode upsert user request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondJSON(w, http.StatusBadRequest, respondValidationError(err))
			return
		}

		user := &domain.User{Username: req.Username}
		if err := userRepo.UpsertUser(r.Context(), user); err != nil {
			log.Error("Failed to upsert user", "error", err, "username", req.Username)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, user)
	}
}
