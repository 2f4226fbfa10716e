package handler

import (
	"errors"
	"net/http"

	"github.com/mossdale/dropforge/internal/domain"
)

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants for consistency.
const (
	ErrMsgMethodNotAllowed = "Method not allowed"
	ErrMsgInvalidRequest   = "Invalid request body"
	ErrMsgMissingURLParam  = "Missing %s path parameter"

	// User-facing messages for domain errors
	ErrMsgUserNotFoundError    = "User not found"
	ErrMsgItemNotFoundError    = "Item not found"
	ErrMsgDropNotFoundError    = "That item instance does not exist"
	ErrMsgPostNotFoundError    = "Post not found"
	ErrMsgNotOwnerError        = "You don't own that item"
	ErrMsgAlreadyConsumedError = "That item has already been used"
	ErrMsgOfferNotFoundError   = "Trade offer not found"
	ErrMsgOfferNotPendingError = "That trade offer is no longer open"
	ErrMsgTradeInvalidError    = "Items in this trade changed hands. Review and propose again"
	ErrMsgSelfReactionError    = "You cannot react to your own post"
	ErrMsgKindMismatchError    = "That item does not fit there"
	ErrMsgBadgeSlotsFullError  = "All badge slots are in use. Unequip one first"
	ErrMsgEquipConflictError   = "Your equipment changed while saving. Try again"
	ErrMsgOnCooldownError      = "Reward is on cooldown. Try again later"
	ErrMsgInvalidInputError    = "Invalid request. Please check your inputs"
	ErrMsgGenericServerError   = "Something went wrong"
)

// statusForKind maps taxonomy buckets to HTTP statuses
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindOwnership:
		return http.StatusForbidden
	case domain.KindStateConflict:
		return http.StatusConflict
	case domain.KindLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// userMessageForError picks the user-facing message for a classified error
func userMessageForError(err error, kind domain.ErrorKind) string {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return ErrMsgUserNotFoundError
	case errors.Is(err, domain.ErrItemNotFound):
		return ErrMsgItemNotFoundError
	case errors.Is(err, domain.ErrDropNotFound):
		return ErrMsgDropNotFoundError
	case errors.Is(err, domain.ErrPostNotFound):
		return ErrMsgPostNotFoundError
	case errors.Is(err, domain.ErrNotOwner):
		return ErrMsgNotOwnerError
	case errors.Is(err, domain.ErrAlreadyConsumed):
		return ErrMsgAlreadyConsumedError
	case errors.Is(err, domain.ErrOfferNotFound):
		return ErrMsgOfferNotFoundError
	case errors.Is(err, domain.ErrOfferNotPending):
		return ErrMsgOfferNotPendingError
	case errors.Is(err, domain.ErrTradeInvalid):
		return ErrMsgTradeInvalidError
	case errors.Is(err, domain.ErrSelfReaction):
		return ErrMsgSelfReactionError
	case errors.Is(err, domain.ErrKindMismatch):
		return ErrMsgKindMismatchError
	case errors.Is(err, domain.ErrBadgeSlotsFull):
		return ErrMsgBadgeSlotsFullError
	case errors.Is(err, domain.ErrEquipConflict):
		return ErrMsgEquipConflictError
	case errors.Is(err, domain.ErrOnCooldown):
		return ErrMsgOnCooldownError
	case errors.Is(err, domain.ErrInvalidInput):
		return ErrMsgInvalidInputError
	case kind == domain.KindInternal:
		return ErrMsgGenericServerError
	default:
		return ErrMsgGenericServerError
	}
}
