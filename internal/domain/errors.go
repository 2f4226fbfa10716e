package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// User errors
	ErrMsgUserNotFound = "user not found"

	// Catalog errors
	ErrMsgItemNotFound = "item not found"

	// Ledger errors
	ErrMsgDropNotFound    = "drop not found"
	ErrMsgNotOwner        = "drop not owned by caller"
	ErrMsgAlreadyConsumed = "drop already consumed"

	// Trade errors
	ErrMsgOfferNotFound   = "trade offer not found"
	ErrMsgOfferNotPending = "trade offer is no longer pending"
	ErrMsgTradeInvalid    = "trade items changed hands since proposal"

	// Reaction errors
	ErrMsgSelfReaction = "cannot react to own post"

	// Equip errors
	ErrMsgKindMismatch   = "item kind does not fit slot"
	ErrMsgBadgeSlotsFull = "badge slots are full"
	ErrMsgEquipConflict  = "equip slots changed concurrently"

	// Cooldown errors
	ErrMsgOnCooldown = "reward on cooldown"

	// Input errors
	ErrMsgInvalidInput = "invalid input"

	// Post errors
	ErrMsgPostNotFound = "post not found"

	// Database/System errors
	ErrMsgTxClosed = "tx is closed"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// User errors
	ErrUserNotFound = errors.New(ErrMsgUserNotFound)

	// Catalog errors
	ErrItemNotFound = errors.New(ErrMsgItemNotFound)

	// Ledger errors
	ErrDropNotFound    = errors.New(ErrMsgDropNotFound)
	ErrNotOwner        = errors.New(ErrMsgNotOwner)
	ErrAlreadyConsumed = errors.New(ErrMsgAlreadyConsumed)

	// Trade errors
	ErrOfferNotFound   = errors.New(ErrMsgOfferNotFound)
	ErrOfferNotPending = errors.New(ErrMsgOfferNotPending)
	ErrTradeInvalid    = errors.New(ErrMsgTradeInvalid)

	// Reaction errors
	ErrSelfReaction = errors.New(ErrMsgSelfReaction)

	// Equip errors
	ErrKindMismatch   = errors.New(ErrMsgKindMismatch)
	ErrBadgeSlotsFull = errors.New(ErrMsgBadgeSlotsFull)
	ErrEquipConflict  = errors.New(ErrMsgEquipConflict)

	// Cooldown errors
	ErrOnCooldown = errors.New(ErrMsgOnCooldown)

	// Input errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)

	// Post errors
	ErrPostNotFound = errors.New(ErrMsgPostNotFound)
)

// ErrorKind buckets every economy error for the presentation layer.
// Each core operation returns an error classifiable into exactly one kind.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindOwnership     ErrorKind = "ownership"
	KindStateConflict ErrorKind = "state_conflict"
	KindLimit         ErrorKind = "limit"
	KindInternal      ErrorKind = "internal"
)

// Kind classifies an error into its taxonomy bucket. Unrecognized errors are
// treated as internal store failures and must be logged, never swallowed.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrSelfReaction),
		errors.Is(err, ErrKindMismatch),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrPostNotFound),
		errors.Is(err, ErrOfferNotFound):
		return KindValidation
	case errors.Is(err, ErrDropNotFound),
		errors.Is(err, ErrNotOwner),
		errors.Is(err, ErrAlreadyConsumed):
		return KindOwnership
	case errors.Is(err, ErrOfferNotPending),
		errors.Is(err, ErrTradeInvalid),
		errors.Is(err, ErrEquipConflict):
		return KindStateConflict
	case errors.Is(err, ErrOnCooldown),
		errors.Is(err, ErrBadgeSlotsFull):
		return KindLimit
	default:
		return KindInternal
	}
}

// Retryable reports whether the caller may safely retry after refreshing its
// view of current state. Only state conflicts qualify; the core never retries
// on the caller's behalf.
func Retryable(err error) bool {
	return Kind(err) == KindStateConflict
}
