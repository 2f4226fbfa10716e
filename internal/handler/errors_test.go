package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mossdale/dropforge/internal/domain"
)

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind domain.ErrorKind
		want int
	}{
		{domain.KindValidation, http.StatusBadRequest},
		{domain.KindOwnership, http.StatusForbidden},
		{domain.KindStateConflict, http.StatusConflict},
		{domain.KindLimit, http.StatusTooManyRequests},
		{domain.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, statusForKind(tt.kind))
		})
	}
}

func TestUserMessageForError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrNotOwner, ErrMsgNotOwnerError},
		{domain.ErrAlreadyConsumed, ErrMsgAlreadyConsumedError},
		{domain.ErrOfferNotPending, ErrMsgOfferNotPendingError},
		{domain.ErrTradeInvalid, ErrMsgTradeInvalidError},
		{domain.ErrSelfReaction, ErrMsgSelfReactionError},
		{domain.ErrBadgeSlotsFull, ErrMsgBadgeSlotsFullError},
		{domain.ErrEquipConflict, ErrMsgEquipConflictError},
		{fmt.Errorf("%w: drop xyz", domain.ErrDropNotFound), ErrMsgDropNotFoundError},
		{errors.New("pq: connection refused"), ErrMsgGenericServerError},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, userMessageForError(tt.err, domain.Kind(tt.err)))
		})
	}
}
