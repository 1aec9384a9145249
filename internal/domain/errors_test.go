package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{ErrAccountNotFound, KindNotFound},
		{fmt.Errorf("load: %w", ErrCardNotFound), KindNotFound},
		{ErrSameAccount, KindInvalidAccount},
		{ErrAccountInactive, KindInvalidAccount},
		{ErrAccountMissing, KindInvalidAccount},
		{ErrCardNotTopUpCapable, KindInvalidCardType},
		{&TransitionError{Entity: "rendicion", From: "ABIERTA", To: "APROBADA"}, KindInvalidTransition},
		{ErrOpenReconciliationExists, KindConflictingReconciliation},
		{NewValidationError("amount", "must be positive"), KindValidation},
		{ErrMissingActor, KindUnauthenticated},
		{ErrExpiredToken, KindUnauthenticated},
		{errors.New("connection reset"), KindInternal},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestAccountMissingWrapsNotFound(t *testing.T) {
	if !errors.Is(ErrAccountMissing, ErrAccountNotFound) {
		t.Fatal("expected ErrAccountMissing to wrap ErrAccountNotFound")
	}
}

func TestErrorMessages(t *testing.T) {
	if ErrAccountNotFound.Error() != "account not found" {
		t.Errorf("unexpected message %q", ErrAccountNotFound.Error())
	}

	err := &TransitionError{Entity: "movement", From: "VOIDED", To: "VOIDED"}
	if err.Error() != "invalid state transition: movement cannot move from VOIDED to VOIDED" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
