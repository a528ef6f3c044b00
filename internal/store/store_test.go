package store

import (
	"errors"
	"testing"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidAmount,
		ErrAccountNotFound,
		ErrDuplicateIdentifier,
		ErrSelfTransfer,
		ErrRecipientNotFound,
		ErrInsufficientFunds,
		ErrConcurrentModification,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}

func TestSystemAccountIdIsReserved(t *testing.T) {
	if SystemAccountID == "" {
		t.Fatal("SystemAccountID must be non-empty")
	}

	// Ensure the interface is non-nil type.
	var _ LedgerStore
}
