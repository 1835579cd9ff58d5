package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknown           = errors.New("unknown error")

	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrAlreadyAssigned        = errors.New("already assigned")
	ErrForbidden              = errors.New("forbidden")
	ErrMixedShopItems         = errors.New("order items belong to different shops")
	ErrEmptyOrder             = errors.New("order has no items")

	ErrUpstreamUnavailable   = errors.New("upstream unavailable")
	ErrNoMatchingTransaction = errors.New("no matching transaction")
)

// StateTransitionError уточняет ErrInvalidStateTransition недопустимой парой статусов.
// errors.Is(err, ErrInvalidStateTransition) для нее истинен.
type StateTransitionError struct {
	From string
	To   string
}

func NewStateTransitionError(from, to string) error {
	return &StateTransitionError{From: from, To: to}
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("transition from %q to %q is not allowed", e.From, e.To)
}

func (e *StateTransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}
