package booking

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a reservation did not commit.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindConflict    ErrorKind = "conflict"
	KindPayment     ErrorKind = "payment"
	KindPersistence ErrorKind = "persistence"
	KindLockStore   ErrorKind = "lock_store"
)

var (
	ErrSlotUnavailable = errors.New("slot no longer available")
	ErrLockContended   = errors.New("unable to lock, retry")
)

// BookingError is returned by every operation on the reservation path.
type BookingError struct {
	Kind   ErrorKind
	Stage  State
	Reason string
	Err    error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func newBookingError(kind ErrorKind, stage State, reason string, err error) *BookingError {
	return &BookingError{Kind: kind, Stage: stage, Reason: reason, Err: err}
}

func validationError(reason string) error {
	return newBookingError(KindValidation, StateStart, reason, nil)
}

// KindOf returns the kind of a BookingError in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}
