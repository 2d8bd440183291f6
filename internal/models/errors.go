package models

import (
	"errors"
	"fmt"
)

// ErrConflict signals that a group was modified concurrently and the
// optimistic version check failed. Callers may re-read the group and
// retry; it is the only retryable error in the taxonomy.
var ErrConflict = errors.New("group was modified concurrently")

// ValidationError reports invalid input: a non-positive amount, an empty
// member list, a custom split that does not sum to the total.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Msg
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown group, member, or member-in-group
// reference.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NotFound builds a NotFoundError for the given entity kind and ID.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// AlreadyPaidError reports an attempt to record a payment for a member
// whose share is already paid. Recording is not idempotent by design:
// silently double-counting a payment would corrupt the ledger, so the
// second call fails loudly and leaves state unchanged.
type AlreadyPaidError struct {
	GroupID  string
	MemberID string
}

func (e *AlreadyPaidError) Error() string {
	return fmt.Sprintf("member %s has already paid in group %s", e.MemberID, e.GroupID)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAlreadyPaid reports whether err is an AlreadyPaidError.
func IsAlreadyPaid(err error) bool {
	var ap *AlreadyPaidError
	return errors.As(err, &ap)
}
