package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrRaffleNotFound   = fmt.Errorf("raffle %w", ErrNotFound)
	ErrPurchaseNotFound = fmt.Errorf("purchase %w", ErrNotFound)
	ErrNilRaffle        = errors.New("raffle is nil")
	ErrNilPurchase      = errors.New("purchase is nil")
	ErrNilReferral      = errors.New("referral is nil")

	ErrInvalidReferral      = errors.New("invalid referral code")
	ErrReferralNotFound     = fmt.Errorf("%w: code does not exist", ErrInvalidReferral)
	ErrReferralNotYetActive = fmt.Errorf("%w: code is not active yet", ErrInvalidReferral)
	ErrReferralExpired      = fmt.Errorf("%w: code has expired", ErrInvalidReferral)
	ErrReferralExists       = errors.New("referral code already exists")

	ErrDuplicateOperationNumber = errors.New("operation number already registered")
	ErrInsufficientInventory    = errors.New("not enough tickets available")
	ErrValidationFailed         = errors.New("validation failed")
	ErrInvalidTransition        = errors.New("invalid purchase status transition")
	ErrInvalidPurchaseStatus    = errors.New("invalid purchase status")

	ErrTransactionConflict = errors.New("transaction conflict, try again")
	ErrTransactionTimeout  = errors.New("transaction timed out, try again")
	ErrPersistence         = errors.New("persistence failure")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many requests")
)

// FieldError points a failure at the request field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func NewFieldError(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

// Field returns the offending field name carried by err, if any.
func Field(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}

// IsRetryable reports whether the caller may safely resubmit the same request.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransactionConflict) || errors.Is(err, ErrTransactionTimeout)
}
