package models

import "fmt"

// ValidationError reports a booking request that can never succeed as given,
// e.g. a window outside the provider's hours or a malformed time range.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// ConflictError reports a slot already taken by another booking. BookingID
// references the blocking booking when known.
type ConflictError struct {
	BookingID string
	Reason    string
}

func (e *ConflictError) Error() string {
	if e.BookingID != "" {
		return fmt.Sprintf("slot conflict with booking %s: %s", e.BookingID, e.Reason)
	}
	return "slot conflict: " + e.Reason
}

// NotFoundError reports a missing booking, provider or payout.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InvalidTransitionError reports an illegal booking status change.
type InvalidTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// TransientProviderError wraps a retryable payment-provider failure (network
// error, rate limit, 5xx).
type TransientProviderError struct {
	Op  string
	Err error
}

func (e *TransientProviderError) Error() string {
	return fmt.Sprintf("transient payment provider failure during %s: %v", e.Op, e.Err)
}

func (e *TransientProviderError) Unwrap() error { return e.Err }

// PermanentProviderError wraps a non-retryable payment-provider failure
// (account or validation error).
type PermanentProviderError struct {
	Op  string
	Err error
}

func (e *PermanentProviderError) Error() string {
	return fmt.Sprintf("permanent payment provider failure during %s: %v", e.Op, e.Err)
}

func (e *PermanentProviderError) Unwrap() error { return e.Err }
