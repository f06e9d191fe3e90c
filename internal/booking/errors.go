package booking

import (
    "errors"
    "fmt"
)

var (
    // ErrNoBenefit is returned when the membership toggle is used on a
    // service the patient holds no available credit for.
    ErrNoBenefit = errors.New("service has no membership benefit available")
    // ErrNotSelected is returned when toggling membership on a service
    // that is not part of the selection.
    ErrNotSelected = errors.New("service is not selected")
    // ErrMultipleActiveSubscriptions is returned when a patient has more
    // than one active subscription.  There is no rule to pick one.
    ErrMultipleActiveSubscriptions = errors.New("patient has more than one active subscription")
    // ErrSubmissionInProgress guards against a second submit while one is
    // still running for the same patient.
    ErrSubmissionInProgress = errors.New("a submission is already in progress")
    // ErrNoPendingPayment is returned when no payment intent exists for
    // the appointment, either because it was never created or because it
    // was already settled.
    ErrNoPendingPayment = errors.New("no pending payment for this appointment")
    // ErrSettlementInProgress guards against a double tap on a settlement.
    ErrSettlementInProgress = errors.New("a payment for this appointment is already being processed")
    // ErrInvalidMethod is returned for a payment method that does not fit
    // the pending amount.
    ErrInvalidMethod = errors.New("payment method not allowed for this appointment")
    // ErrCardTokenRequired is returned when a card settlement arrives
    // without the widget token.
    ErrCardTokenRequired = errors.New("card token is required")
)

// ValidationError is a precondition failure detected before any backend
// call.  Message is safe to show to the patient.
type ValidationError struct {
    Field   string
    Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) *ValidationError {
    return &ValidationError{Field: field, Message: msg}
}

// PartialError reports that the appointment exists on the backend but
// detail creation stopped after Created of Expected details.  Nothing is
// rolled back.
type PartialError struct {
    CitaID   int64
    Created  int
    Expected int
    Err      error
}

func (e *PartialError) Error() string {
    return fmt.Sprintf("cita %d left with %d of %d details: %v", e.CitaID, e.Created, e.Expected, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

// SettlementError wraps a failed settlement call.  The payment intent is
// kept so the same method (or another one) can be retried.
type SettlementError struct {
    CitaID int64
    Method string
    Err    error
}

func (e *SettlementError) Error() string {
    return fmt.Sprintf("settle cita %d via %s: %v", e.CitaID, e.Method, e.Err)
}

func (e *SettlementError) Unwrap() error { return e.Err }
