package payments

import "errors"

var (
	// ErrUnsupportedMethod is returned when a payment method is not
	// recognized after alias normalization.
	ErrUnsupportedMethod = errors.New("unsupported payment method")

	// ErrInvalidTransition is returned for an illegal payment status move,
	// e.g. out of a terminal state.
	ErrInvalidTransition = errors.New("invalid payment status transition")

	// ErrAlreadyProcessed marks an idempotent re-delivery of a status the
	// payment already holds. Callers acknowledge it as a success no-op.
	ErrAlreadyProcessed = errors.New("payment already processed")

	// ErrUnknownStatus is returned for a webhook status outside the
	// success/failed/pending_review set.
	ErrUnknownStatus = errors.New("unknown payment status")
)
