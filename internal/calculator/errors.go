package calculator

import "errors"

// Validation errors returned by the split calculator and the balance aggregator.
// They are always wrapped with context; match them with errors.Is.
var (
	ErrInvalidAmount    = errors.New("amount must be a positive finite number")
	ErrInvalidMembers   = errors.New("members involved must be a non-empty list of distinct members")
	ErrInvalidPolicy    = errors.New(`split policy must be "equal" or "custom"`)
	ErrSplitMismatch    = errors.New("custom splits must list every involved member exactly once")
	ErrSplitSumMismatch = errors.New("custom split amounts must equal the expense amount")
	ErrMalformedExpense = errors.New("malformed expense")
)
