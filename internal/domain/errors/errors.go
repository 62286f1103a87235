package errors

import "errors"

var (
	ErrNotAuthorized     = errors.New("operator not authorized")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrRequestActive     = errors.New("another withdrawal request is active")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyApproved   = errors.New("already approved")
	ErrNotPending        = errors.New("request is not pending")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrChainUnavailable  = errors.New("chain unavailable")
	ErrOutcomeUnknown    = errors.New("transaction outcome unknown")
)
