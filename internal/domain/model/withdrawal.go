package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus describes the request lifecycle.
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
	WithdrawalStatusExecuted WithdrawalStatus = "executed"
)

// Terminal reports whether the status admits no further transitions.
func (s WithdrawalStatus) Terminal() bool {
	return s == WithdrawalStatusRejected || s == WithdrawalStatusExecuted
}

// WithdrawalRequest is a proposed transfer from the shared wallet awaiting
// quorum of operator approvals.
type WithdrawalRequest struct {
	ID              string
	RequestedBy     int64
	RequestedByName string
	Destination     string
	Amount          decimal.Decimal
	Approvals       map[int64]struct{}
	Status          WithdrawalStatus
	TxHash          string
	CreatedAt       time.Time
}

// ApprovedBy reports whether the operator is among the approvers.
func (w *WithdrawalRequest) ApprovedBy(operator int64) bool {
	_, ok := w.Approvals[operator]
	return ok
}

// Clone returns a deep copy safe to hand out beyond the ledger's lock.
func (w *WithdrawalRequest) Clone() *WithdrawalRequest {
	cp := *w
	cp.Approvals = make(map[int64]struct{}, len(w.Approvals))
	for id := range w.Approvals {
		cp.Approvals[id] = struct{}{}
	}
	return &cp
}
