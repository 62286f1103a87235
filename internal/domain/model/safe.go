package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SafeInfo describes the multisig contract as reported by the Safe
// transaction service.
type SafeInfo struct {
	Address   string
	Owners    []string
	Threshold int
	Nonce     int64
}

// SafePendingTx is a multisig transaction still collecting signatures.
type SafePendingTx struct {
	SafeTxHash            string
	To                    string
	Value                 decimal.Decimal
	Confirmations         int
	ConfirmationsRequired int
	ConfirmingOwners      []string
	SubmittedAt           time.Time
	SigningURL            string
}

// Ready reports whether the transaction has collected enough signatures.
func (t SafePendingTx) Ready() bool {
	return t.Confirmations >= t.ConfirmationsRequired
}

// SafeTransfer is an executed multisig transaction.
type SafeTransfer struct {
	TxHash     string
	To         string
	Value      decimal.Decimal
	ExecutedAt time.Time
	Successful bool
}
