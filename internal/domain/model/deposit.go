package model

import "github.com/shopspring/decimal"

// TransferDirection distinguishes deposits from executed outflows.
type TransferDirection string

const (
	TransferIncoming TransferDirection = "incoming"
	TransferOutgoing TransferDirection = "outgoing"
)

// ChainTransfer is an on-chain ETH movement touching the watched wallet,
// delivered through the deposit notification webhook.
type ChainTransfer struct {
	Direction    TransferDirection
	Counterparty string
	TxHash       string
	Value        decimal.Decimal
}
