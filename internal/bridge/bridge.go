package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	domainErrors "github.com/polkiloo/custodian/internal/domain/errors"
	"github.com/polkiloo/custodian/internal/domain/model"
)

// ChainClient is the subset of chain operations the bridge needs.
type ChainClient interface {
	Balance(ctx context.Context) (*big.Int, error)
	Send(ctx context.Context, to common.Address, wei *big.Int) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// RequestStore is the slice of the ledger the bridge reconciles against.
type RequestStore interface {
	BeginDispatch(id string) error
	ReleaseDispatch(id string)
	Abort(id string)
	MarkExecuted(id string)
	SetTxHash(id, hash string)
}

// OutcomeStatus classifies the final word on a dispatched transfer.
type OutcomeStatus string

const (
	// OutcomeConfirmed: mined and succeeded.
	OutcomeConfirmed OutcomeStatus = "confirmed"
	// OutcomeReverted: mined but the transaction failed. Funds did not
	// move; the request is still terminal and the slot is released.
	OutcomeReverted OutcomeStatus = "reverted"
	// OutcomeUnknown: the confirmation wait failed. The request stays
	// approved and must be reconciled manually.
	OutcomeUnknown OutcomeStatus = "unknown"
)

// Dispatch is a transfer that has been irreversibly submitted to the chain.
type Dispatch struct {
	RequestID string
	TxHash    common.Hash
	To        common.Address
	Amount    string
}

// Outcome is the observed result of a dispatched transfer.
type Outcome struct {
	Status      OutcomeStatus
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
}

// Bridge turns an approved withdrawal into an on-chain transfer and reports
// the result back to the ledger. It never retries: every failure is surfaced
// so an operator can re-initiate.
type Bridge struct {
	chain  ChainClient
	store  RequestStore
	logger *slog.Logger
}

// New constructs the execution bridge.
func New(chain ChainClient, store RequestStore, logger *slog.Logger) *Bridge {
	return &Bridge{chain: chain, store: store, logger: logger}
}

// Dispatch claims the request, re-checks the on-chain balance, and submits
// the transfer, returning the transaction handle as soon as it exists. The
// claim commits against the ledger lock, so a veto that landed first makes
// the claim fail and nothing is sent. Any failure before a handle is
// obtained rolls the request back to rejected, releasing the active slot.
// The caller is expected to report the handle immediately and only then
// block on Await.
func (b *Bridge) Dispatch(ctx context.Context, req *model.WithdrawalRequest) (*Dispatch, error) {
	if err := b.store.BeginDispatch(req.ID); err != nil {
		return nil, fmt.Errorf("claim for dispatch: %w", err)
	}

	wei := model.ToWei(req.Amount)

	balance, err := b.chain.Balance(ctx)
	if err != nil {
		b.store.Abort(req.ID)
		return nil, fmt.Errorf("%w: balance check: %v", domainErrors.ErrChainUnavailable, err)
	}
	if balance.Cmp(wei) < 0 {
		b.store.Abort(req.ID)
		return nil, fmt.Errorf("%w: have %s ETH, need %s ETH",
			domainErrors.ErrInsufficientFunds, model.FromWei(balance), req.Amount)
	}

	hash, err := b.chain.Send(ctx, common.HexToAddress(req.Destination), wei)
	if err != nil {
		b.store.Abort(req.ID)
		return nil, fmt.Errorf("%w: send: %v", domainErrors.ErrChainUnavailable, err)
	}

	b.store.SetTxHash(req.ID, hash.Hex())
	b.logger.Info("withdrawal dispatched",
		slog.String("request", req.ID),
		slog.String("tx", hash.Hex()),
		slog.String("amount", req.Amount.String()),
	)

	return &Dispatch{
		RequestID: req.ID,
		TxHash:    hash,
		To:        common.HexToAddress(req.Destination),
		Amount:    req.Amount.String(),
	}, nil
}

// Await blocks until the dispatched transfer is mined and reconciles the
// ledger. Confirmed and reverted outcomes are both terminal and mark the
// request executed. A failed wait yields OutcomeUnknown: the request is left
// approved with the claim released, and the active slot stays occupied
// until an operator resolves it with a veto after checking the chain.
func (b *Bridge) Await(ctx context.Context, d *Dispatch) Outcome {
	receipt, err := b.chain.WaitMined(ctx, d.TxHash)
	if err != nil {
		b.store.ReleaseDispatch(d.RequestID)
		b.logger.Warn("confirmation wait failed, outcome unknown",
			slog.String("request", d.RequestID),
			slog.String("tx", d.TxHash.Hex()),
			slog.String("error", err.Error()),
		)
		return Outcome{Status: OutcomeUnknown, TxHash: d.TxHash}
	}

	b.store.MarkExecuted(d.RequestID)

	status := OutcomeConfirmed
	if receipt.Status != types.ReceiptStatusSuccessful {
		status = OutcomeReverted
	}
	b.logger.Info("withdrawal finalized",
		slog.String("request", d.RequestID),
		slog.String("tx", d.TxHash.Hex()),
		slog.String("outcome", string(status)),
	)

	return Outcome{
		Status:      status,
		TxHash:      d.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}
}
