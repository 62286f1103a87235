package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/custodian/internal/adapter/safe"
	"github.com/polkiloo/custodian/internal/bridge"
	domainErrors "github.com/polkiloo/custodian/internal/domain/errors"
	"github.com/polkiloo/custodian/internal/domain/model"
	"github.com/polkiloo/custodian/internal/ledger"
	"github.com/polkiloo/custodian/internal/registry"
)

// ChainWallet is the read side of the hot wallet the facade exposes.
type ChainWallet interface {
	Address() common.Address
	Balance(ctx context.Context) (*big.Int, error)
}

// TreasuryFacade ties the registry, ledger, bridge, and collaborator clients
// together behind the surface the bot drives.
type TreasuryFacade struct {
	registry *registry.Registry
	ledger   *ledger.Ledger
	bridge   *bridge.Bridge
	wallet   ChainWallet
	safe     safe.Client
}

// NewTreasuryFacade constructs TreasuryFacade.
func NewTreasuryFacade(reg *registry.Registry, led *ledger.Ledger, brd *bridge.Bridge, wallet ChainWallet, safeClient safe.Client) *TreasuryFacade {
	return &TreasuryFacade{registry: reg, ledger: led, bridge: brd, wallet: wallet, safe: safeClient}
}

func (f *TreasuryFacade) IsAuthorized(operator int64) bool {
	return f.registry.IsAuthorized(operator)
}

func (f *TreasuryFacade) RequiredApprovals() int {
	return f.registry.RequiredApprovals()
}

func (f *TreasuryFacade) WalletAddress() string {
	return f.wallet.Address().Hex()
}

func (f *TreasuryFacade) WalletBalance(ctx context.Context) (decimal.Decimal, error) {
	wei, err := f.wallet.Balance(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return model.FromWei(wei), nil
}

func (f *TreasuryFacade) CreateWithdrawal(ctx context.Context, operator int64, operatorName, destination, amount string) (*model.WithdrawalRequest, bool, error) {
	return f.ledger.Create(operator, operatorName, destination, amount)
}

func (f *TreasuryFacade) ApproveActive(ctx context.Context, operator int64) (*model.WithdrawalRequest, bool, error) {
	active := f.ledger.Active()
	if active == nil {
		return nil, false, domainErrors.ErrNotFound
	}
	return f.ledger.Approve(active.ID, operator)
}

func (f *TreasuryFacade) RejectActive(ctx context.Context, operator int64) (*model.WithdrawalRequest, error) {
	active := f.ledger.Active()
	if active == nil {
		return nil, domainErrors.ErrNotFound
	}
	return f.ledger.Reject(active.ID, operator)
}

func (f *TreasuryFacade) ActiveWithdrawal() *model.WithdrawalRequest {
	return f.ledger.Active()
}

func (f *TreasuryFacade) Withdrawals(status model.WithdrawalStatus) []*model.WithdrawalRequest {
	return f.ledger.List(status)
}

func (f *TreasuryFacade) DispatchWithdrawal(ctx context.Context, req *model.WithdrawalRequest) (*bridge.Dispatch, error) {
	return f.bridge.Dispatch(ctx, req)
}

func (f *TreasuryFacade) AwaitWithdrawal(ctx context.Context, d *bridge.Dispatch) bridge.Outcome {
	return f.bridge.Await(ctx, d)
}

func (f *TreasuryFacade) SafeOverview(ctx context.Context) (*model.SafeInfo, error) {
	return f.safe.SafeInfo(ctx)
}

func (f *TreasuryFacade) SafeHistory(ctx context.Context, limit int) ([]model.SafeTransfer, error) {
	return f.safe.MultisigHistory(ctx, limit)
}
