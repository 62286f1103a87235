package test

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/custodian/internal/bridge"
	"github.com/polkiloo/custodian/internal/domain/model"
)

// FacadeStub scripts the application facade for command handler tests.
type FacadeStub struct {
	Operators map[int64]struct{}
	Required  int
	Address   string

	BalanceFn  func(ctx context.Context) (decimal.Decimal, error)
	CreateFn   func(ctx context.Context, operator int64, operatorName, destination, amount string) (*model.WithdrawalRequest, bool, error)
	ApproveFn  func(ctx context.Context, operator int64) (*model.WithdrawalRequest, bool, error)
	RejectFn   func(ctx context.Context, operator int64) (*model.WithdrawalRequest, error)
	ActiveFn   func() *model.WithdrawalRequest
	ListFn     func(status model.WithdrawalStatus) []*model.WithdrawalRequest
	DispatchFn func(ctx context.Context, req *model.WithdrawalRequest) (*bridge.Dispatch, error)
	AwaitFn    func(ctx context.Context, d *bridge.Dispatch) bridge.Outcome
	OverviewFn func(ctx context.Context) (*model.SafeInfo, error)
	HistoryFn  func(ctx context.Context, limit int) ([]model.SafeTransfer, error)
}

func (s *FacadeStub) IsAuthorized(operator int64) bool {
	_, ok := s.Operators[operator]
	return ok
}

func (s *FacadeStub) RequiredApprovals() int {
	if s.Required == 0 {
		return 2
	}
	return s.Required
}

func (s *FacadeStub) WalletAddress() string {
	return s.Address
}

func (s *FacadeStub) WalletBalance(ctx context.Context) (decimal.Decimal, error) {
	if s.BalanceFn != nil {
		return s.BalanceFn(ctx)
	}
	return decimal.NewFromInt(10), nil
}

func (s *FacadeStub) CreateWithdrawal(ctx context.Context, operator int64, operatorName, destination, amount string) (*model.WithdrawalRequest, bool, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, operator, operatorName, destination, amount)
	}
	return nil, false, nil
}

func (s *FacadeStub) ApproveActive(ctx context.Context, operator int64) (*model.WithdrawalRequest, bool, error) {
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, operator)
	}
	return nil, false, nil
}

func (s *FacadeStub) RejectActive(ctx context.Context, operator int64) (*model.WithdrawalRequest, error) {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, operator)
	}
	return nil, nil
}

func (s *FacadeStub) ActiveWithdrawal() *model.WithdrawalRequest {
	if s.ActiveFn != nil {
		return s.ActiveFn()
	}
	return nil
}

func (s *FacadeStub) Withdrawals(status model.WithdrawalStatus) []*model.WithdrawalRequest {
	if s.ListFn != nil {
		return s.ListFn(status)
	}
	return nil
}

func (s *FacadeStub) DispatchWithdrawal(ctx context.Context, req *model.WithdrawalRequest) (*bridge.Dispatch, error) {
	if s.DispatchFn != nil {
		return s.DispatchFn(ctx, req)
	}
	return &bridge.Dispatch{RequestID: req.ID}, nil
}

func (s *FacadeStub) AwaitWithdrawal(ctx context.Context, d *bridge.Dispatch) bridge.Outcome {
	if s.AwaitFn != nil {
		return s.AwaitFn(ctx, d)
	}
	return bridge.Outcome{Status: bridge.OutcomeConfirmed}
}

func (s *FacadeStub) SafeOverview(ctx context.Context) (*model.SafeInfo, error) {
	if s.OverviewFn != nil {
		return s.OverviewFn(ctx)
	}
	return &model.SafeInfo{Threshold: 2, Owners: []string{"0xaaa"}}, nil
}

func (s *FacadeStub) SafeHistory(ctx context.Context, limit int) ([]model.SafeTransfer, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, limit)
	}
	return nil, nil
}
