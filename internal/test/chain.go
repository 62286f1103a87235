package test

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainClientStub allows tests to script chain interactions.
type ChainClientStub struct {
	BalanceFn   func(ctx context.Context) (*big.Int, error)
	SendFn      func(ctx context.Context, to common.Address, wei *big.Int) (common.Hash, error)
	WaitMinedFn func(ctx context.Context, hash common.Hash) (*types.Receipt, error)

	mu    sync.Mutex
	Sends []SentTransfer
}

// SentTransfer records a Send invocation.
type SentTransfer struct {
	To  common.Address
	Wei *big.Int
}

// Balance returns the scripted balance or a comfortable default.
func (s *ChainClientStub) Balance(ctx context.Context) (*big.Int, error) {
	if s.BalanceFn != nil {
		return s.BalanceFn(ctx)
	}
	wei, _ := new(big.Int).SetString("1000000000000000000000", 10)
	return wei, nil
}

// Send records the transfer and returns the scripted hash.
func (s *ChainClientStub) Send(ctx context.Context, to common.Address, wei *big.Int) (common.Hash, error) {
	s.mu.Lock()
	s.Sends = append(s.Sends, SentTransfer{To: to, Wei: new(big.Int).Set(wei)})
	s.mu.Unlock()
	if s.SendFn != nil {
		return s.SendFn(ctx, to, wei)
	}
	return common.HexToHash("0xabc123"), nil
}

// WaitMined returns the scripted receipt or a successful default.
func (s *ChainClientStub) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if s.WaitMinedFn != nil {
		return s.WaitMinedFn(ctx, hash)
	}
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(100),
		GasUsed:     21000,
		TxHash:      hash,
	}, nil
}

// SentCount reports how many transfers were dispatched.
func (s *ChainClientStub) SentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sends)
}
