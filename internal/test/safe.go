package test

import (
	"context"
	"sync"

	"github.com/polkiloo/custodian/internal/domain/model"
)

// SafeClientStub scripts Safe transaction service responses.
type SafeClientStub struct {
	InfoFn    func(ctx context.Context) (*model.SafeInfo, error)
	PendingFn func(ctx context.Context) ([]model.SafePendingTx, error)
	HistoryFn func(ctx context.Context, limit int) ([]model.SafeTransfer, error)

	mu      sync.Mutex
	Batches [][]model.SafePendingTx
	calls   int
}

// SafeInfo returns the scripted info or a minimal default.
func (s *SafeClientStub) SafeInfo(ctx context.Context) (*model.SafeInfo, error) {
	if s.InfoFn != nil {
		return s.InfoFn(ctx)
	}
	return &model.SafeInfo{Threshold: 2, Owners: []string{"0xaaa", "0xbbb"}}, nil
}

// PendingTransactions serves scripted batches in order, repeating the last.
func (s *SafeClientStub) PendingTransactions(ctx context.Context) ([]model.SafePendingTx, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Batches) == 0 {
		return nil, nil
	}
	idx := s.calls
	if idx >= len(s.Batches) {
		idx = len(s.Batches) - 1
	}
	s.calls++
	return s.Batches[idx], nil
}

// MultisigHistory returns the scripted history.
func (s *SafeClientStub) MultisigHistory(ctx context.Context, limit int) ([]model.SafeTransfer, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, limit)
	}
	return nil, nil
}
