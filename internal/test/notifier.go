package test

import (
	"context"
	"sync"

	"github.com/polkiloo/custodian/internal/domain/model"
)

// NotifierStub captures chat notifications for assertions.
type NotifierStub struct {
	Err error

	mu        sync.Mutex
	Messages  []string
	Transfers []model.ChainTransfer
}

// Notify records a plain text notification.
func (s *NotifierStub) Notify(ctx context.Context, text string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, text)
	return nil
}

// NotifyTransfer records a chain transfer notification.
func (s *NotifierStub) NotifyTransfer(ctx context.Context, transfer model.ChainTransfer) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Transfers = append(s.Transfers, transfer)
	return nil
}

// MessageCount returns the number of text notifications seen so far.
func (s *NotifierStub) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Messages)
}

// MessageAt returns the notification at index i.
func (s *NotifierStub) MessageAt(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Messages[i]
}
