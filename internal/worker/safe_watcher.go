package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/polkiloo/custodian/internal/adapter/safe"
	"github.com/polkiloo/custodian/internal/domain/model"
)

// PendingSource lists Safe transactions still collecting signatures.
type PendingSource interface {
	PendingTransactions(ctx context.Context) ([]model.SafePendingTx, error)
}

// Notifier delivers watcher updates to the operators' chat.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// SafeWatcher polls the Safe transaction service and announces signature
// progress. It keeps a snapshot keyed by safeTxHash and diffs each tick, so
// every change is announced exactly once.
type SafeWatcher struct {
	source       PendingSource
	notifier     Notifier
	pollInterval time.Duration
	logger       *slog.Logger

	known  map[string]model.SafePendingTx
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewSafeWatcher constructs the watcher.
func NewSafeWatcher(source PendingSource, notifier Notifier, pollInterval time.Duration, logger *slog.Logger) *SafeWatcher {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &SafeWatcher{
		source:       source,
		notifier:     notifier,
		pollInterval: pollInterval,
		logger:       logger,
		known:        make(map[string]model.SafePendingTx),
	}
}

// Start launches background polling.
func (w *SafeWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.run(runCtx)
}

// Stop halts polling and waits for the loop to finish.
func (w *SafeWatcher) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *SafeWatcher) run(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SafeWatcher) tick(ctx context.Context) {
	current, err := w.source.PendingTransactions(ctx)
	if err != nil {
		var rateLimited safe.RateLimitError
		if errors.As(err, &rateLimited) {
			w.logger.Warn("safe service rate limited", slog.Duration("retry_after", rateLimited.RetryAfter))
			select {
			case <-ctx.Done():
			case <-time.After(rateLimited.RetryAfter):
			}
			return
		}
		w.logger.Error("fetch pending safe transactions failed", slog.String("error", err.Error()))
		return
	}

	next := make(map[string]model.SafePendingTx, len(current))
	for _, tx := range current {
		next[tx.SafeTxHash] = tx

		known, seen := w.known[tx.SafeTxHash]
		switch {
		case !seen:
			w.announce(ctx, formatProposed(tx))
		case tx.Confirmations > known.Confirmations:
			signers := newSigners(known.ConfirmingOwners, tx.ConfirmingOwners)
			if tx.Ready() {
				w.announce(ctx, formatReadyToExecute(tx, signers))
			} else {
				w.announce(ctx, formatNewSignature(tx, signers))
			}
		}
	}
	w.known = next
}

func (w *SafeWatcher) announce(ctx context.Context, text string) {
	if err := w.notifier.Notify(ctx, text); err != nil {
		w.logger.Error("safe watcher notification failed", slog.String("error", err.Error()))
	}
}

func newSigners(before, after []string) []string {
	seen := make(map[string]struct{}, len(before))
	for _, owner := range before {
		seen[owner] = struct{}{}
	}
	var fresh []string
	for _, owner := range after {
		if _, ok := seen[owner]; !ok {
			fresh = append(fresh, owner)
		}
	}
	return fresh
}

func shortOwner(address string) string {
	if len(address) < 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

func ownerList(owners []string) string {
	short := make([]string, 0, len(owners))
	for _, owner := range owners {
		short = append(short, shortOwner(owner))
	}
	return strings.Join(short, ", ")
}

func formatProposed(tx model.SafePendingTx) string {
	return fmt.Sprintf(
		"*New Transaction Proposed*\n\n"+
			"*To:* `%s`\n"+
			"*Amount:* %s ETH\n"+
			"*Signatures:* %d/%d\n"+
			"*Proposed:* %s\n\n"+
			"[Sign this transaction](%s)",
		shortOwner(tx.To), tx.Value, tx.Confirmations, tx.ConfirmationsRequired,
		tx.SubmittedAt.Format("2006-01-02 15:04"), tx.SigningURL,
	)
}

func formatNewSignature(tx model.SafePendingTx, signers []string) string {
	return fmt.Sprintf(
		"*New Signature Added*\n\n"+
			"*To:* `%s`\n"+
			"*Amount:* %s ETH\n"+
			"*Signed by:* %s\n"+
			"*Signatures:* %d/%d\n\n"+
			"[Sign this transaction](%s)",
		shortOwner(tx.To), tx.Value, ownerList(signers),
		tx.Confirmations, tx.ConfirmationsRequired, tx.SigningURL,
	)
}

func formatReadyToExecute(tx model.SafePendingTx, signers []string) string {
	return fmt.Sprintf(
		"*Transaction Ready to Execute*\n\n"+
			"*To:* `%s`\n"+
			"*Amount:* %s ETH\n"+
			"*Signed by:* %s\n"+
			"*Status:* All signatures collected (%d/%d)\n\n"+
			"[Execute transaction](%s)",
		shortOwner(tx.To), tx.Value, ownerList(signers),
		tx.Confirmations, tx.ConfirmationsRequired, tx.SigningURL,
	)
}
