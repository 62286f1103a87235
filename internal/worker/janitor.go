package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pruner removes aged terminal withdrawals from the ledger.
type Pruner interface {
	Prune(maxAge time.Duration) int
}

// Janitor periodically garbage-collects finished withdrawal requests older
// than the retention window. Pending and approved requests are never pruned
// by the ledger, so the janitor can run unconditionally.
type Janitor struct {
	pruner    Pruner
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewJanitor constructs the janitor.
func NewJanitor(pruner Pruner, interval, retention time.Duration, logger *slog.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &Janitor{pruner: pruner, interval: interval, retention: retention, logger: logger}
}

// Start launches the background sweep loop.
func (j *Janitor) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel

	j.wg.Add(1)
	go j.run(runCtx)
}

// Stop halts sweeping and waits for the loop to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}
	j.mu.Unlock()

	j.wg.Wait()
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := j.pruner.Prune(j.retention); removed > 0 {
				j.logger.Info("pruned finished withdrawals", slog.Int("count", removed))
			}
		}
	}
}
