package ledger

import (
	"go.uber.org/fx"

	"github.com/polkiloo/custodian/internal/registry"
)

// Module provides the withdrawal ledger to the fx container.
var Module = fx.Provide(newLedger)

func newLedger(reg *registry.Registry) *Ledger {
	return New(reg)
}
