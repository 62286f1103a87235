package bridge

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/custodian/internal/adapter/eth"
	"github.com/polkiloo/custodian/internal/ledger"
)

// Module provides the execution bridge to the fx container.
var Module = fx.Provide(newBridge)

type bridgeParams struct {
	fx.In

	Chain  *eth.Client
	Ledger *ledger.Ledger
	Logger *slog.Logger
}

func newBridge(p bridgeParams) *Bridge {
	return New(p.Chain, p.Ledger, p.Logger)
}
