package eth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/custodian/internal/config"
)

// Module provides the Ethereum client to the fx container.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
}

func newClient(p clientParams) (*Client, error) {
	return Dial(p.Config.RPCURL, p.Config.WalletPrivateKey, p.Config.ChainID)
}
