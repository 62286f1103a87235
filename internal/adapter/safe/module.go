package safe

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/custodian/internal/config"
)

// Module provides the Safe transaction service client via fx.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	if p.Config.SafeAddress == "" {
		return NewDisabled(), nil
	}
	return NewHTTPClient(p.Config.ChainID, p.Config.SafeAddress, p.Config.SafeAPIKey, p.Logger)
}
