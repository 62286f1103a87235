package registry

import (
	"go.uber.org/fx"

	"github.com/polkiloo/custodian/internal/config"
)

// Module provides the authorization registry to the fx container.
var Module = fx.Provide(newRegistry)

type registryParams struct {
	fx.In

	Config *config.Config
}

func newRegistry(p registryParams) (*Registry, error) {
	return New(p.Config.AuthorizedUsers, p.Config.RequiredApprovals)
}
