package auth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/custodian/internal/config"
)

// Module provides webhook authentication primitives via fx.
var Module = fx.Provide(newVerifier)

type verifierParams struct {
	fx.In

	Config *config.Config
}

func newVerifier(p verifierParams) *HMACVerifier {
	return NewHMACVerifier(p.Config.AlchemySigningKey)
}
