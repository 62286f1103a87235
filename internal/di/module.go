package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/custodian/internal/adapter/eth"
	"github.com/polkiloo/custodian/internal/adapter/safe"
	"github.com/polkiloo/custodian/internal/app"
	"github.com/polkiloo/custodian/internal/bridge"
	"github.com/polkiloo/custodian/internal/config"
	"github.com/polkiloo/custodian/internal/ledger"
	"github.com/polkiloo/custodian/internal/logger"
	"github.com/polkiloo/custodian/internal/pkg/auth"
	"github.com/polkiloo/custodian/internal/registry"
	"github.com/polkiloo/custodian/internal/server/http/router"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		registry.Module,
		ledger.Module,
		eth.Module,
		safe.Module,
		bridge.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
