package router

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/custodian/internal/config"
	"github.com/polkiloo/custodian/internal/server/http/handlers"
)

// Module registers HTTP handler and router construction for fx runtime.
var Module = fx.Options(
	fx.Provide(newWebhookHandler),
	fx.Provide(Setup),
)

type handlerParams struct {
	fx.In

	Notifier handlers.DepositNotifier
	Config   *config.Config
	Logger   *slog.Logger
}

func newWebhookHandler(p handlerParams) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(p.Notifier, p.Config.SafeAddress, p.Logger)
}
