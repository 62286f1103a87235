package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"

	"github.com/polkiloo/custodian/internal/adapter/eth"
	"github.com/polkiloo/custodian/internal/adapter/safe"
	"github.com/polkiloo/custodian/internal/bot"
	"github.com/polkiloo/custodian/internal/bridge"
	"github.com/polkiloo/custodian/internal/config"
	"github.com/polkiloo/custodian/internal/ledger"
	"github.com/polkiloo/custodian/internal/registry"
	"github.com/polkiloo/custodian/internal/server/http/handlers"
	"github.com/polkiloo/custodian/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newFacade,
		newBotAPI,
		newBot,
		newHTTPServer,
		newSafeWatcher,
		newJanitor,
	),
	fx.Provide(func(b *bot.Bot) handlers.DepositNotifier { return b }),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Registry *registry.Registry
	Ledger   *ledger.Ledger
	Bridge   *bridge.Bridge
	Chain    *eth.Client
	Safe     safe.Client
}

func newFacade(p facadeParams) *TreasuryFacade {
	return NewTreasuryFacade(p.Registry, p.Ledger, p.Bridge, p.Chain, p.Safe)
}

func newBotAPI(cfg *config.Config) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(cfg.TelegramBotToken)
}

type botParams struct {
	fx.In

	API    *tgbotapi.BotAPI
	Facade *TreasuryFacade
	Config *config.Config
	Logger *slog.Logger
}

func newBot(p botParams) *bot.Bot {
	return bot.New(p.API, p.Facade, p.Config.ChainID, p.Config.TelegramGroupID, p.Logger)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type watcherParams struct {
	fx.In

	Safe   safe.Client
	Bot    *bot.Bot
	Config *config.Config
	Logger *slog.Logger
}

func newSafeWatcher(p watcherParams) *worker.SafeWatcher {
	return worker.NewSafeWatcher(p.Safe, p.Bot, p.Config.SafePollInterval, p.Logger)
}

type janitorParams struct {
	fx.In

	Ledger *ledger.Ledger
	Config *config.Config
	Logger *slog.Logger
}

func newJanitor(p janitorParams) *worker.Janitor {
	return worker.NewJanitor(p.Ledger, p.Config.PruneInterval, p.Config.RetentionWindow, p.Logger)
}

type lifecycleParams struct {
	fx.In

	// AppCtx outlives the OnStart hook context, which fx cancels as soon
	// as startup completes; the long-running loops must not die with it.
	AppCtx context.Context

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Bot        *bot.Bot
	Watcher    *worker.SafeWatcher
	Janitor    *worker.Janitor
	Chain      *eth.Client
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting custodian",
				slog.String("addr", p.Server.Addr),
				slog.String("wallet", p.Chain.Address().Hex()),
			)
			p.Bot.Start(p.AppCtx)
			if p.Config.SafeAddress != "" {
				p.Watcher.Start(p.AppCtx)
			}
			p.Janitor.Start(p.AppCtx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Janitor.Stop()
			if p.Config.SafeAddress != "" {
				p.Watcher.Stop()
			}
			p.Bot.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Chain.Close()
			p.Logger.Info("custodian stopped")
			return nil
		},
	})
}
