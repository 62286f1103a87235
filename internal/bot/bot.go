package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/custodian/internal/adapter/eth"
	"github.com/polkiloo/custodian/internal/bridge"
	"github.com/polkiloo/custodian/internal/domain/model"
)

// Facade exposes the subset of application functionality the command
// surface drives.
type Facade interface {
	IsAuthorized(operator int64) bool
	RequiredApprovals() int
	WalletAddress() string
	WalletBalance(ctx context.Context) (decimal.Decimal, error)
	CreateWithdrawal(ctx context.Context, operator int64, operatorName, destination, amount string) (*model.WithdrawalRequest, bool, error)
	ApproveActive(ctx context.Context, operator int64) (*model.WithdrawalRequest, bool, error)
	RejectActive(ctx context.Context, operator int64) (*model.WithdrawalRequest, error)
	ActiveWithdrawal() *model.WithdrawalRequest
	Withdrawals(status model.WithdrawalStatus) []*model.WithdrawalRequest
	DispatchWithdrawal(ctx context.Context, req *model.WithdrawalRequest) (*bridge.Dispatch, error)
	AwaitWithdrawal(ctx context.Context, d *bridge.Dispatch) bridge.Outcome
	SafeOverview(ctx context.Context) (*model.SafeInfo, error)
	SafeHistory(ctx context.Context, limit int) ([]model.SafeTransfer, error)
}

type command struct {
	chatID   int64
	userID   int64
	userName string
	name     string
	args     []string
}

type replyFunc func(text string)

type handlerFunc func(ctx context.Context, cmd command, reply replyFunc)

// Bot is the Telegram command surface. Each update is handled on its own
// goroutine so status queries never wait behind a confirmation wait.
type Bot struct {
	api      *tgbotapi.BotAPI
	facade   Facade
	chainID  int64
	groupID  int64
	logger   *slog.Logger
	handlers map[string]handlerFunc
	wg       sync.WaitGroup
}

// New constructs the bot and wires its command table. Privileged commands
// sit behind the requireOperator guard.
func New(api *tgbotapi.BotAPI, facade Facade, chainID, groupID int64, logger *slog.Logger) *Bot {
	b := &Bot{
		api:     api,
		facade:  facade,
		chainID: chainID,
		groupID: groupID,
		logger:  logger,
	}
	b.handlers = map[string]handlerFunc{
		"start":    b.handleStart,
		"whoami":   b.handleWhoami,
		"balance":  b.requireOperator(b.handleBalance),
		"withdraw": b.requireOperator(b.handleWithdraw),
		"approve":  b.requireOperator(b.handleApprove),
		"reject":   b.requireOperator(b.handleReject),
		"pending":  b.requireOperator(b.handlePending),
		"requests": b.requireOperator(b.handleRequests),
		"history":  b.requireOperator(b.handleHistory),
		"safeinfo": b.requireOperator(b.handleSafeInfo),
	}
	return b
}

// Start begins long polling for updates.
func (b *Bot) Start(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	b.wg.Add(1)
	go b.loop(ctx, updates)
}

// Stop halts polling and waits for in-flight handlers.
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
	b.wg.Wait()
}

func (b *Bot) loop(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			if msg == nil || msg.From == nil || !msg.IsCommand() {
				continue
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleMessage(ctx, msg)
			}()
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	cmd := command{
		chatID:   msg.Chat.ID,
		userID:   msg.From.ID,
		userName: displayName(msg.From),
		name:     msg.Command(),
		args:     strings.Fields(msg.CommandArguments()),
	}

	handler, ok := b.handlers[cmd.name]
	if !ok {
		return
	}
	handler(ctx, cmd, func(text string) { b.send(cmd.chatID, text) })
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send telegram message failed",
			slog.Int64("chat", chatID),
			slog.String("error", err.Error()),
		)
	}
}

// Notify sends a message to the configured operators group. A missing group
// configuration silently drops notifications.
func (b *Bot) Notify(ctx context.Context, text string) error {
	if b.groupID == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(b.groupID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

// NotifyTransfer reports an on-chain deposit or outflow to the group.
func (b *Bot) NotifyTransfer(ctx context.Context, transfer model.ChainTransfer) error {
	return b.Notify(ctx, formatTransfer(transfer, eth.ExplorerTxURL(b.chainID, transfer.TxHash)))
}

func displayName(user *tgbotapi.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	if user.UserName != "" {
		return user.UserName
	}
	return "Unknown"
}
