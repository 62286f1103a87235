package bot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/polkiloo/custodian/internal/adapter/eth"
	"github.com/polkiloo/custodian/internal/adapter/safe"
	"github.com/polkiloo/custodian/internal/bridge"
	domainErrors "github.com/polkiloo/custodian/internal/domain/errors"
	"github.com/polkiloo/custodian/internal/domain/model"
)

const defaultHistoryLimit = 5

// requireOperator composes an authorization guard before privileged
// handlers. Denials reveal nothing beyond the fact of the denial.
func (b *Bot) requireOperator(next handlerFunc) handlerFunc {
	return func(ctx context.Context, cmd command, reply replyFunc) {
		if !b.facade.IsAuthorized(cmd.userID) {
			reply("You are not authorized to use this bot.")
			return
		}
		next(ctx, cmd, reply)
	}
}

func (b *Bot) handleStart(ctx context.Context, cmd command, reply replyFunc) {
	reply(formatWelcome(b.facade.WalletAddress(), cmd.userID, b.facade.IsAuthorized(cmd.userID)))
}

func (b *Bot) handleWhoami(ctx context.Context, cmd command, reply replyFunc) {
	reply(formatWhoami(cmd.userID, cmd.userName))
}

func (b *Bot) handleBalance(ctx context.Context, cmd command, reply replyFunc) {
	balance, err := b.facade.WalletBalance(ctx)
	if err != nil {
		b.logger.Error("balance fetch failed", slog.String("error", err.Error()))
		reply("Could not reach the chain to fetch the balance. Please try again.")
		return
	}
	reply(formatBalance(balance, b.facade.WalletAddress()))
}

func (b *Bot) handleWithdraw(ctx context.Context, cmd command, reply replyFunc) {
	if len(cmd.args) < 2 {
		reply(formatWithdrawUsage())
		return
	}
	amount, destination := cmd.args[0], cmd.args[1]

	req, quorumReached, err := b.facade.CreateWithdrawal(ctx, cmd.userID, cmd.userName, destination, amount)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidAmount):
			reply("Invalid amount. Please enter a positive number of ETH, e.g. `0.5`.")
		case errors.Is(err, domainErrors.ErrInvalidAddress):
			reply("Invalid Ethereum address format.")
		case errors.Is(err, domainErrors.ErrRequestActive):
			reply(formatAlreadyActive(b.facade.ActiveWithdrawal(), b.facade.RequiredApprovals()))
		default:
			b.logger.Error("create withdrawal failed", slog.String("error", err.Error()))
			reply("Could not create the withdrawal request. Please try again.")
		}
		return
	}

	reply(formatNewRequest(req, b.facade.RequiredApprovals()))

	if quorumReached {
		b.execute(ctx, req, reply)
	}
}

func (b *Bot) handleApprove(ctx context.Context, cmd command, reply replyFunc) {
	active := b.facade.ActiveWithdrawal()
	if active == nil {
		reply("No pending withdrawal to approve.")
		return
	}

	req, quorumReached, err := b.facade.ApproveActive(ctx, cmd.userID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrAlreadyApproved):
			reply("You have already approved this withdrawal.")
		case errors.Is(err, domainErrors.ErrNotPending):
			reply("This withdrawal is already fully approved and executing.")
		case errors.Is(err, domainErrors.ErrNotFound):
			reply("No pending withdrawal to approve.")
		default:
			b.logger.Error("approve failed", slog.String("error", err.Error()))
			reply("Could not approve the withdrawal. Please try again.")
		}
		return
	}

	reply(formatApproval(req, cmd.userName, b.facade.RequiredApprovals(), quorumReached))

	if quorumReached {
		b.execute(ctx, req, reply)
	}
}

func (b *Bot) handleReject(ctx context.Context, cmd command, reply replyFunc) {
	req, err := b.facade.RejectActive(ctx, cmd.userID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			reply("No pending withdrawal to reject.")
		case errors.Is(err, domainErrors.ErrNotPending):
			reply("The current withdrawal can no longer be rejected.")
		default:
			b.logger.Error("reject failed", slog.String("error", err.Error()))
			reply("Could not reject the withdrawal. Please try again.")
		}
		return
	}

	reply(formatRejected(req, cmd.userName))
}

func (b *Bot) handlePending(ctx context.Context, cmd command, reply replyFunc) {
	active := b.facade.ActiveWithdrawal()
	if active == nil {
		reply("No pending withdrawals.")
		return
	}
	reply(formatPending(active, b.facade.RequiredApprovals()))
}

func (b *Bot) handleRequests(ctx context.Context, cmd command, reply replyFunc) {
	var status model.WithdrawalStatus
	if len(cmd.args) > 0 {
		status = model.WithdrawalStatus(strings.ToLower(cmd.args[0]))
		switch status {
		case model.WithdrawalStatusPending, model.WithdrawalStatusApproved,
			model.WithdrawalStatusRejected, model.WithdrawalStatusExecuted:
		default:
			reply("Unknown status filter. Use pending, approved, rejected or executed.")
			return
		}
	}
	reply(formatRequests(b.facade.Withdrawals(status)))
}

func (b *Bot) handleHistory(ctx context.Context, cmd command, reply replyFunc) {
	limit := defaultHistoryLimit
	if len(cmd.args) > 0 {
		if n, err := strconv.Atoi(cmd.args[0]); err == nil && n > 0 {
			limit = n
		}
	}

	transfers, err := b.facade.SafeHistory(ctx, limit)
	if err != nil {
		if errors.Is(err, safe.ErrNotConfigured) {
			reply("No Safe is configured for this deployment.")
			return
		}
		b.logger.Error("safe history fetch failed", slog.String("error", err.Error()))
		reply("Could not reach the Safe service. Please try again.")
		return
	}
	reply(formatHistory(transfers, b.chainID))
}

func (b *Bot) handleSafeInfo(ctx context.Context, cmd command, reply replyFunc) {
	info, err := b.facade.SafeOverview(ctx)
	if err != nil {
		if errors.Is(err, safe.ErrNotConfigured) {
			reply("No Safe is configured for this deployment.")
			return
		}
		b.logger.Error("safe info fetch failed", slog.String("error", err.Error()))
		reply("Could not reach the Safe service. Please try again.")
		return
	}
	reply(formatSafeInfo(info, b.chainID))
}

// execute runs the dispatch/await flow for a fully approved request,
// reporting each stage. The confirmation wait blocks only this handler's
// goroutine; the ledger stays responsive throughout.
func (b *Bot) execute(ctx context.Context, req *model.WithdrawalRequest, reply replyFunc) {
	reply("📤 *Sending transaction...*")

	dispatch, err := b.facade.DispatchWithdrawal(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInsufficientFunds):
			reply(formatDispatchFailed("The wallet balance is insufficient for this withdrawal.", err))
		case errors.Is(err, domainErrors.ErrNotPending):
			reply("This withdrawal was rejected before the transfer went out. No funds moved.")
		default:
			reply(formatDispatchFailed("The transaction could not be sent.", err))
		}
		return
	}

	reply(formatDispatched(dispatch, eth.ExplorerTxURL(b.chainID, dispatch.TxHash.Hex())))

	outcome := b.facade.AwaitWithdrawal(ctx, dispatch)
	reply(b.formatOutcome(outcome))
}

func (b *Bot) formatOutcome(outcome bridge.Outcome) string {
	explorer := eth.ExplorerTxURL(b.chainID, outcome.TxHash.Hex())
	switch outcome.Status {
	case bridge.OutcomeConfirmed:
		return formatConfirmed(outcome, explorer)
	case bridge.OutcomeReverted:
		return formatReverted(explorer)
	default:
		return formatUnknownOutcome(explorer)
	}
}
