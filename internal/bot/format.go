package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/custodian/internal/adapter/eth"
	"github.com/polkiloo/custodian/internal/adapter/safe"
	"github.com/polkiloo/custodian/internal/bridge"
	"github.com/polkiloo/custodian/internal/domain/model"
)

func shortAddress(address string) string {
	if len(address) < 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

func approvalTally(req *model.WithdrawalRequest, required int) string {
	return fmt.Sprintf("%d/%d", len(req.Approvals), required)
}

func formatWelcome(walletAddress string, userID int64, authorized bool) string {
	authorizedLabel := "No"
	if authorized {
		authorizedLabel = "Yes"
	}
	return fmt.Sprintf(
		"*Treasury Wallet Bot*\n\n"+
			"Wallet: `%s`\n"+
			"Your ID: `%d`\n"+
			"Authorized: %s\n\n"+
			"*Commands:*\n"+
			"/balance - Check wallet balance\n"+
			"/withdraw <amount> <address> - Request withdrawal\n"+
			"/approve - Approve pending withdrawal\n"+
			"/reject - Reject pending withdrawal\n"+
			"/pending - Show pending withdrawal\n"+
			"/requests [status] - Withdrawal request audit trail\n"+
			"/history - Executed Safe transfers\n"+
			"/safeinfo - Safe owners and threshold\n"+
			"/whoami - Show your Telegram user ID",
		walletAddress, userID, authorizedLabel,
	)
}

func formatWhoami(userID int64, userName string) string {
	return fmt.Sprintf(
		"*Your Telegram Info*\n\n"+
			"User ID: `%d`\n"+
			"Name: %s\n\n"+
			"_Ask an administrator to add your ID to AUTHORIZED\\_OPERATORS to authorize yourself._",
		userID, userName,
	)
}

func formatBalance(balance decimal.Decimal, address string) string {
	return fmt.Sprintf(
		"*Wallet Balance*\n\n*ETH:* %s\n*Address:* `%s`",
		balance.String(), address,
	)
}

func formatWithdrawUsage() string {
	return "*Usage:* /withdraw <amount> <address>\n\n*Example:* /withdraw 0.5 0x1234...abcd"
}

func formatNewRequest(req *model.WithdrawalRequest, required int) string {
	var progress string
	if len(req.Approvals) >= required {
		progress = "✅ *Fully approved! Executing...*"
	} else {
		progress = fmt.Sprintf(
			"⏳ *Waiting for %d more approval(s)*\n\nOther operators: reply /approve to approve or /reject to cancel.",
			required-len(req.Approvals),
		)
	}
	return fmt.Sprintf(
		"*New Withdrawal Request*\n\n"+
			"*ID:* `%s`\n"+
			"*Amount:* %s ETH\n"+
			"*To:* `%s`\n"+
			"*Requested by:* %s\n"+
			"*Approvals:* %s\n\n%s",
		req.ID, req.Amount, req.Destination, req.RequestedByName, approvalTally(req, required), progress,
	)
}

func formatAlreadyActive(req *model.WithdrawalRequest, required int) string {
	if req == nil {
		return "There's already an active withdrawal. Use /approve or /reject first."
	}
	return fmt.Sprintf(
		"There's already an active withdrawal:\n\n"+
			"*Amount:* %s ETH\n"+
			"*To:* `%s`\n"+
			"*Approvals:* %s\n\n"+
			"Use /approve or /reject first.",
		req.Amount, shortAddress(req.Destination), approvalTally(req, required),
	)
}

func formatApproval(req *model.WithdrawalRequest, approverName string, required int, quorumReached bool) string {
	progress := "⏳ *Waiting for more approvals...*"
	if quorumReached {
		progress = "🚀 *Fully approved! Executing transaction...*"
	}
	return fmt.Sprintf(
		"✅ *Approved by %s*\n\n"+
			"*Amount:* %s ETH\n"+
			"*To:* `%s`\n"+
			"*Approvals:* %s\n\n%s",
		approverName, req.Amount, shortAddress(req.Destination), approvalTally(req, required), progress,
	)
}

func formatRejected(req *model.WithdrawalRequest, rejectorName string) string {
	return fmt.Sprintf(
		"❌ *Withdrawal Rejected by %s*\n\n"+
			"*Amount:* %s ETH\n"+
			"*To:* `%s`\n\n"+
			"The withdrawal request has been cancelled.",
		rejectorName, req.Amount, shortAddress(req.Destination),
	)
}

func formatPending(req *model.WithdrawalRequest, required int) string {
	return fmt.Sprintf(
		"*Pending Withdrawal*\n\n"+
			"*ID:* `%s`\n"+
			"*Amount:* %s ETH\n"+
			"*To:* `%s`\n"+
			"*Requested by:* %s\n"+
			"*Approvals:* %s\n"+
			"*Created:* %s\n\n"+
			"Use /approve or /reject",
		req.ID, req.Amount, req.Destination, req.RequestedByName,
		approvalTally(req, required), req.CreatedAt.Format("2006-01-02 15:04:05 MST"),
	)
}

func formatDispatchFailed(reason string, err error) string {
	return fmt.Sprintf(
		"❌ *Transaction Failed*\n\n%s\nError: %v\n\n"+
			"The withdrawal has been cancelled. Please re-request if needed.",
		reason, err,
	)
}

func formatDispatched(d *bridge.Dispatch, explorerURL string) string {
	return fmt.Sprintf(
		"✅ *Transaction Sent!*\n\n"+
			"*Amount:* %s ETH\n"+
			"*To:* `%s`\n"+
			"*TX Hash:* `%s`\n\n"+
			"[View on Explorer](%s)\n\n"+
			"⏳ *Waiting for confirmation...*",
		d.Amount, shortAddress(d.To.Hex()), shortAddress(d.TxHash.Hex()), explorerURL,
	)
}

func formatConfirmed(outcome bridge.Outcome, explorerURL string) string {
	return fmt.Sprintf(
		"🎉 *Transaction Confirmed!*\n\n"+
			"*Block:* %d\n"+
			"*Gas Used:* %d\n\n"+
			"[View on Explorer](%s)",
		outcome.BlockNumber, outcome.GasUsed, explorerURL,
	)
}

func formatReverted(explorerURL string) string {
	return fmt.Sprintf(
		"⚠️ *Transaction Failed*\n\n"+
			"The transaction was mined but reverted; no funds moved. "+
			"Re-request the withdrawal if needed.\n\n"+
			"[View on Explorer](%s)",
		explorerURL,
	)
}

func formatUnknownOutcome(explorerURL string) string {
	return fmt.Sprintf(
		"⚠️ *Outcome Unknown*\n\n"+
			"The transaction was sent but its confirmation could not be observed. "+
			"The request stays active until an operator verifies the result on-chain "+
			"and resolves it manually.\n\n"+
			"[Check on Explorer](%s)",
		explorerURL,
	)
}

func formatTransfer(transfer model.ChainTransfer, explorerURL string) string {
	if transfer.Direction == model.TransferIncoming {
		return fmt.Sprintf(
			"*Incoming Transaction*\n\n"+
				"*Amount:* %s ETH\n"+
				"*From:* `%s`\n"+
				"*Tx:* `%s`\n\n"+
				"[View on Explorer](%s)",
			transfer.Value, shortAddress(transfer.Counterparty), shortAddress(transfer.TxHash), explorerURL,
		)
	}
	return fmt.Sprintf(
		"*Outgoing Transaction Executed*\n\n"+
			"*Amount:* %s ETH\n"+
			"*To:* `%s`\n"+
			"*Tx:* `%s`\n\n"+
			"[View on Explorer](%s)",
		transfer.Value, shortAddress(transfer.Counterparty), shortAddress(transfer.TxHash), explorerURL,
	)
}

func formatHistory(transfers []model.SafeTransfer, chainID int64) string {
	if len(transfers) == 0 {
		return "No executed Safe transactions yet."
	}
	var sb strings.Builder
	sb.WriteString("*Executed Safe Transactions*\n")
	for _, t := range transfers {
		status := "✅"
		if !t.Successful {
			status = "⚠️"
		}
		sb.WriteString(fmt.Sprintf(
			"\n%s %s ETH to `%s`\n[%s](%s) at %s\n",
			status, t.Value, shortAddress(t.To),
			shortAddress(t.TxHash), eth.ExplorerTxURL(chainID, t.TxHash),
			t.ExecutedAt.Format("2006-01-02 15:04"),
		))
	}
	return sb.String()
}

func formatRequests(requests []*model.WithdrawalRequest) string {
	if len(requests) == 0 {
		return "No withdrawal requests recorded."
	}
	var sb strings.Builder
	sb.WriteString("*Withdrawal Requests*\n")
	for _, req := range requests {
		sb.WriteString(fmt.Sprintf(
			"\n%s `%s`\n%s ETH to `%s`\nby %s at %s\n",
			statusBadge(req.Status), req.ID,
			req.Amount, shortAddress(req.Destination),
			req.RequestedByName, req.CreatedAt.Format("2006-01-02 15:04"),
		))
		if req.TxHash != "" {
			sb.WriteString(fmt.Sprintf("tx `%s`\n", shortAddress(req.TxHash)))
		}
	}
	return sb.String()
}

func statusBadge(status model.WithdrawalStatus) string {
	switch status {
	case model.WithdrawalStatusPending:
		return "⏳"
	case model.WithdrawalStatusApproved:
		return "🚀"
	case model.WithdrawalStatusRejected:
		return "❌"
	default:
		return "✅"
	}
}

func formatSafeInfo(info *model.SafeInfo, chainID int64) string {
	owners := make([]string, 0, len(info.Owners))
	for _, owner := range info.Owners {
		owners = append(owners, "`"+shortAddress(owner)+"`")
	}
	return fmt.Sprintf(
		"*Safe Multisig*\n\n"+
			"*Address:* `%s`\n"+
			"*Threshold:* %d of %d\n"+
			"*Nonce:* %d\n"+
			"*Owners:* %s\n\n"+
			"[Open in Safe App](%s)",
		info.Address, info.Threshold, len(info.Owners), info.Nonce,
		strings.Join(owners, ", "), safe.AppURL(chainID, info.Address),
	)
}
