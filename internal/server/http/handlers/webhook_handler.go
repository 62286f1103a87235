package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/custodian/internal/domain/model"
	"github.com/polkiloo/custodian/internal/server/http/dto"
)

// DepositNotifier forwards chain transfers to the operators' chat.
type DepositNotifier interface {
	NotifyTransfer(ctx context.Context, transfer model.ChainTransfer) error
}

// WebhookHandler receives deposit notifications pushed by Alchemy.
type WebhookHandler struct {
	notifier       DepositNotifier
	watchedAddress string
	logger         *slog.Logger
}

// NewWebhookHandler constructs WebhookHandler watching the given address.
func NewWebhookHandler(notifier DepositNotifier, watchedAddress string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		notifier:       notifier,
		watchedAddress: strings.ToLower(watchedAddress),
		logger:         logger,
	}
}

// Health handles GET /health.
func (h *WebhookHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

// AlchemyActivity handles POST /webhook/alchemy. Signature verification has
// already happened in middleware; this is pass-through notification, the
// ledger is never touched here.
func (h *WebhookHandler) AlchemyActivity(c *gin.Context) {
	var payload dto.AlchemyWebhook
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	if payload.Type != "ADDRESS_ACTIVITY" {
		c.JSON(http.StatusOK, dto.WebhookAck{Received: true, Reason: "not address activity"})
		return
	}

	processed := false
	for _, activity := range payload.Event.Activity {
		transfer, ok := h.classify(activity)
		if !ok {
			continue
		}
		if err := h.notifier.NotifyTransfer(c.Request.Context(), transfer); err != nil {
			h.logger.Error("transfer notification failed",
				slog.String("tx", transfer.TxHash),
				slog.String("error", err.Error()),
			)
			continue
		}
		processed = true
	}

	c.JSON(http.StatusOK, dto.WebhookAck{Received: true, Processed: processed})
}

func (h *WebhookHandler) classify(activity dto.AlchemyActivity) (model.ChainTransfer, bool) {
	if activity.Category != "external" || activity.Asset != "ETH" {
		return model.ChainTransfer{}, false
	}

	value, err := decimal.NewFromString(activity.Value.String())
	if err != nil {
		h.logger.Warn("unparsable activity value",
			slog.String("tx", activity.Hash),
			slog.String("value", activity.Value.String()),
		)
		return model.ChainTransfer{}, false
	}

	switch {
	case strings.ToLower(activity.ToAddress) == h.watchedAddress:
		return model.ChainTransfer{
			Direction:    model.TransferIncoming,
			Counterparty: activity.FromAddress,
			TxHash:       activity.Hash,
			Value:        value,
		}, true
	case strings.ToLower(activity.FromAddress) == h.watchedAddress:
		return model.ChainTransfer{
			Direction:    model.TransferOutgoing,
			Counterparty: activity.ToAddress,
			TxHash:       activity.Hash,
			Value:        value,
		}, true
	default:
		return model.ChainTransfer{}, false
	}
}
