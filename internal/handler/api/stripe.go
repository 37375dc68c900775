package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"class-sync/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v78"
)

const maxWebhookBodyBytes = 65536

// EventVerifier parses and, when configured, signature-checks a webhook
// payload.
type EventVerifier interface {
	VerifyEvent(payload []byte, signatureHeader string) (stripe.Event, error)
}

type StripeWebhookHandler struct {
	verifier      EventVerifier
	subscriptions commands.SubscriptionCommands
}

func NewStripeWebhookHandler(verifier EventVerifier, subscriptions commands.SubscriptionCommands) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		verifier:      verifier,
		subscriptions: subscriptions,
	}
}

// HandleEvent processes payment platform webhooks. Unknown event types are
// acknowledged with 200 so the platform stops redelivering them.
func (h *StripeWebhookHandler) HandleEvent(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}
	if len(payload) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty request body"})
		return
	}

	event, err := h.verifier.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		slog.Warn("webhook rejected", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	switch event.Type {
	case "invoice.payment_succeeded":
		err = h.handleInvoiceEvent(c, event, h.subscriptions.HandlePaymentSucceeded)
	case "invoice.payment_failed":
		err = h.handleInvoiceEvent(c, event, h.subscriptions.HandlePaymentFailed)
	case "customer.subscription.deleted":
		err = h.handleSubscriptionEvent(c, event)
	default:
		slog.Debug("webhook event ignored", "type", event.Type)
	}
	if err != nil {
		slog.Error("webhook processing failed", "type", event.Type, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *StripeWebhookHandler) handleInvoiceEvent(
	c *gin.Context,
	event stripe.Event,
	apply func(ctx context.Context, subID string) error,
) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		slog.Warn("malformed invoice event payload", "type", event.Type, "error", err)
		return nil
	}
	if inv.Subscription == nil || inv.Subscription.ID == "" {
		slog.Debug("invoice event without subscription ignored", "type", event.Type)
		return nil
	}
	return apply(c.Request.Context(), inv.Subscription.ID)
}

func (h *StripeWebhookHandler) handleSubscriptionEvent(c *gin.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		slog.Warn("malformed subscription event payload", "type", event.Type, "error", err)
		return nil
	}
	if sub.ID == "" {
		return nil
	}
	return h.subscriptions.HandleSubscriptionDeleted(c.Request.Context(), sub.ID)
}
