package stripegw

import (
	"context"
	"encoding/json"

	"class-sync/internal/domain/billing"
	"class-sync/internal/pkg/clock"
	"class-sync/internal/pkg/config"
	"class-sync/internal/pkg/errs"
	"class-sync/internal/usecase/commands"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/customer"
	"github.com/stripe/stripe-go/v78/invoice"
	"github.com/stripe/stripe-go/v78/price"
	"github.com/stripe/stripe-go/v78/product"
	"github.com/stripe/stripe-go/v78/subscription"
	"github.com/stripe/stripe-go/v78/webhook"
)

// Gateway provisions recurring payments on the payment platform. A missing
// secret key disables the gateway: subscriptions are then tracked locally
// only and collected through the manual invoice path.
type Gateway struct {
	secretKey     string
	webhookSecret string
	clock         clock.Clock
}

func NewGateway(cfg config.Config, clk clock.Clock) *Gateway {
	if cfg.Stripe.SecretKey != "" {
		stripe.Key = cfg.Stripe.SecretKey
	}
	return &Gateway{
		secretKey:     cfg.Stripe.SecretKey,
		webhookSecret: cfg.Stripe.WebhookSecret,
		clock:         clk,
	}
}

func (g *Gateway) Enabled() bool {
	return g.secretKey != ""
}

// Provision creates the product, recurring price, customer and subscription
// in one pass and returns the remote subscription id.
func (g *Gateway) Provision(_ context.Context, params commands.ProvisionParams) (string, error) {
	if !g.Enabled() {
		return "", errs.New("payment gateway is not configured")
	}

	prod, err := product.New(&stripe.ProductParams{
		Name: stripe.String(params.ProductName),
	})
	if err != nil {
		return "", errs.Wrap(err, "failed to create product")
	}

	interval, intervalCount := recurringInterval(params.Frequency)
	pr, err := price.New(&stripe.PriceParams{
		Product:    stripe.String(prod.ID),
		UnitAmount: stripe.Int64(params.AmountCents),
		Currency:   stripe.String(string(stripe.CurrencyEUR)),
		Recurring: &stripe.PriceRecurringParams{
			Interval:      stripe.String(interval),
			IntervalCount: stripe.Int64(intervalCount),
		},
	})
	if err != nil {
		return "", errs.Wrap(err, "failed to create price")
	}

	cust, err := customer.New(&stripe.CustomerParams{
		Email: stripe.String(params.CustomerEmail),
		Name:  stripe.String(params.CustomerName),
	})
	if err != nil {
		return "", errs.Wrap(err, "failed to create customer")
	}

	subParams := &stripe.SubscriptionParams{
		Customer: stripe.String(cust.ID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(pr.ID)},
		},
	}
	if params.StartDate.After(g.clock.Now()) {
		subParams.BillingCycleAnchor = stripe.Int64(params.StartDate.Unix())
		subParams.ProrationBehavior = stripe.String("none")
	}
	if params.CancelAt != nil {
		subParams.CancelAt = stripe.Int64(params.CancelAt.Unix())
	}

	sub, err := subscription.New(subParams)
	if err != nil {
		return "", errs.Wrap(err, "failed to create subscription")
	}
	return sub.ID, nil
}

func (g *Gateway) SubscriptionActive(_ context.Context, stripeSubscriptionID string) (bool, error) {
	if !g.Enabled() {
		return false, errs.New("payment gateway is not configured")
	}
	sub, err := subscription.Get(stripeSubscriptionID, nil)
	if err != nil {
		return false, errs.Wrap(err, "failed to fetch remote subscription")
	}
	switch sub.Status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return true, nil
	}
	return false, nil
}

// RequestInvoice asks the platform to raise an out-of-band invoice against an
// existing subscription, for installments the normal cycle missed.
func (g *Gateway) RequestInvoice(_ context.Context, stripeSubscriptionID string) error {
	if !g.Enabled() {
		return errs.New("payment gateway is not configured")
	}
	sub, err := subscription.Get(stripeSubscriptionID, nil)
	if err != nil {
		return errs.Wrap(err, "failed to fetch remote subscription")
	}
	_, err = invoice.New(&stripe.InvoiceParams{
		Customer:     stripe.String(sub.Customer.ID),
		Subscription: stripe.String(stripeSubscriptionID),
		AutoAdvance:  stripe.Bool(true),
	})
	if err != nil {
		return errs.Wrap(err, "failed to create remote invoice")
	}
	return nil
}

// VerifyEvent parses a webhook payload. With a webhook secret configured the
// signature is verified; without one the payload is trusted as-is.
func (g *Gateway) VerifyEvent(payload []byte, signatureHeader string) (stripe.Event, error) {
	if g.webhookSecret != "" {
		event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
		if err != nil {
			return stripe.Event{}, errs.Wrap(err, "webhook signature verification failed")
		}
		return event, nil
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, errs.Wrap(err, "failed to parse webhook payload")
	}
	return event, nil
}

func recurringInterval(f billing.Frequency) (string, int64) {
	switch f {
	case billing.FrequencyHourly, billing.FrequencyDaily:
		return string(stripe.PriceRecurringIntervalDay), 1
	case billing.FrequencyWeekly:
		return string(stripe.PriceRecurringIntervalWeek), 1
	case billing.FrequencyQuarterly:
		return string(stripe.PriceRecurringIntervalMonth), 3
	case billing.FrequencyAnnual:
		return string(stripe.PriceRecurringIntervalYear), 1
	default:
		return string(stripe.PriceRecurringIntervalMonth), 1
	}
}
