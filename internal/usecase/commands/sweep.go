package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"class-sync/internal/domain/billing"
	"class-sync/internal/pkg/clock"
	"class-sync/internal/pkg/errs"
)

var ErrSweepQueryFailed = errs.New("due subscription query failed")

type SweepReport struct {
	Due      int
	Invoiced int
	Manual   int
	Failed   int
}

type SweepCommands interface {
	// ProcessRecurringPayments runs the daily due-payment sweep: remote
	// subscriptions get an invoice request (the webhook advances them),
	// off-band ones get a local invoice plus notifications and advance
	// immediately.
	ProcessRecurringPayments(ctx context.Context) (SweepReport, error)
}

type sweepCommandsImpl struct {
	subscriptions SubscriptionRepository
	plans         PaymentPlanRepository
	invoices      InvoiceRepository
	notifications NotificationRepository
	gateway       PaymentGateway
	clock         clock.Clock
}

func NewSweepCommands(
	subscriptions SubscriptionRepository,
	plans PaymentPlanRepository,
	invoices InvoiceRepository,
	notifications NotificationRepository,
	gateway PaymentGateway,
	clk clock.Clock,
) SweepCommands {
	return &sweepCommandsImpl{
		subscriptions: subscriptions,
		plans:         plans,
		invoices:      invoices,
		notifications: notifications,
		gateway:       gateway,
		clock:         clk,
	}
}

func (c *sweepCommandsImpl) ProcessRecurringPayments(ctx context.Context) (SweepReport, error) {
	report := SweepReport{}

	due, err := c.subscriptions.ListDue(ctx, clock.Today(c.clock))
	if err != nil {
		return report, errs.Mark(err, ErrSweepQueryFailed)
	}
	report.Due = len(due)

	for i := range due {
		sub := due[i]
		if c.tryRemoteInvoice(ctx, &sub) {
			report.Invoiced++
			continue
		}
		if err := c.collectManually(ctx, &sub); err != nil {
			slog.Error("manual installment collection failed", "subscription_id", sub.ID, "error", err)
			report.Failed++
			continue
		}
		report.Manual++
	}

	slog.Info("recurring payment sweep finished",
		"due", report.Due, "invoiced", report.Invoiced, "manual", report.Manual, "failed", report.Failed)
	return report, nil
}

// tryRemoteInvoice asks the processor for a new invoice when the remote
// subscription is still alive; the payment-succeeded webhook will do the
// actual advancing later.
func (c *sweepCommandsImpl) tryRemoteInvoice(ctx context.Context, sub *SubscriptionRecord) bool {
	if sub.StripeSubscriptionID == nil {
		return false
	}

	active, err := c.gateway.SubscriptionActive(ctx, *sub.StripeSubscriptionID)
	if err != nil {
		slog.Warn("remote subscription lookup failed, falling back to manual collection",
			"subscription_id", sub.ID, "stripe_subscription_id", *sub.StripeSubscriptionID, "error", err)
		return false
	}
	if !active {
		return false
	}

	if err := c.gateway.RequestInvoice(ctx, *sub.StripeSubscriptionID); err != nil {
		slog.Warn("invoice request failed", "subscription_id", sub.ID, "error", err)
	}
	return true
}

// collectManually records the due installment as a local invoice, notifies
// customer and operator, and advances the subscription immediately since no
// webhook will arrive for an off-band payment.
func (c *sweepCommandsImpl) collectManually(ctx context.Context, sub *SubscriptionRecord) error {
	today := clock.Today(c.clock)
	installment := sub.InstallmentsPaid + 1

	_, err := c.invoices.Create(ctx, NewInvoice{
		CustomerID:     sub.CustomerID,
		SubscriptionID: sub.ID,
		OrderID:        sub.OrderID,
		InvoiceNumber:  fmt.Sprintf("INV-%d-%03d", sub.OrderID, installment),
		InvoiceDate:    today,
		DueDate:        sub.NextPaymentDate,
		AmountCents:    sub.InstallmentAmountCents,
		Status:         "pending",
	})
	if err != nil {
		return err
	}

	c.notify(ctx, sub, "installment_due")
	c.notify(ctx, sub, "installment_due_operator")

	return c.advanceLocally(ctx, sub)
}

func (c *sweepCommandsImpl) notify(ctx context.Context, sub *SubscriptionRecord, topic string) {
	payload, err := json.Marshal(map[string]any{
		"subscription_id": sub.ID,
		"order_id":        sub.OrderID,
		"amount_cents":    sub.InstallmentAmountCents,
		"installment":     sub.InstallmentsPaid + 1,
	})
	if err != nil {
		return
	}
	if err := c.notifications.CreateJob(ctx, "email", topic, payload, c.clock.Now()); err != nil {
		slog.Warn("failed to enqueue notification", "topic", topic, "subscription_id", sub.ID, "error", err)
	}
}

func (c *sweepCommandsImpl) advanceLocally(ctx context.Context, sub *SubscriptionRecord) error {
	plan, err := c.plans.FindByID(ctx, sub.PaymentPlanID)
	if err != nil {
		return errs.Mark(err, ErrPlanNotFound)
	}

	paid := sub.InstallmentsPaid + 1
	next := plan.Frequency.Next(sub.NextPaymentDate)

	if sub.InstallmentsTotal > 0 && paid >= sub.InstallmentsTotal {
		today := clock.Today(c.clock)
		return c.subscriptions.UpdateProgress(ctx, sub.ID, paid, next, billing.StatusCompleted, &today)
	}
	return c.subscriptions.UpdateProgress(ctx, sub.ID, paid, next, billing.StatusActive, sub.EndDate)
}
