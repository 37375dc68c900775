package commands

import (
	"context"
	"log/slog"

	"class-sync/internal/domain/billing"
	"class-sync/internal/infra"
	"class-sync/internal/pkg/clock"
	"class-sync/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrPlanNotFound             = errs.New("payment plan not found")
	ErrSeasonNotFound           = errs.New("season not found")
	ErrSubscriptionCreateFailed = errs.New("subscription create failed")
	ErrSubscriptionUpdateFailed = errs.New("subscription update failed")
)

const stripePaymentMethod = "stripe"

// SubscriptionResult reports the ensured subscription together with the plan
// name callers echo to the remote booking API.
type SubscriptionResult struct {
	ID       uuid.UUID
	PlanName string
}

type SubscriptionCommands interface {
	// EnsureForOrder creates the installment subscription for an order, or
	// returns the existing one (at most one subscription per order).
	EnsureForOrder(ctx context.Context, order Order, identityID uuid.UUID) (SubscriptionResult, error)
	HandlePaymentSucceeded(ctx context.Context, stripeSubscriptionID string) error
	HandlePaymentFailed(ctx context.Context, stripeSubscriptionID string) error
	HandleSubscriptionDeleted(ctx context.Context, stripeSubscriptionID string) error
}

type subscriptionCommandsImpl struct {
	subscriptions SubscriptionRepository
	plans         PaymentPlanRepository
	seasons       SeasonRepository
	gateway       PaymentGateway
	clock         clock.Clock
}

func NewSubscriptionCommands(
	subscriptions SubscriptionRepository,
	plans PaymentPlanRepository,
	seasons SeasonRepository,
	gateway PaymentGateway,
	clk clock.Clock,
) SubscriptionCommands {
	return &subscriptionCommandsImpl{
		subscriptions: subscriptions,
		plans:         plans,
		seasons:       seasons,
		gateway:       gateway,
		clock:         clk,
	}
}

func (c *subscriptionCommandsImpl) EnsureForOrder(ctx context.Context, order Order, identityID uuid.UUID) (SubscriptionResult, error) {
	plan, err := c.resolvePlan(ctx, order.PaymentPlanID)
	if err != nil {
		return SubscriptionResult{}, err
	}
	season, err := c.resolveSeason(ctx, order.SeasonTag)
	if err != nil {
		return SubscriptionResult{}, err
	}

	existing, err := c.subscriptions.FindByOrderID(ctx, order.ID)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return SubscriptionResult{}, errs.Mark(err, ErrSubscriptionCreateFailed)
	}
	if existing != nil {
		return SubscriptionResult{ID: existing.ID, PlanName: plan.Name}, c.reconcilePlan(ctx, existing, plan)
	}

	now := c.clock.Now()
	sched := billing.ComputeSchedule(now, season.StartDate, season.EndDate, plan.Frequency, plan.Installments)

	id, err := c.subscriptions.Create(ctx, NewSubscription{
		CustomerID:             identityID,
		OrderID:                order.ID,
		PaymentPlanID:          plan.ID,
		SeasonID:               season.ID,
		Status:                 sched.Status,
		StartDate:              sched.StartDate,
		NextPaymentDate:        sched.NextPaymentDate,
		EndDate:                sched.EndDate,
		TotalAmountCents:       order.TotalCents,
		InstallmentAmountCents: billing.InstallmentAmountCents(order.TotalCents, plan.Installments),
		InstallmentsPaid:       sched.InstallmentsPaid,
		InstallmentsTotal:      plan.Installments,
	})
	if err != nil {
		return SubscriptionResult{}, errs.Mark(err, ErrSubscriptionCreateFailed)
	}

	if order.PaymentMethod == stripePaymentMethod && sched.Status == billing.StatusActive {
		c.provisionRemote(ctx, id, order, plan, sched)
	}

	return SubscriptionResult{ID: id, PlanName: plan.Name}, nil
}

// reconcilePlan updates the stored plan when the order's selection changed
// before any payment progressed or remote provisioning happened; later
// mismatches are logged and left alone.
func (c *subscriptionCommandsImpl) reconcilePlan(ctx context.Context, sub *SubscriptionRecord, plan *PaymentPlanRecord) error {
	if sub.PaymentPlanID == plan.ID {
		return nil
	}
	if sub.InstallmentsPaid > 0 || sub.StripeSubscriptionID != nil {
		slog.Warn("plan reselection ignored after payment progress",
			"subscription_id", sub.ID, "stored_plan", sub.PaymentPlanID, "selected_plan", plan.ID)
		return nil
	}
	if err := c.subscriptions.UpdatePlan(ctx, sub.ID, plan.ID); err != nil {
		return errs.Mark(err, ErrSubscriptionUpdateFailed)
	}
	return nil
}

func (c *subscriptionCommandsImpl) provisionRemote(ctx context.Context, id uuid.UUID, order Order, plan *PaymentPlanRecord, sched billing.Schedule) {
	if !c.gateway.Enabled() {
		slog.Warn("payment gateway disabled, skipping remote provisioning", "subscription_id", id)
		return
	}

	remoteID, err := c.gateway.Provision(ctx, ProvisionParams{
		CustomerEmail: order.Email,
		CustomerName:  order.FirstName + " " + order.LastName,
		ProductName:   plan.Name,
		AmountCents:   billing.InstallmentAmountCents(order.TotalCents, plan.Installments),
		Frequency:     plan.Frequency,
		StartDate:     sched.StartDate,
		CancelAt:      sched.EndDate,
	})
	if err != nil {
		slog.Error("remote subscription provisioning failed", "subscription_id", id, "order_id", order.ID, "error", err)
		return
	}

	rows, err := c.subscriptions.SetStripeSubscriptionID(ctx, id, remoteID)
	if err == nil && rows == 0 {
		// Known flaky zero-rows case: retry once with a direct write.
		err = c.subscriptions.ForceSetStripeSubscriptionID(ctx, id, remoteID)
	}
	if err != nil {
		slog.Error("failed to persist remote subscription id", "subscription_id", id, "stripe_subscription_id", remoteID, "error", err)
	}
}

func (c *subscriptionCommandsImpl) resolvePlan(ctx context.Context, planID *uuid.UUID) (*PaymentPlanRecord, error) {
	var (
		plan *PaymentPlanRecord
		err  error
	)
	if planID != nil {
		plan, err = c.plans.FindByID(ctx, *planID)
	} else {
		plan, err = c.plans.FindDefault(ctx)
	}
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, errs.Mark(err, ErrPlanNotFound)
	}
	return plan, nil
}

func (c *subscriptionCommandsImpl) resolveSeason(ctx context.Context, tag string) (*SeasonRecord, error) {
	var (
		season *SeasonRecord
		err    error
	)
	if tag != "" {
		season, err = c.seasons.FindByTag(ctx, tag)
	} else {
		season, err = c.seasons.FindCurrent(ctx, c.clock.Now())
	}
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, errs.Mark(err, ErrSeasonNotFound)
	}
	return season, nil
}

func (c *subscriptionCommandsImpl) HandlePaymentSucceeded(ctx context.Context, stripeSubscriptionID string) error {
	sub, err := c.findByStripeID(ctx, stripeSubscriptionID)
	if err != nil || sub == nil {
		return err
	}
	if sub.Status.Terminal() {
		slog.Info("payment signal on terminal subscription ignored", "subscription_id", sub.ID, "status", sub.Status)
		return nil
	}
	return c.advance(ctx, sub)
}

// advance increments the paid counter, steps the next payment date by one
// plan interval and completes the subscription at the installment boundary.
// A succeeded payment also revives a payment_failed subscription.
func (c *subscriptionCommandsImpl) advance(ctx context.Context, sub *SubscriptionRecord) error {
	plan, err := c.plans.FindByID(ctx, sub.PaymentPlanID)
	if err != nil {
		return errs.Mark(err, ErrPlanNotFound)
	}

	paid := sub.InstallmentsPaid + 1
	next := plan.Frequency.Next(sub.NextPaymentDate)

	if sub.InstallmentsTotal > 0 && paid >= sub.InstallmentsTotal {
		today := clock.Today(c.clock)
		if err := c.subscriptions.UpdateProgress(ctx, sub.ID, paid, next, billing.StatusCompleted, &today); err != nil {
			return errs.Mark(err, ErrSubscriptionUpdateFailed)
		}
		slog.Info("subscription completed", "subscription_id", sub.ID, "installments", paid)
		return nil
	}

	if err := c.subscriptions.UpdateProgress(ctx, sub.ID, paid, next, billing.StatusActive, sub.EndDate); err != nil {
		return errs.Mark(err, ErrSubscriptionUpdateFailed)
	}
	return nil
}

func (c *subscriptionCommandsImpl) HandlePaymentFailed(ctx context.Context, stripeSubscriptionID string) error {
	sub, err := c.findByStripeID(ctx, stripeSubscriptionID)
	if err != nil || sub == nil {
		return err
	}
	if sub.Status.Terminal() {
		return nil
	}
	if err := c.subscriptions.UpdateStatus(ctx, sub.ID, billing.StatusPaymentFailed, sub.EndDate); err != nil {
		return errs.Mark(err, ErrSubscriptionUpdateFailed)
	}
	slog.Warn("subscription payment failed", "subscription_id", sub.ID)
	return nil
}

func (c *subscriptionCommandsImpl) HandleSubscriptionDeleted(ctx context.Context, stripeSubscriptionID string) error {
	sub, err := c.findByStripeID(ctx, stripeSubscriptionID)
	if err != nil || sub == nil {
		return err
	}
	if sub.Status == billing.StatusCancelled {
		return nil
	}
	today := clock.Today(c.clock)
	if err := c.subscriptions.UpdateStatus(ctx, sub.ID, billing.StatusCancelled, &today); err != nil {
		return errs.Mark(err, ErrSubscriptionUpdateFailed)
	}
	slog.Info("subscription cancelled remotely", "subscription_id", sub.ID)
	return nil
}

// findByStripeID treats an unknown remote id as a no-op so re-delivered
// webhooks for foreign subscriptions do not error the handler.
func (c *subscriptionCommandsImpl) findByStripeID(ctx context.Context, stripeSubscriptionID string) (*SubscriptionRecord, error) {
	sub, err := c.subscriptions.FindByStripeID(ctx, stripeSubscriptionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			slog.Info("webhook for unknown subscription ignored", "stripe_subscription_id", stripeSubscriptionID)
			return nil, nil
		}
		return nil, errs.Mark(err, ErrSubscriptionUpdateFailed)
	}
	return sub, nil
}
