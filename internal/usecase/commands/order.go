package commands

import (
	"context"
	"log/slog"
	"strings"

	"class-sync/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrIdentityNotResolved = errs.New("identity not resolved")

// StatusChange is the storefront's order-status-changed notification.
type StatusChange struct {
	OrderID   int64
	OldStatus string
	NewStatus string
	Order     Order
}

type LineResult struct {
	Descriptor string
	Outcome    RegistrationOutcome
	Error      string
}

type OrderResult struct {
	Processed      bool
	IdentityID     uuid.UUID
	SubscriptionID uuid.UUID
	Lines          []LineResult
}

type OrderCommands interface {
	// ProcessStatusChange runs the full pipeline for one qualifying
	// transition: identity resolution once per order, then event/period
	// matching and booking per course line, then the subscription record.
	// Course-line failures are isolated; they never abort the other lines.
	ProcessStatusChange(ctx context.Context, change StatusChange) (*OrderResult, error)
}

type orderCommandsImpl struct {
	identities       IdentityCommands
	identityReads    IdentityRepository
	registrations    RegistrationCommands
	subscriptions    SubscriptionCommands
	triggerStatuses  []string
	defaultSeasonTag string
}

func NewOrderCommands(
	identities IdentityCommands,
	identityReads IdentityRepository,
	registrations RegistrationCommands,
	subscriptions SubscriptionCommands,
	triggerStatuses []string,
	defaultSeasonTag string,
) OrderCommands {
	return &orderCommandsImpl{
		identities:       identities,
		identityReads:    identityReads,
		registrations:    registrations,
		subscriptions:    subscriptions,
		triggerStatuses:  triggerStatuses,
		defaultSeasonTag: defaultSeasonTag,
	}
}

func (c *orderCommandsImpl) ProcessStatusChange(ctx context.Context, change StatusChange) (*OrderResult, error) {
	if !c.qualifies(change.NewStatus) {
		slog.Debug("order status ignored", "order_id", change.OrderID, "new_status", change.NewStatus)
		return &OrderResult{Processed: false}, nil
	}

	order := change.Order
	order.ID = change.OrderID
	if order.SeasonTag == "" {
		order.SeasonTag = c.defaultSeasonTag
	}

	identityID, err := c.identities.Resolve(ctx, ResolveInput{
		Email:     order.Email,
		FirstName: order.FirstName,
		LastName:  order.LastName,
		Phone:     order.Phone,
	})
	if err != nil {
		return nil, err
	}

	if order.WPUserID != nil {
		if err := c.identities.BackfillStorefrontLink(ctx, order.Email, *order.WPUserID); err != nil {
			slog.Warn("storefront link backfill failed", "order_id", order.ID, "error", err)
		}
	}

	identity, err := c.identityReads.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(order.Email)))
	if err != nil {
		return nil, errs.Mark(err, ErrIdentityNotResolved)
	}

	result := &OrderResult{Processed: true, IdentityID: identityID}

	// The subscription is ensured before the course lines so the remote
	// booking payload can reference the plan and subscription.
	pay := PaymentContext{AmountCents: order.TotalCents}
	sub, err := c.subscriptions.EnsureForOrder(ctx, order, identityID)
	if err != nil {
		// Non-fatal for the notification: the lines are still registered,
		// just without plan details in the remote payload.
		slog.Error("subscription setup failed", "order_id", order.ID, "error", err)
	} else {
		result.SubscriptionID = sub.ID
		pay.PlanName = sub.PlanName
		pay.SubscriptionID = sub.ID.String()
	}

	for _, line := range order.Lines {
		outcome, lineErr := c.registrations.RegisterCourse(ctx, *identity, order.SeasonTag, line, order.ID, pay)
		lr := LineResult{Descriptor: line.Descriptor, Outcome: outcome}
		if lineErr != nil {
			lr.Error = lineErr.Error()
			slog.Warn("course line not registered",
				"order_id", order.ID, "descriptor", line.Descriptor, "outcome", outcome, "error", lineErr)
		}
		result.Lines = append(result.Lines, lr)
	}

	return result, nil
}

func (c *orderCommandsImpl) qualifies(status string) bool {
	for _, s := range c.triggerStatuses {
		if strings.EqualFold(s, status) {
			return true
		}
	}
	return false
}
