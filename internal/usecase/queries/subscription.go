package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type SubscriptionView struct {
	ID                     uuid.UUID  `json:"id"`
	OrderID                int64      `json:"order_id"`
	CustomerEmail          string     `json:"customer_email"`
	PlanName               string     `json:"plan_name"`
	SeasonName             string     `json:"season_name"`
	StripeSubscriptionID   *string    `json:"stripe_subscription_id,omitempty"`
	Status                 string     `json:"status"`
	StartDate              time.Time  `json:"start_date"`
	NextPaymentDate        time.Time  `json:"next_payment_date"`
	EndDate                *time.Time `json:"end_date,omitempty"`
	TotalAmountCents       int64      `json:"total_amount_cents"`
	InstallmentAmountCents int64      `json:"installment_amount_cents"`
	InstallmentsPaid       int32      `json:"installments_paid"`
	InstallmentsTotal      int32      `json:"installments_total"`
}

type SubscriptionReadStore interface {
	FindViewByOrderID(ctx context.Context, orderID int64) (*SubscriptionView, error)
}

type SubscriptionQueries interface {
	GetByOrderID(ctx context.Context, orderID int64) (*SubscriptionView, error)
}

type subscriptionQueriesImpl struct {
	store SubscriptionReadStore
}

func NewSubscriptionQueries(store SubscriptionReadStore) SubscriptionQueries {
	return &subscriptionQueriesImpl{store: store}
}

func (q *subscriptionQueriesImpl) GetByOrderID(ctx context.Context, orderID int64) (*SubscriptionView, error) {
	return q.store.FindViewByOrderID(ctx, orderID)
}
