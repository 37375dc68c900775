package response

import (
	"time"

	"class-sync/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type SubscriptionResponse struct {
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

func FromSubscriptionView(view *queries.SubscriptionView) (*SubscriptionResponse, error) {
	var resp SubscriptionResponse
	if err := copier.Copy(&resp, view); err != nil {
		return nil, err
	}
	return &resp, nil
}
