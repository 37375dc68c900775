package readstore

import (
	"context"
	"errors"

	"class-sync/internal/infra"
	"class-sync/internal/infra/db"
	"class-sync/internal/usecase/queries"

	"github.com/jackc/pgx/v5"
)

type SubscriptionReadStore struct {
	db db.DBTX
}

func NewSubscriptionReadStore(dbtx db.DBTX) *SubscriptionReadStore {
	return &SubscriptionReadStore{db: dbtx}
}

func (s *SubscriptionReadStore) FindViewByOrderID(ctx context.Context, orderID int64) (*queries.SubscriptionView, error) {
	const query = `
		SELECT
			cs.id, cs.order_id, c.email, pp.name, sa.name,
			cs.stripe_subscription_id, cs.status,
			cs.start_date, cs.next_payment_date, cs.end_date,
			cs.total_amount_cents, cs.installment_amount_cents,
			cs.installments_paid, cs.installments_total
		FROM customer_subscriptions cs
		JOIN customers c ON c.id = cs.customer_id
		JOIN payment_plans pp ON pp.id = cs.payment_plan_id
		JOIN saisons sa ON sa.id = cs.saison_id
		WHERE cs.order_id = $1`

	var view queries.SubscriptionView
	err := s.db.QueryRow(ctx, query, orderID).Scan(
		&view.ID, &view.OrderID, &view.CustomerEmail, &view.PlanName, &view.SeasonName,
		&view.StripeSubscriptionID, &view.Status,
		&view.StartDate, &view.NextPaymentDate, &view.EndDate,
		&view.TotalAmountCents, &view.InstallmentAmountCents,
		&view.InstallmentsPaid, &view.InstallmentsTotal,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("subscription not found for order", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load subscription view", err)
	}
	return &view, nil
}
