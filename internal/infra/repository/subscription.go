package repository

import (
	"context"
	"errors"
	"time"

	"class-sync/internal/domain/billing"
	"class-sync/internal/infra"
	"class-sync/internal/infra/db"
	"class-sync/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const subscriptionColumns = `
	id, customer_id, order_id, payment_plan_id, saison_id, stripe_subscription_id,
	status, start_date, next_payment_date, end_date,
	total_amount_cents, installment_amount_cents, installments_paid, installments_total`

type SubscriptionRepository struct {
	db db.DBTX
}

func NewSubscriptionRepository(dbtx db.DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: dbtx}
}

func (r *SubscriptionRepository) FindByOrderID(ctx context.Context, orderID int64) (*commands.SubscriptionRecord, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM customer_subscriptions WHERE order_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, orderID), "subscription not found for order")
}

func (r *SubscriptionRepository) FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*commands.SubscriptionRecord, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM customer_subscriptions WHERE stripe_subscription_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, stripeSubscriptionID), "subscription not found for stripe id")
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub commands.NewSubscription) (uuid.UUID, error) {
	const query = `
		INSERT INTO customer_subscriptions (
			id, customer_id, order_id, payment_plan_id, saison_id,
			status, start_date, next_payment_date, end_date,
			total_amount_cents, installment_amount_cents, installments_paid, installments_total
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	id := uuid.New()
	err := r.db.QueryRow(ctx, query,
		id, sub.CustomerID, sub.OrderID, sub.PaymentPlanID, sub.SeasonID,
		sub.Status, sub.StartDate, sub.NextPaymentDate, sub.EndDate,
		sub.TotalAmountCents, sub.InstallmentAmountCents, sub.InstallmentsPaid, sub.InstallmentsTotal,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return uuid.Nil, infra.WrapRepoErr("subscription already exists for order", err, infra.KindDuplicateKey)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create subscription", err)
	}
	return id, nil
}

func (r *SubscriptionRepository) UpdatePlan(ctx context.Context, id, paymentPlanID uuid.UUID) error {
	const query = `UPDATE customer_subscriptions SET payment_plan_id = $2, updated_at = now() WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, paymentPlanID); err != nil {
		return infra.WrapRepoErr("failed to update subscription plan", err)
	}
	return nil
}

func (r *SubscriptionRepository) SetStripeSubscriptionID(ctx context.Context, id uuid.UUID, stripeSubscriptionID string) (int64, error) {
	const query = `UPDATE customer_subscriptions SET stripe_subscription_id = $2, updated_at = now() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, stripeSubscriptionID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to set stripe subscription id", err)
	}
	return tag.RowsAffected(), nil
}

// ForceSetStripeSubscriptionID is the recovery path for the known
// update-affected-zero-rows case; it writes without the updated_at
// bookkeeping and ignores the affected count.
func (r *SubscriptionRepository) ForceSetStripeSubscriptionID(ctx context.Context, id uuid.UUID, stripeSubscriptionID string) error {
	const query = `UPDATE customer_subscriptions SET stripe_subscription_id = $2 WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, stripeSubscriptionID); err != nil {
		return infra.WrapRepoErr("failed to force-set stripe subscription id", err)
	}
	return nil
}

func (r *SubscriptionRepository) UpdateProgress(
	ctx context.Context,
	id uuid.UUID,
	installmentsPaid int32,
	nextPaymentDate time.Time,
	status billing.SubscriptionStatus,
	endDate *time.Time,
) error {
	const query = `
		UPDATE customer_subscriptions
		SET installments_paid = $2, next_payment_date = $3, status = $4, end_date = $5, updated_at = now()
		WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, installmentsPaid, nextPaymentDate, status, endDate); err != nil {
		return infra.WrapRepoErr("failed to update subscription progress", err)
	}
	return nil
}

func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status billing.SubscriptionStatus, endDate *time.Time) error {
	const query = `
		UPDATE customer_subscriptions
		SET status = $2, end_date = $3, updated_at = now()
		WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, status, endDate); err != nil {
		return infra.WrapRepoErr("failed to update subscription status", err)
	}
	return nil
}

func (r *SubscriptionRepository) ListDue(ctx context.Context, today time.Time) ([]commands.SubscriptionRecord, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM customer_subscriptions
		WHERE status = 'active'
		  AND next_payment_date <= $1
		  AND (installments_total = 0 OR installments_paid < installments_total)
		  AND (end_date IS NULL OR end_date > $1)
		ORDER BY next_payment_date`

	rows, err := r.db.Query(ctx, query, today)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list due subscriptions", err)
	}
	defer rows.Close()

	var subs []commands.SubscriptionRecord
	for rows.Next() {
		rec, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read due subscription rows", err)
	}
	return subs, nil
}

func (r *SubscriptionRepository) scanOne(row pgx.Row, notFoundMsg string) (*commands.SubscriptionRecord, error) {
	rec, err := scanSubscription(row)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, infra.WrapRepoErr(notFoundMsg, err, infra.KindNotFound)
		}
		return nil, err
	}
	return rec, nil
}

func scanSubscription(row pgx.Row) (*commands.SubscriptionRecord, error) {
	var rec commands.SubscriptionRecord
	err := row.Scan(
		&rec.ID, &rec.CustomerID, &rec.OrderID, &rec.PaymentPlanID, &rec.SeasonID, &rec.StripeSubscriptionID,
		&rec.Status, &rec.StartDate, &rec.NextPaymentDate, &rec.EndDate,
		&rec.TotalAmountCents, &rec.InstallmentAmountCents, &rec.InstallmentsPaid, &rec.InstallmentsTotal,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("subscription not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan subscription", err)
	}
	return &rec, nil
}
