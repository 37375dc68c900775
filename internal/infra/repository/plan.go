package repository

import (
	"context"
	"errors"

	"class-sync/internal/infra"
	"class-sync/internal/infra/db"
	"class-sync/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentPlanRepository struct {
	db db.DBTX
}

func NewPaymentPlanRepository(dbtx db.DBTX) *PaymentPlanRepository {
	return &PaymentPlanRepository{db: dbtx}
}

func (r *PaymentPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*commands.PaymentPlanRecord, error) {
	const query = `
		SELECT id, name, frequency, installments, is_default, active
		FROM payment_plans
		WHERE id = $1 AND active`

	return scanPlan(r.db.QueryRow(ctx, query, id))
}

func (r *PaymentPlanRepository) FindDefault(ctx context.Context) (*commands.PaymentPlanRecord, error) {
	const query = `
		SELECT id, name, frequency, installments, is_default, active
		FROM payment_plans
		WHERE is_default AND active
		ORDER BY created_at
		LIMIT 1`

	return scanPlan(r.db.QueryRow(ctx, query))
}

func scanPlan(row pgx.Row) (*commands.PaymentPlanRecord, error) {
	var p commands.PaymentPlanRecord
	err := row.Scan(&p.ID, &p.Name, &p.Frequency, &p.Installments, &p.IsDefault, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("payment plan not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment plan", err)
	}
	return &p, nil
}
