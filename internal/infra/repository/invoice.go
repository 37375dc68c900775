package repository

import (
	"context"
	"errors"

	"class-sync/internal/infra"
	"class-sync/internal/infra/db"
	"class-sync/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type InvoiceRepository struct {
	db db.DBTX
}

func NewInvoiceRepository(dbtx db.DBTX) *InvoiceRepository {
	return &InvoiceRepository{db: dbtx}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice commands.NewInvoice) (uuid.UUID, error) {
	const query = `
		INSERT INTO invoices (
			id, customer_id, subscription_id, order_id,
			invoice_number, invoice_date, due_date, amount_cents, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	id := uuid.New()
	err := r.db.QueryRow(ctx, query,
		id, invoice.CustomerID, invoice.SubscriptionID, invoice.OrderID,
		invoice.InvoiceNumber, invoice.InvoiceDate, invoice.DueDate, invoice.AmountCents, invoice.Status,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return uuid.Nil, infra.WrapRepoErr("invoice number already exists", err, infra.KindDuplicateKey)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create invoice", err)
	}
	return id, nil
}
