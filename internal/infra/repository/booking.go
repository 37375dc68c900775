package repository

import (
	"context"
	"errors"

	"class-sync/internal/infra"
	"class-sync/internal/infra/db"
	"class-sync/internal/usecase/commands"

	"github.com/jackc/pgx/v5"
)

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

func (r *BookingRepository) FindActive(ctx context.Context, ameliaCustomerID, eventPeriodID int64) (*commands.BookingRecord, error) {
	const query = `
		SELECT id, customer_id, event_period_id, status, COALESCE(formula, ''), COALESCE(order_id, 0)
		FROM amelia_customer_bookings
		WHERE customer_id = $1
		  AND event_period_id = $2
		  AND status IN ('approved', 'pending')
		ORDER BY id
		LIMIT 1`

	var b commands.BookingRecord
	err := r.db.QueryRow(ctx, query, ameliaCustomerID, eventPeriodID).Scan(
		&b.ID, &b.CustomerID, &b.EventPeriodID, &b.Status, &b.Formula, &b.OrderID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("active booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find active booking", err)
	}
	return &b, nil
}

func (r *BookingRepository) Create(ctx context.Context, booking commands.NewBooking) (int64, error) {
	const query = `
		INSERT INTO amelia_customer_bookings (customer_id, event_period_id, status, formula, order_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		booking.CustomerID, booking.EventPeriodID, booking.Status, booking.Formula, booking.OrderID,
	).Scan(&id)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to create booking", err)
	}
	return id, nil
}
