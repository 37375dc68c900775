package repository

import (
	"context"
	"errors"
	"log/slog"

	"class-sync/internal/domain/course"
	"class-sync/internal/infra"
	"class-sync/internal/usecase/commands"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository reads/writes the booking system's event, tag and period
// relations. It holds the pool (not a DBTX) because event+tag creation is
// the one transactional boundary in the core.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) ListBySeasonTag(ctx context.Context, tag string) ([]commands.EventRecord, error) {
	const query = `
		SELECT e.id, e.name
		FROM amelia_events e
		JOIN amelia_events_tags t ON t.event_id = e.id
		WHERE t.name = $1
		ORDER BY e.id`

	rows, err := r.pool.Query(ctx, query, tag)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list events by season tag", err)
	}
	defer rows.Close()

	var events []commands.EventRecord
	for rows.Next() {
		var e commands.EventRecord
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, infra.WrapRepoErr("failed to scan event row", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read event rows", err)
	}
	return events, nil
}

func (r *EventRepository) CreateWithTag(ctx context.Context, name, tag string) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to begin event transaction", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback event transaction", "error", rollbackErr)
		}
	}()

	var eventID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO amelia_events (name, status) VALUES ($1, 'approved') RETURNING id`,
		name,
	).Scan(&eventID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to insert event", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO amelia_events_tags (event_id, name) VALUES ($1, $2)`,
		eventID, tag,
	)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to insert event tag", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, infra.WrapRepoErr("failed to commit event transaction", err)
	}
	return eventID, nil
}

// FindPeriodByTimeOfDay matches on the stored clock times only: two periods
// with identical start/end times of day are the same recurring weekly slot.
func (r *EventRepository) FindPeriodByTimeOfDay(ctx context.Context, eventID int64, start, end course.ClockTime) (*commands.PeriodRecord, error) {
	const query = `
		SELECT id, event_id, period_start, period_end, capacity, status
		FROM amelia_events_periods
		WHERE event_id = $1
		  AND to_char(period_start, 'HH24:MI') = $2
		  AND to_char(period_end, 'HH24:MI') = $3
		ORDER BY id
		LIMIT 1`

	var p commands.PeriodRecord
	err := r.pool.QueryRow(ctx, query, eventID, start.String(), end.String()).Scan(
		&p.ID, &p.EventID, &p.PeriodStart, &p.PeriodEnd, &p.Capacity, &p.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("event period not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find event period", err)
	}
	return &p, nil
}

func (r *EventRepository) CreatePeriod(ctx context.Context, period commands.NewPeriod) (int64, error) {
	const query = `
		INSERT INTO amelia_events_periods (event_id, period_start, period_end, capacity, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		period.EventID, period.PeriodStart, period.PeriodEnd, period.Capacity, period.Status,
	).Scan(&id)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to create event period", err)
	}
	return id, nil
}
