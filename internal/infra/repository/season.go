package repository

import (
	"context"
	"errors"
	"time"

	"class-sync/internal/infra"
	"class-sync/internal/infra/db"
	"class-sync/internal/usecase/commands"

	"github.com/jackc/pgx/v5"
)

type SeasonRepository struct {
	db db.DBTX
}

func NewSeasonRepository(dbtx db.DBTX) *SeasonRepository {
	return &SeasonRepository{db: dbtx}
}

func (r *SeasonRepository) FindByTag(ctx context.Context, tag string) (*commands.SeasonRecord, error) {
	const query = `
		SELECT id, name, tag, start_date, end_date
		FROM saisons
		WHERE tag = $1`

	return scanSeason(r.db.QueryRow(ctx, query, tag), "season not found for tag")
}

// FindCurrent picks the season whose window contains today, preferring the
// most recently started one when windows overlap.
func (r *SeasonRepository) FindCurrent(ctx context.Context, today time.Time) (*commands.SeasonRecord, error) {
	const query = `
		SELECT id, name, tag, start_date, end_date
		FROM saisons
		WHERE start_date <= $1 AND (end_date IS NULL OR end_date >= $1)
		ORDER BY start_date DESC
		LIMIT 1`

	return scanSeason(r.db.QueryRow(ctx, query, today), "no current season")
}

func scanSeason(row pgx.Row, notFoundMsg string) (*commands.SeasonRecord, error) {
	var s commands.SeasonRecord
	err := row.Scan(&s.ID, &s.Name, &s.Tag, &s.StartDate, &s.EndDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr(notFoundMsg, err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find season", err)
	}
	return &s, nil
}
