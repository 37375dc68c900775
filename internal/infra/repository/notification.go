package repository

import (
	"context"
	"time"

	"class-sync/internal/infra"
	"class-sync/internal/infra/db"

	"github.com/google/uuid"
)

// NotificationRepository queues outbound notification jobs for a separate
// sender process to drain.
type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(dbtx db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: dbtx}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	const query = `
		INSERT INTO notification_jobs (id, kind, topic, payload, status, run_at)
		VALUES ($1, $2, $3, $4, 'queued', $5)`

	if _, err := r.db.Exec(ctx, query, uuid.New(), kind, topic, payload, runAt); err != nil {
		return infra.WrapRepoErr("failed to queue notification job", err)
	}
	return nil
}
