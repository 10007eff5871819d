package repository

import (
	"context"
	"time"

	"golang-stock-watchlist/internal/entity"

	"gorm.io/gorm"
)

// SyncLogRepository stores the outcome of filter policy pushes.
type SyncLogRepository interface {
	Create(ctx context.Context, log *entity.NotificationSyncLog) error
	FindFailedUserIDsSince(ctx context.Context, since time.Time) ([]string, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]entity.NotificationSyncLog, error)
}

// NewSyncLogRepository creates a new GORM-based sync log repository.
func NewSyncLogRepository(db *gorm.DB) SyncLogRepository {
	return &syncLogRepository{db: db}
}

type syncLogRepository struct {
	db *gorm.DB
}

func (r *syncLogRepository) Create(ctx context.Context, log *entity.NotificationSyncLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindFailedUserIDsSince returns users whose push failed after since and never succeeded afterwards.
func (r *syncLogRepository) FindFailedUserIDsSince(ctx context.Context, since time.Time) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).Raw(`
	SELECT DISTINCT f.user_id
	FROM notification_sync_logs AS f
	WHERE f.status = ?
	AND f.created_at >= ?
	AND NOT EXISTS (
		SELECT 1 FROM notification_sync_logs AS s
		WHERE s.user_id = f.user_id
		AND s.status = ?
		AND s.created_at > f.created_at
	)
	ORDER BY f.user_id`, entity.SyncStatusFailed, since, entity.SyncStatusSucceeded).
		Scan(&userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

// ListByUser returns the most recent logs of a user, newest first.
func (r *syncLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]entity.NotificationSyncLog, error) {
	var logs []entity.NotificationSyncLog
	if limit <= 0 {
		limit = 20
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
