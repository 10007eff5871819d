package synchronizer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/common"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReconcileTask asks the sync service to push the derived filter of one user again.
type ReconcileTask struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user_id"`
	Trigger    entity.SyncTrigger `json:"trigger"`
	Reason     string             `json:"reason"`
	EnqueuedAt time.Time          `json:"enqueued_at"`
}

// ReconcileQueue holds at most one pending task per user.
type ReconcileQueue interface {
	Enqueue(ctx context.Context, task ReconcileTask) (bool, error)
	Release(ctx context.Context, userID string) error
}

// NewRedisReconcileQueue creates a queue backed by the reconcile stream.
func NewRedisReconcileQueue(rdb redis.Cmdable, pendingTTL time.Duration, streamMaxLen int64) ReconcileQueue {
	if pendingTTL <= 0 {
		pendingTTL = time.Hour
	}
	return &redisReconcileQueue{
		rdb:          rdb,
		pendingTTL:   pendingTTL,
		streamMaxLen: streamMaxLen,
	}
}

type redisReconcileQueue struct {
	rdb          redis.Cmdable
	pendingTTL   time.Duration
	streamMaxLen int64
}

func pendingKey(userID string) string {
	return fmt.Sprintf(common.RedisKeyReconcilePending, userID)
}

// Enqueue adds the task unless one is already pending for the user and reports whether it was added.
func (q *redisReconcileQueue) Enqueue(ctx context.Context, task ReconcileTask) (bool, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now().UTC()
	}

	ok, err := q.rdb.SetNX(ctx, pendingKey(task.UserID), task.ID, q.pendingTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark reconcile pending: %w", err)
	}
	if !ok {
		return false, nil
	}

	payload, err := json.Marshal(task)
	if err != nil {
		_ = q.rdb.Del(ctx, pendingKey(task.UserID)).Err()
		return false, err
	}

	args := &redis.XAddArgs{
		Stream: common.RedisStreamWatchlistReconcile,
		Values: map[string]interface{}{"payload": payload},
	}
	if q.streamMaxLen > 0 {
		args.MaxLen = q.streamMaxLen
		args.Approx = true
	}
	if err := q.rdb.XAdd(ctx, args).Err(); err != nil {
		_ = q.rdb.Del(ctx, pendingKey(task.UserID)).Err()
		return false, fmt.Errorf("failed to enqueue reconcile task: %w", err)
	}
	return true, nil
}

// Release clears the pending marker so a later failure can enqueue again.
func (q *redisReconcileQueue) Release(ctx context.Context, userID string) error {
	return q.rdb.Del(ctx, pendingKey(userID)).Err()
}

// DecodeTask parses a stream message written by Enqueue.
func DecodeTask(values map[string]interface{}) (ReconcileTask, error) {
	var task ReconcileTask
	raw, ok := values["payload"]
	if !ok {
		return task, fmt.Errorf("missing payload field")
	}
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return task, fmt.Errorf("unexpected payload type %T", raw)
	}
	if err := json.Unmarshal(data, &task); err != nil {
		return task, fmt.Errorf("failed to decode reconcile task: %w", err)
	}
	if task.UserID == "" {
		return task, fmt.Errorf("reconcile task %s has no user id", task.ID)
	}
	return task, nil
}
