package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/syncer/config"
	"golang-stock-watchlist/internal/synchronizer"
	"golang-stock-watchlist/pkg/common"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/telegram"

	"github.com/redis/go-redis/v9"
)

// ReconcileService consumes reconcile tasks queued after failed filter pushes.
type ReconcileService interface {
	ProcessTask(ctx context.Context)
	ProcessRetries(ctx context.Context)
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(
	cfg *config.Config,
	redisClient redis.Cmdable,
	sync synchronizer.Synchronizer,
	queue synchronizer.ReconcileQueue,
	telegramBot telegram.Notifier,
	log *logger.Logger,
) ReconcileService {
	if telegramBot == nil {
		telegramBot = telegram.NopNotifier{}
	}
	return &reconcileService{
		cfg:         cfg,
		redisClient: redisClient,
		sync:        sync,
		queue:       queue,
		telegramBot: telegramBot,
		log:         log,
	}
}

type reconcileService struct {
	cfg         *config.Config
	redisClient redis.Cmdable
	sync        synchronizer.Synchronizer
	queue       synchronizer.ReconcileQueue
	telegramBot telegram.Notifier
	log         *logger.Logger
}

// ProcessTask reads one task from the stream and reconciles its user.
// Failed tasks stay pending and are picked up again by ProcessRetries.
func (s *reconcileService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamWatchlistReconcile, ">"},
		Count:    1,
		Block:    s.cfg.Syncer.StreamBlock,
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}
	s.handle(ctx, streams[0].Messages[0])
}

// ProcessRetries claims one task idle for longer than the configured duration and retries it.
func (s *reconcileService) ProcessRetries(ctx context.Context) {
	msgs, _, err := s.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   common.RedisStreamWatchlistReconcile,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer + "-retry",
		MinIdle:  s.cfg.Syncer.StreamMaxIdleDuration,
		Start:    "0",
		Count:    1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to claim reconcile task on retry", logger.ErrorField(err))
		return
	}
	if len(msgs) == 0 {
		s.log.Debug("Retry no pending messages found", logger.StringField("stream", common.RedisStreamWatchlistReconcile))
		return
	}

	msg := msgs[0]
	pendingInfo, err := s.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: common.RedisStreamWatchlistReconcile,
		Group:  common.RedisStreamGroup,
		Start:  msg.ID,
		End:    msg.ID,
		Count:  1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to get pending info", logger.ErrorField(err))
		return
	}
	if len(pendingInfo) == 0 {
		s.log.Warn("pending msg not found, but exist on xautoclaim", logger.StringField("message_id", msg.ID))
		return
	}

	if pendingInfo[0].RetryCount > int64(s.cfg.Syncer.StreamMaxRetry) {
		task, _ := synchronizer.DecodeTask(msg.Values)
		s.log.Error("Reconcile task retry count exceeded",
			logger.StringField("message_id", msg.ID),
			logger.StringField("user_id", task.UserID),
			logger.IntField("retry_count", int(pendingInfo[0].RetryCount)),
			logger.IntField("max_retry", s.cfg.Syncer.StreamMaxRetry))

		text := telegram.FormatSyncFailure(telegram.SyncFailure{
			UserID:  task.UserID,
			Trigger: task.Trigger.String(),
			Err:     fmt.Sprintf("reconcile gave up after %d attempts: %s", pendingInfo[0].RetryCount, task.Reason),
			At:      time.Now(),
		})
		if err := s.telegramBot.SendMessage(text); err != nil {
			s.log.Error("Failed to send telegram message retry exceeded", logger.ErrorField(err))
		}
		s.finish(ctx, msg.ID, task.UserID)
		return
	}

	s.handle(ctx, msg)
}

func (s *reconcileService) handle(ctx context.Context, msg redis.XMessage) {
	task, err := synchronizer.DecodeTask(msg.Values)
	if err != nil {
		s.log.Error("Failed to decode reconcile task", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
		s.finish(ctx, msg.ID, task.UserID)
		return
	}

	s.log.Info("Processing reconcile task",
		logger.StringField("message_id", msg.ID),
		logger.StringField("task_id", task.ID),
		logger.StringField("user_id", task.UserID),
		logger.StringField("trigger", task.Trigger.String()))

	execCtx, cancel := context.WithTimeout(ctx, s.cfg.Syncer.ReconcileTimeout)
	defer cancel()

	result, err := s.sync.Reconcile(execCtx, task.UserID, entity.SyncTriggerReconcile)
	if err != nil {
		if errors.Is(err, synchronizer.ErrUserNotFound) {
			s.log.Warn("Dropping reconcile task for unknown user", logger.StringField("user_id", task.UserID))
			s.finish(ctx, msg.ID, task.UserID)
			return
		}
		s.log.Error("Reconcile failed, task left pending",
			logger.ErrorField(err),
			logger.StringField("message_id", msg.ID),
			logger.StringField("user_id", task.UserID))
		return
	}

	s.finish(ctx, msg.ID, task.UserID)
	s.log.Info("Reconcile task processed",
		logger.StringField("user_id", task.UserID),
		logger.Field("symbols", result.Symbols),
		logger.BoolField("subscribed", result.Subscribed))
}

// finish acknowledges and deletes the message and releases the user's pending marker.
func (s *reconcileService) finish(ctx context.Context, messageID, userID string) {
	if err := s.ackAndDelete(ctx, messageID); err != nil {
		s.log.Error("Failed to acknowledge reconcile task", logger.ErrorField(err), logger.StringField("message_id", messageID))
	}
	if userID == "" {
		return
	}
	if err := s.queue.Release(ctx, userID); err != nil {
		s.log.Error("Failed to release pending reconcile marker", logger.ErrorField(err), logger.StringField("user_id", userID))
	}
}

func (s *reconcileService) ackAndDelete(ctx context.Context, messageID string) error {
	if err := s.redisClient.XAck(ctx, common.RedisStreamWatchlistReconcile, common.RedisStreamGroup, messageID).Err(); err != nil {
		return err
	}
	return s.redisClient.XDel(ctx, common.RedisStreamWatchlistReconcile, messageID).Err()
}
