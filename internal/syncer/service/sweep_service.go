package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/repository"
	"golang-stock-watchlist/internal/syncer/config"
	"golang-stock-watchlist/internal/synchronizer"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/telegram"
	"golang-stock-watchlist/pkg/utils"

	"github.com/robfig/cron/v3"
)

// SweepService periodically re-pushes the derived filter of every user that may have drifted.
type SweepService interface {
	Start(ctx context.Context) error
	Sweep(ctx context.Context) telegram.ReconcileSummary
}

// NewSweepService creates a new SweepService.
func NewSweepService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	syncLogRepo repository.SyncLogRepository,
	sync synchronizer.Synchronizer,
	telegramBot telegram.Notifier,
	log *logger.Logger,
) SweepService {
	if telegramBot == nil {
		telegramBot = telegram.NopNotifier{}
	}
	return &sweepService{
		cfg:         cfg,
		userRepo:    userRepo,
		syncLogRepo: syncLogRepo,
		sync:        sync,
		telegramBot: telegramBot,
		log:         log,
		cronParser:  cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

type sweepService struct {
	cfg         *config.Config
	userRepo    repository.UserRepository
	syncLogRepo repository.SyncLogRepository
	sync        synchronizer.Synchronizer
	telegramBot telegram.Notifier
	log         *logger.Logger
	cronParser  cron.Parser

	running sync.Mutex
}

// Start schedules the sweep and blocks until ctx is done.
func (s *sweepService) Start(ctx context.Context) error {
	schedule, err := s.cronParser.Parse(s.cfg.Syncer.ReconcileCron)
	if err != nil {
		return fmt.Errorf("invalid reconcile cron %q: %w", s.cfg.Syncer.ReconcileCron, err)
	}

	c := cron.New(cron.WithParser(s.cronParser))
	c.Schedule(schedule, cron.FuncJob(func() {
		// overlapping runs are skipped rather than queued
		if !s.running.TryLock() {
			s.log.Warn("Previous sweep still running, skipping")
			return
		}
		defer s.running.Unlock()
		s.Sweep(ctx)
	}))

	s.log.Info("Sweep scheduled",
		logger.StringField("cron", s.cfg.Syncer.ReconcileCron),
		logger.Field("next_run", schedule.Next(time.Now())))
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	s.log.Info("Sweep service stopped")
	return nil
}

// candidates returns the users with notifications on plus the users whose last push failed.
func (s *sweepService) candidates(ctx context.Context) ([]string, error) {
	enabled, err := s.userRepo.FindAllNotificationEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load enabled users: %w", err)
	}
	failed, err := s.syncLogRepo.FindFailedUserIDsSince(ctx, time.Now().Add(-s.cfg.Syncer.ReconcileLookback))
	if err != nil {
		return nil, fmt.Errorf("failed to load failed sync logs: %w", err)
	}

	seen := make(map[string]struct{}, len(enabled)+len(failed))
	ids := make([]string, 0, len(enabled)+len(failed))
	for _, u := range enabled {
		if _, ok := seen[u.UserID]; !ok {
			seen[u.UserID] = struct{}{}
			ids = append(ids, u.UserID)
		}
	}
	for _, id := range failed {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *sweepService) Sweep(ctx context.Context) telegram.ReconcileSummary {
	start := time.Now()
	var summary telegram.ReconcileSummary

	ids, err := s.candidates(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Sweep aborted", logger.ErrorField(err))
		return summary
	}

	for _, id := range ids {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		summary.Total++

		execCtx, cancel := context.WithTimeout(ctx, s.cfg.Syncer.ReconcileTimeout)
		result, err := s.sync.Reconcile(execCtx, id, entity.SyncTriggerSweep)
		cancel()

		switch {
		case err == nil:
			summary.Succeeded++
			if result.Subscribed {
				summary.Subscribed++
			}
		case errors.Is(err, synchronizer.ErrUserNotFound):
			s.log.DebugContext(ctx, "Skipping unknown user", logger.StringField("user_id", id))
			summary.Total--
		default:
			summary.Failed++
			summary.FailedUsers = append(summary.FailedUsers, id)
			s.log.ErrorContext(ctx, "Sweep reconcile failed", logger.ErrorField(err), logger.StringField("user_id", id))
		}
	}
	summary.Duration = time.Since(start)

	s.log.InfoContext(ctx, "Sweep completed",
		logger.IntField("total", summary.Total),
		logger.IntField("succeeded", summary.Succeeded),
		logger.IntField("failed", summary.Failed),
		logger.IntField("subscribed", summary.Subscribed),
		logger.Field("duration", summary.Duration))

	if summary.Failed > 0 || summary.Subscribed > 0 {
		if err := telegram.SendMessages(s.telegramBot, telegram.FormatReconcileSummary(summary)); err != nil {
			s.log.ErrorContext(ctx, "Failed to send sweep summary", logger.ErrorField(err))
		}
	}
	return summary
}
