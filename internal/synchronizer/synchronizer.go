package synchronizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/repository"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/metrics"
	"golang-stock-watchlist/pkg/sns"
	"golang-stock-watchlist/pkg/telegram"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

const (
	StepLoadWatchlist      = "load_watchlist"
	StepUpdateFilterPolicy = "update_filter_policy"
	StepSubscribe          = "subscribe"
)

// recoveryTimeout bounds the sync log write and the reconcile enqueue, which
// outlive the caller's context.
const recoveryTimeout = 5 * time.Second

// ErrUserNotFound is returned by Reconcile for an unknown user id.
var ErrUserNotFound = errors.New("user not found")

// SyncError is a push that failed after the store mutation completed.
type SyncError struct {
	UserID string
	Step   string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("notification filter sync failed at %s for user %s: %v", e.Step, e.UserID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// ReconcileResult describes what Reconcile did for one user.
type ReconcileResult struct {
	UserID     string
	Symbols    []string
	Subscribed bool
}

// Synchronizer keeps the per-email filter policy equal to the derived watchlist filter.
type Synchronizer interface {
	// Sync recomputes the filter from the store and pushes it. A failed push is
	// recorded, queued for reconciliation and returned as *SyncError.
	Sync(ctx context.Context, user *entity.User, trigger entity.SyncTrigger) ([]string, error)
	// Reconcile reloads the user and pushes the derived filter without queueing on failure.
	Reconcile(ctx context.Context, userID string, trigger entity.SyncTrigger) (*ReconcileResult, error)
}

// Options tune the synchronizer.
type Options struct {
	// AutoSubscribe lets Reconcile create the email subscription when none exists.
	AutoSubscribe bool
}

// NewSynchronizer creates a new Synchronizer.
func NewSynchronizer(
	userRepo repository.UserRepository,
	watchlistRepo repository.WatchlistRepository,
	syncLogRepo repository.SyncLogRepository,
	policyClient sns.PolicyClient,
	queue ReconcileQueue,
	notifier telegram.Notifier,
	recorder metrics.Recorder,
	log *logger.Logger,
	opts Options,
) Synchronizer {
	if notifier == nil {
		notifier = telegram.NopNotifier{}
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &synchronizer{
		userRepo:      userRepo,
		watchlistRepo: watchlistRepo,
		syncLogRepo:   syncLogRepo,
		policyClient:  policyClient,
		queue:         queue,
		notifier:      notifier,
		metrics:       recorder,
		logger:        log,
		opts:          opts,
	}
}

type synchronizer struct {
	userRepo      repository.UserRepository
	watchlistRepo repository.WatchlistRepository
	syncLogRepo   repository.SyncLogRepository
	policyClient  sns.PolicyClient
	queue         ReconcileQueue
	notifier      telegram.Notifier
	metrics       metrics.Recorder
	logger        *logger.Logger
	opts          Options
}

func (s *synchronizer) Sync(ctx context.Context, user *entity.User, trigger entity.SyncTrigger) ([]string, error) {
	symbols, err := s.push(ctx, user, trigger)
	if err != nil {
		s.handleFailure(ctx, user, trigger, symbols, err)
		return symbols, err
	}
	return symbols, nil
}

func (s *synchronizer) Reconcile(ctx context.Context, userID string, trigger entity.SyncTrigger) (*ReconcileResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.metrics.RecordReconcile(metrics.ResultFailed)
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if user == nil {
		s.metrics.RecordReconcile(metrics.ResultSkipped)
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	result := &ReconcileResult{UserID: userID}
	if s.opts.AutoSubscribe {
		subscribed, symbols, err := s.subscribeIfMissing(ctx, user, trigger)
		if err != nil {
			s.metrics.RecordReconcile(metrics.ResultFailed)
			return nil, err
		}
		if subscribed {
			result.Subscribed = true
			result.Symbols = symbols
			s.metrics.RecordReconcile(metrics.ResultSucceeded)
			return result, nil
		}
	}

	symbols, err := s.push(ctx, user, trigger)
	result.Symbols = symbols
	if err != nil {
		s.metrics.RecordReconcile(metrics.ResultFailed)
		return result, err
	}
	s.metrics.RecordReconcile(metrics.ResultSucceeded)
	return result, nil
}

// push loads the watchlist, derives the filter and writes it. Every attempt that
// reaches the notification service is recorded in the sync log.
func (s *synchronizer) push(ctx context.Context, user *entity.User, trigger entity.SyncTrigger) ([]string, error) {
	entries, err := s.watchlistRepo.ListByUser(ctx, user.UserID)
	if err != nil {
		s.metrics.RecordFilterSync(trigger.String(), metrics.ResultFailed)
		return nil, &SyncError{UserID: user.UserID, Step: StepLoadWatchlist, Err: err}
	}

	symbols := DesiredFilter(user.NotificationEnabled, entries)
	pushErr := s.policyClient.UpdateFilterPolicy(ctx, user.Email, symbols)
	s.record(ctx, user, trigger, symbols, pushErr)

	if pushErr != nil {
		s.metrics.RecordFilterSync(trigger.String(), metrics.ResultFailed)
		return symbols, &SyncError{UserID: user.UserID, Step: StepUpdateFilterPolicy, Err: pushErr}
	}

	s.metrics.RecordFilterSync(trigger.String(), metrics.ResultSucceeded)
	s.logger.InfoContext(ctx, "Notification filter synced",
		logger.StringField("user_id", user.UserID),
		logger.StringField("trigger", trigger.String()),
		logger.Field("symbols", symbols))
	return symbols, nil
}

func (s *synchronizer) subscribeIfMissing(ctx context.Context, user *entity.User, trigger entity.SyncTrigger) (bool, []string, error) {
	arn, err := s.policyClient.FindSubscriptionArn(ctx, user.Email)
	if err != nil {
		return false, nil, &SyncError{UserID: user.UserID, Step: StepSubscribe, Err: err}
	}
	if arn != "" {
		return false, nil, nil
	}

	entries, err := s.watchlistRepo.ListByUser(ctx, user.UserID)
	if err != nil {
		return false, nil, &SyncError{UserID: user.UserID, Step: StepLoadWatchlist, Err: err}
	}
	symbols := DesiredFilter(user.NotificationEnabled, entries)

	_, err = s.policyClient.Subscribe(ctx, user.Email, symbols)
	s.record(ctx, user, trigger, symbols, err)
	if err != nil {
		s.metrics.RecordFilterSync(trigger.String(), metrics.ResultFailed)
		return false, symbols, &SyncError{UserID: user.UserID, Step: StepSubscribe, Err: err}
	}

	s.metrics.RecordFilterSync(trigger.String(), metrics.ResultSucceeded)
	s.logger.InfoContext(ctx, "Email subscription created, waiting for confirmation",
		logger.StringField("user_id", user.UserID))
	return true, symbols, nil
}

// detached keeps the request values but drops its deadline, so a push that failed on
// an expired request still leaves a trace behind.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), recoveryTimeout)
}

func (s *synchronizer) record(ctx context.Context, user *entity.User, trigger entity.SyncTrigger, symbols []string, pushErr error) {
	ctx, cancel := detached(ctx)
	defer cancel()

	policy, _ := json.Marshal(sns.FilterPolicy{Ticker: symbols})

	entry := &entity.NotificationSyncLog{
		UserID:       user.UserID,
		Email:        user.Email,
		Trigger:      trigger,
		Symbols:      pq.StringArray(symbols),
		FilterPolicy: datatypes.JSON(policy),
		Status:       entity.SyncStatusSucceeded,
	}
	if pushErr != nil {
		entry.Status = entity.SyncStatusFailed
		entry.ErrorMessage = pushErr.Error()
	}

	if err := s.syncLogRepo.Create(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write sync log",
			logger.ErrorField(err),
			logger.StringField("user_id", user.UserID))
	}
}

// handleFailure runs the compensating half of the saga: the store mutation stays,
// a reconcile task is queued and the operator chat is told.
func (s *synchronizer) handleFailure(ctx context.Context, user *entity.User, trigger entity.SyncTrigger, symbols []string, err error) {
	step := StepUpdateFilterPolicy
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		step = syncErr.Step
	}

	s.logger.ErrorContext(ctx, "Notification filter sync failed, store mutation kept",
		logger.ErrorField(err),
		logger.StringField("user_id", user.UserID),
		logger.StringField("trigger", trigger.String()),
		logger.StringField("step", step))

	queued := false
	if s.queue != nil {
		ctx, cancel := detached(ctx)
		defer cancel()

		ok, qErr := s.queue.Enqueue(ctx, ReconcileTask{
			UserID:  user.UserID,
			Trigger: trigger,
			Reason:  err.Error(),
		})
		if qErr != nil {
			s.logger.ErrorContext(ctx, "Failed to enqueue reconcile task", logger.ErrorField(qErr), logger.StringField("user_id", user.UserID))
		}
		queued = ok
	}

	msg := telegram.FormatSyncFailure(telegram.SyncFailure{
		UserID:  user.UserID,
		Email:   user.Email,
		Trigger: trigger.String(),
		Step:    step,
		Symbols: symbols,
		Err:     err.Error(),
		At:      time.Now(),
		Queued:  queued,
	})
	if nErr := s.notifier.SendMessage(msg); nErr != nil {
		s.logger.ErrorContext(ctx, "Failed to notify operator", logger.ErrorField(nErr))
	}
}
