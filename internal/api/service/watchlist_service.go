package service

import (
	"context"
	"errors"
	"strings"

	"golang-stock-watchlist/internal/api/dto"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/repository"
	"golang-stock-watchlist/internal/synchronizer"
	"golang-stock-watchlist/pkg/logger"
)

// WatchlistService defines the watchlist and notification toggle operations.
// Every mutation writes the store first and then pushes the filter derived from it.
type WatchlistService interface {
	SetGlobalNotification(ctx context.Context, userID string, req *dto.SetNotificationsRequest) (*dto.SuccessResponse, error)
	AddToWatchlist(ctx context.Context, userID string, req *dto.AddWatchlistRequest) (*dto.WatchlistEntryResponse, error)
	RemoveFromWatchlist(ctx context.Context, userID, symbol string) (*dto.SuccessResponse, error)
	SetTickerNotification(ctx context.Context, userID, symbol string, req *dto.SetTickerNotificationRequest) (*dto.WatchlistEntryResponse, error)
	GetWatchlist(ctx context.Context, userID string) ([]dto.WatchlistEntryResponse, error)
	// GetNotificationHistory lists the user's recent filter policy pushes, newest first.
	GetNotificationHistory(ctx context.Context, userID string, limit int) ([]dto.SyncLogResponse, error)
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// NewWatchlistService creates a new watchlist service.
func NewWatchlistService(
	userRepo repository.UserRepository,
	tickerRepo repository.TickerRepository,
	watchlistRepo repository.WatchlistRepository,
	syncLogRepo repository.SyncLogRepository,
	sync synchronizer.Synchronizer,
	log *logger.Logger,
) WatchlistService {
	return &watchlistService{
		userRepo:      userRepo,
		tickerRepo:    tickerRepo,
		watchlistRepo: watchlistRepo,
		syncLogRepo:   syncLogRepo,
		sync:          sync,
		logger:        log,
	}
}

type watchlistService struct {
	userRepo      repository.UserRepository
	tickerRepo    repository.TickerRepository
	watchlistRepo repository.WatchlistRepository
	syncLogRepo   repository.SyncLogRepository
	sync          synchronizer.Synchronizer
	logger        *logger.Logger
}

func (s *watchlistService) loadUser(ctx context.Context, userID string) (*entity.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newValidationError("invalid userId")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func normalizeSymbol(symbol string) (string, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return "", newValidationError("invalid symbol")
	}
	return symbol, nil
}

// resolveTicker returns the stored ticker or creates it when a valid type is given.
func (s *watchlistService) resolveTicker(ctx context.Context, symbol string, tickerType *string) (*entity.Ticker, error) {
	ticker, err := s.tickerRepo.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if ticker != nil {
		return ticker, nil
	}

	if tickerType == nil || !entity.IsValidTickerType(*tickerType) {
		return nil, newValidationError("ticker not found; provide type as 'stock' or 'crypto' to create it")
	}
	ticker, err = s.tickerRepo.FindOrCreate(ctx, symbol, strings.ToLower(strings.TrimSpace(*tickerType)))
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Ticker created", logger.StringField("symbol", ticker.Symbol), logger.StringField("type", ticker.Type))
	return ticker, nil
}

func (s *watchlistService) SetGlobalNotification(ctx context.Context, userID string, req *dto.SetNotificationsRequest) (*dto.SuccessResponse, error) {
	if req == nil || req.Enabled == nil {
		return nil, newValidationError("enabled must be boolean")
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetNotificationEnabled(ctx, user.UserID, *req.Enabled); err != nil {
		return nil, err
	}
	user.NotificationEnabled = *req.Enabled

	if _, err := s.sync.Sync(ctx, user, entity.SyncTriggerGlobalToggle); err != nil {
		return nil, err
	}
	return &dto.SuccessResponse{Success: true}, nil
}

func (s *watchlistService) AddToWatchlist(ctx context.Context, userID string, req *dto.AddWatchlistRequest) (*dto.WatchlistEntryResponse, error) {
	if req == nil {
		return nil, newValidationError("invalid request payload")
	}
	symbol, err := normalizeSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ticker, err := s.resolveTicker(ctx, symbol, req.Type)
	if err != nil {
		return nil, err
	}

	entry := &entity.WatchlistEntry{
		UserID:              user.UserID,
		TickerID:            ticker.TickerID,
		NotificationEnabled: true,
	}
	if req.NotificationEnabled != nil {
		entry.NotificationEnabled = *req.NotificationEnabled
	}
	if err := s.watchlistRepo.Add(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateWatchlistEntry
		}
		return nil, err
	}

	if user.NotificationEnabled {
		if _, err := s.sync.Sync(ctx, user, entity.SyncTriggerWatchlistAdd); err != nil {
			return nil, err
		}
	}

	resp := toWatchlistEntryResponse(entity.WatchlistTicker{
		UserID:              entry.UserID,
		TickerID:            entry.TickerID,
		Symbol:              ticker.Symbol,
		Type:                ticker.Type,
		NotificationEnabled: entry.NotificationEnabled,
		CreatedAt:           entry.CreatedAt,
	})
	return &resp, nil
}

func (s *watchlistService) RemoveFromWatchlist(ctx context.Context, userID, symbol string) (*dto.SuccessResponse, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ticker, err := s.tickerRepo.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if ticker == nil {
		return nil, ErrTickerNotFound
	}

	removed, err := s.watchlistRepo.Remove(ctx, user.UserID, ticker.TickerID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrWatchlistEntryNotFound
	}

	if user.NotificationEnabled {
		if _, err := s.sync.Sync(ctx, user, entity.SyncTriggerWatchlistRemove); err != nil {
			return nil, err
		}
	}
	return &dto.SuccessResponse{Success: true}, nil
}

func (s *watchlistService) SetTickerNotification(ctx context.Context, userID, symbol string, req *dto.SetTickerNotificationRequest) (*dto.WatchlistEntryResponse, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if req == nil || req.Enabled == nil {
		return nil, newValidationError("enabled must be boolean")
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ticker, err := s.resolveTicker(ctx, symbol, req.Type)
	if err != nil {
		return nil, err
	}

	entry := &entity.WatchlistEntry{
		UserID:              user.UserID,
		TickerID:            ticker.TickerID,
		NotificationEnabled: *req.Enabled,
	}
	if err := s.watchlistRepo.Upsert(ctx, entry); err != nil {
		return nil, err
	}

	if user.NotificationEnabled {
		if _, err := s.sync.Sync(ctx, user, entity.SyncTriggerTickerToggle); err != nil {
			return nil, err
		}
	}

	stored, err := s.watchlistRepo.Find(ctx, user.UserID, ticker.TickerID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrWatchlistEntryNotFound
	}

	resp := toWatchlistEntryResponse(entity.WatchlistTicker{
		UserID:              stored.UserID,
		TickerID:            stored.TickerID,
		Symbol:              ticker.Symbol,
		Type:                ticker.Type,
		NotificationEnabled: stored.NotificationEnabled,
		CreatedAt:           stored.CreatedAt,
	})
	return &resp, nil
}

func (s *watchlistService) GetWatchlist(ctx context.Context, userID string) ([]dto.WatchlistEntryResponse, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.watchlistRepo.ListByUser(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.WatchlistEntryResponse, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, toWatchlistEntryResponse(r))
	}
	return resp, nil
}

func (s *watchlistService) GetNotificationHistory(ctx context.Context, userID string, limit int) ([]dto.SyncLogResponse, error) {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	switch {
	case limit < 0:
		return nil, newValidationError("limit must not be negative")
	case limit == 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	logs, err := s.syncLogRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SyncLogResponse, 0, len(logs))
	for _, l := range logs {
		resp = append(resp, toSyncLogResponse(l))
	}
	return resp, nil
}
