package repository

import (
	"context"

	"golang-stock-watchlist/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatchlistRepository defines the interface for watchlist entry operations.
type WatchlistRepository interface {
	Find(ctx context.Context, userID string, tickerID uint) (*entity.WatchlistEntry, error)
	Add(ctx context.Context, entry *entity.WatchlistEntry) error
	Remove(ctx context.Context, userID string, tickerID uint) (bool, error)
	Upsert(ctx context.Context, entry *entity.WatchlistEntry) error
	ListByUser(ctx context.Context, userID string) ([]entity.WatchlistTicker, error)
}

// NewWatchlistRepository creates a new GORM-based watchlist repository.
func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

type watchlistRepository struct {
	db *gorm.DB
}

func (r *watchlistRepository) Find(ctx context.Context, userID string, tickerID uint) (*entity.WatchlistEntry, error) {
	var entry entity.WatchlistEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ticker_id = ?", userID, tickerID).
		First(&entry).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// Add inserts a new entry and returns ErrDuplicate when the pair already exists.
func (r *watchlistRepository) Add(ctx context.Context, entry *entity.WatchlistEntry) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

// Remove deletes the entry and reports whether it existed.
func (r *watchlistRepository) Remove(ctx context.Context, userID string, tickerID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND ticker_id = ?", userID, tickerID).
		Delete(&entity.WatchlistEntry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Upsert creates the entry or overwrites its notification flag.
func (r *watchlistRepository) Upsert(ctx context.Context, entry *entity.WatchlistEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "ticker_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"notification_enabled"}),
		}).Create(entry).Error
}

// ListByUser returns the user's entries joined with their tickers, ordered by symbol.
func (r *watchlistRepository) ListByUser(ctx context.Context, userID string) ([]entity.WatchlistTicker, error) {
	var rows []entity.WatchlistTicker
	err := r.db.WithContext(ctx).
		Table("user_watchlist AS uw").
		Select("uw.user_id, uw.ticker_id, t.symbol, t.type, uw.notification_enabled, uw.created_at").
		Joins("JOIN tickers AS t ON t.ticker_id = uw.ticker_id").
		Where("uw.user_id = ?", userID).
		Order("t.symbol").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
