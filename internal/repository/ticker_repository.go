package repository

import (
	"context"

	"golang-stock-watchlist/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TickerRepository defines the interface for ticker data operations.
type TickerRepository interface {
	FindBySymbol(ctx context.Context, symbol string) (*entity.Ticker, error)
	FindBySymbols(ctx context.Context, symbols []string) ([]entity.Ticker, error)
	FindOrCreate(ctx context.Context, symbol, tickerType string) (*entity.Ticker, error)
	ListByType(ctx context.Context, tickerType string) ([]entity.Ticker, error)
}

// NewTickerRepository creates a new GORM-based ticker repository.
func NewTickerRepository(db *gorm.DB) TickerRepository {
	return &tickerRepository{db: db}
}

type tickerRepository struct {
	db *gorm.DB
}

// FindBySymbol returns nil when the symbol is unknown.
func (r *tickerRepository) FindBySymbol(ctx context.Context, symbol string) (*entity.Ticker, error) {
	var ticker entity.Ticker
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&ticker).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &ticker, nil
}

func (r *tickerRepository) FindBySymbols(ctx context.Context, symbols []string) ([]entity.Ticker, error) {
	var tickers []entity.Ticker
	if len(symbols) == 0 {
		return tickers, nil
	}
	if err := r.db.WithContext(ctx).Where("symbol IN ?", symbols).Find(&tickers).Error; err != nil {
		return nil, err
	}
	return tickers, nil
}

// FindOrCreate inserts the ticker unless the symbol exists and returns the stored row.
// Two requests creating the same symbol concurrently both end up with the same row.
func (r *tickerRepository) FindOrCreate(ctx context.Context, symbol, tickerType string) (*entity.Ticker, error) {
	ticker := entity.Ticker{Symbol: symbol, Type: tickerType}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoNothing: true,
	}).Create(&ticker).Error
	if err != nil {
		return nil, err
	}
	return r.FindBySymbol(ctx, symbol)
}

// ListByType lists tickers ordered by symbol; an empty type lists all of them.
func (r *tickerRepository) ListByType(ctx context.Context, tickerType string) ([]entity.Ticker, error) {
	var tickers []entity.Ticker
	q := r.db.WithContext(ctx).Order("symbol")
	if tickerType != "" {
		q = q.Where("type = ?", tickerType)
	}
	if err := q.Find(&tickers).Error; err != nil {
		return nil, err
	}
	return tickers, nil
}
