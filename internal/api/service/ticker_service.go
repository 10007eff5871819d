package service

import (
	"context"
	"strings"

	"golang-stock-watchlist/internal/api/dto"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/repository"
	"golang-stock-watchlist/pkg/logger"
)

// TickerService defines the ticker lookup operations.
type TickerService interface {
	GetBySymbol(ctx context.Context, symbol string) (*dto.TickerResponse, error)
	ListByType(ctx context.Context, tickerType string) ([]dto.TickerResponse, error)
}

// NewTickerService creates a new ticker service.
func NewTickerService(tickerRepo repository.TickerRepository, log *logger.Logger) TickerService {
	return &tickerService{tickerRepo: tickerRepo, logger: log}
}

type tickerService struct {
	tickerRepo repository.TickerRepository
	logger     *logger.Logger
}

func (s *tickerService) GetBySymbol(ctx context.Context, symbol string) (*dto.TickerResponse, error) {
	symbol, err := normalizeSymbol(symbol)
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
	resp := toTickerResponse(ticker)
	return &resp, nil
}

func (s *tickerService) ListByType(ctx context.Context, tickerType string) ([]dto.TickerResponse, error) {
	tickerType = strings.ToLower(strings.TrimSpace(tickerType))
	if tickerType != "" && !entity.IsValidTickerType(tickerType) {
		return nil, newValidationError("type must be 'stock' or 'crypto'")
	}
	tickers, err := s.tickerRepo.ListByType(ctx, tickerType)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TickerResponse, 0, len(tickers))
	for i := range tickers {
		resp = append(resp, toTickerResponse(&tickers[i]))
	}
	return resp, nil
}
