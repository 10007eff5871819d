package service

import (
	"context"
	"errors"
	"strings"

	"golang-stock-watchlist/internal/api/dto"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/repository"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/utils"
)

// ArticleService defines article ingestion and sentiment operations.
type ArticleService interface {
	CreateArticle(ctx context.Context, req *dto.CreateArticleRequest) (*dto.ArticleResponse, error)
	BulkCreate(ctx context.Context, req *dto.BulkArticlesRequest) (*dto.BulkArticlesResponse, error)
	UpsertTickerSentiment(ctx context.Context, articleID string, req *dto.UpsertTickerSentimentRequest) (*dto.ArticleTickerResponse, error)
	GetTickerSentiments(ctx context.Context, articleID string) ([]dto.ArticleTickerResponse, error)
	ListArticles(ctx context.Context) ([]dto.ArticleWithTickersResponse, error)
	ListArticlesByTicker(ctx context.Context, symbol string) ([]dto.ArticleWithTickersResponse, error)
	FindArticleID(url string) (*dto.ArticleIDResponse, error)
}

// NewArticleService creates a new article service.
func NewArticleService(
	articleRepo repository.NewsArticleRepository,
	sentimentRepo repository.ArticleTickerSentimentRepository,
	tickerRepo repository.TickerRepository,
	alerts AlertDispatcher,
	log *logger.Logger,
) ArticleService {
	return &articleService{
		articleRepo:   articleRepo,
		sentimentRepo: sentimentRepo,
		tickerRepo:    tickerRepo,
		alerts:        alerts,
		logger:        log,
	}
}

type articleService struct {
	articleRepo   repository.NewsArticleRepository
	sentimentRepo repository.ArticleTickerSentimentRepository
	tickerRepo    repository.TickerRepository
	alerts        AlertDispatcher
	logger        *logger.Logger
}

// buildArticle validates a request and derives the article id from the trimmed URL.
func buildArticle(req *dto.CreateArticleRequest) (*entity.NewsArticle, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, newValidationError("missing or invalid url")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, newValidationError("missing or invalid title")
	}
	if req.Summary == nil || req.PublishedAt == nil {
		return nil, newValidationError("missing required fields: title, url, summary and publishedAt")
	}
	publishedAt, err := utils.ParsePublishedAt(*req.PublishedAt)
	if err != nil {
		return nil, newValidationError("publishedAt is not a valid date")
	}

	articleID := utils.ArticleID(url)
	if req.ArticleID != "" && req.ArticleID != articleID {
		return nil, newValidationError("articleId does not match url")
	}

	return &entity.NewsArticle{
		ArticleID:             articleID,
		URL:                   url,
		Title:                 title,
		Summary:               *req.Summary,
		PublishedAt:           publishedAt,
		OverallSentimentScore: req.OverallSentimentScore.Value,
		OverallSentimentLabel: req.OverallSentimentLabel,
	}, nil
}

func (s *articleService) CreateArticle(ctx context.Context, req *dto.CreateArticleRequest) (*dto.ArticleResponse, error) {
	if req == nil {
		return nil, newValidationError("invalid request payload")
	}
	article, err := buildArticle(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.articleRepo.FindByID(ctx, article.ArticleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateArticle
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateArticle
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "Article created", logger.StringField("article_id", article.ArticleID))
	resp := toArticleResponse(article)
	return &resp, nil
}

type sentimentKey struct {
	articleID string
	tickerID  uint
}

// BulkCreate validates the whole batch before writing anything. Articles whose URL is already
// stored are skipped; sentiments are upserted with the last occurrence of a pair winning.
func (s *articleService) BulkCreate(ctx context.Context, req *dto.BulkArticlesRequest) (*dto.BulkArticlesResponse, error) {
	if req == nil || req.Articles == nil || req.Sentiments == nil {
		return nil, newValidationError("articles and sentiments must be arrays")
	}
	if len(req.Articles) == 0 && len(req.Sentiments) == 0 {
		return nil, newValidationError("at least one article or sentiment must be provided")
	}

	articles := make([]entity.NewsArticle, 0, len(req.Articles))
	known := make(map[string]entity.NewsArticle, len(req.Articles))
	for i := range req.Articles {
		article, err := buildArticle(&req.Articles[i])
		if err != nil {
			return nil, err
		}
		if _, dup := known[article.ArticleID]; dup {
			continue
		}
		known[article.ArticleID] = *article
		articles = append(articles, *article)
	}

	symbols := make([]string, 0, len(req.Sentiments))
	var missingArticles []string
	for i := range req.Sentiments {
		in := &req.Sentiments[i]
		in.ArticleID = strings.TrimSpace(in.ArticleID)
		in.TickerSymbol = strings.TrimSpace(in.TickerSymbol)
		if in.ArticleID == "" || in.TickerSymbol == "" {
			return nil, newValidationError("each sentiment must have articleId and tickerSymbol")
		}
		symbols = append(symbols, in.TickerSymbol)
		if _, ok := known[in.ArticleID]; !ok {
			missingArticles = append(missingArticles, in.ArticleID)
		}
	}

	tickers, err := s.tickerRepo.FindBySymbols(ctx, symbols)
	if err != nil {
		return nil, err
	}
	tickerBySymbol := make(map[string]entity.Ticker, len(tickers))
	for _, t := range tickers {
		tickerBySymbol[t.Symbol] = t
	}
	for _, sym := range symbols {
		if _, ok := tickerBySymbol[sym]; !ok {
			return nil, newValidationError("invalid tickerSymbol %s; ticker not found", sym)
		}
	}

	if len(missingArticles) > 0 {
		stored, err := s.articleRepo.FindByIDs(ctx, missingArticles)
		if err != nil {
			return nil, err
		}
		for _, a := range stored {
			known[a.ArticleID] = a
		}
		for _, id := range missingArticles {
			if _, ok := known[id]; !ok {
				return nil, newValidationError("invalid articleId %s; article not found", id)
			}
		}
	}

	rows := make([]entity.ArticleTickerSentiment, 0, len(req.Sentiments))
	index := make(map[sentimentKey]int, len(req.Sentiments))
	positive := make(map[sentimentKey]bool, len(req.Sentiments))
	for _, in := range req.Sentiments {
		ticker := tickerBySymbol[in.TickerSymbol]
		row := entity.ArticleTickerSentiment{
			ArticleID:            in.ArticleID,
			TickerID:             ticker.TickerID,
			TickerSentimentScore: in.TickerSentimentScore.Value,
			TickerSentimentLabel: in.TickerSentimentLabel,
			RelevanceScore:       in.RelevanceScore.Value,
		}
		key := sentimentKey{articleID: in.ArticleID, tickerID: ticker.TickerID}
		positive[key] = in.TickerSentimentScore.Positive()
		if i, ok := index[key]; ok {
			rows[i] = row
			continue
		}
		index[key] = len(rows)
		rows = append(rows, row)
	}

	inserted, err := s.articleRepo.CreateIgnoreConflict(ctx, articles)
	if err != nil {
		return nil, err
	}
	if err := s.sentimentRepo.BulkUpsert(ctx, rows); err != nil {
		return nil, err
	}

	symbolByID := make(map[uint]string, len(tickers))
	for _, t := range tickers {
		symbolByID[t.TickerID] = t.Symbol
	}
	queued := 0
	for _, row := range rows {
		if !positive[sentimentKey{articleID: row.ArticleID, tickerID: row.TickerID}] {
			continue
		}
		article := known[row.ArticleID]
		s.alerts.Dispatch(SentimentAlert{
			ArticleID: row.ArticleID,
			Ticker:    symbolByID[row.TickerID],
			Title:     article.Title,
			URL:       article.URL,
			Score:     *row.TickerSentimentScore,
		})
		queued++
	}

	s.logger.InfoContext(ctx, "Bulk article ingestion completed",
		logger.Field("articles_inserted", inserted),
		logger.IntField("sentiments_upserted", len(rows)),
		logger.IntField("alerts_queued", queued))

	return &dto.BulkArticlesResponse{
		Message:            "Bulk operation completed successfully",
		ArticlesInserted:   inserted,
		SentimentsUpserted: len(rows),
		AlertsQueued:       queued,
	}, nil
}

func (s *articleService) UpsertTickerSentiment(ctx context.Context, articleID string, req *dto.UpsertTickerSentimentRequest) (*dto.ArticleTickerResponse, error) {
	if req == nil {
		return nil, newValidationError("invalid request payload")
	}
	symbol := strings.TrimSpace(req.TickerSymbol)
	if symbol == "" {
		return nil, newValidationError("missing or invalid tickerSymbol")
	}
	articleID = strings.TrimSpace(articleID)
	if articleID == "" {
		return nil, newValidationError("invalid articleId")
	}

	ticker, err := s.tickerRepo.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if ticker == nil {
		return nil, newValidationError("invalid tickerSymbol; ticker not found")
	}

	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}

	row := &entity.ArticleTickerSentiment{
		ArticleID:            articleID,
		TickerID:             ticker.TickerID,
		TickerSentimentScore: req.TickerSentimentScore.Value,
		TickerSentimentLabel: req.TickerSentimentLabel,
		RelevanceScore:       req.RelevanceScore.Value,
	}
	if err := s.sentimentRepo.Upsert(ctx, row); err != nil {
		return nil, err
	}

	row.Ticker = ticker
	resp := toArticleTickerResponse(row)
	return &resp, nil
}

func (s *articleService) GetTickerSentiments(ctx context.Context, articleID string) ([]dto.ArticleTickerResponse, error) {
	articleID = strings.TrimSpace(articleID)
	if articleID == "" {
		return nil, newValidationError("invalid articleId")
	}
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}

	rows, err := s.sentimentRepo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ArticleTickerResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, toArticleTickerResponse(&rows[i]))
	}
	return resp, nil
}

func (s *articleService) ListArticles(ctx context.Context) ([]dto.ArticleWithTickersResponse, error) {
	articles, err := s.articleRepo.ListWithSentiments(ctx)
	if err != nil {
		return nil, err
	}
	return toArticleList(articles), nil
}

func (s *articleService) ListArticlesByTicker(ctx context.Context, symbol string) ([]dto.ArticleWithTickersResponse, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, newValidationError("missing or invalid tickerSymbol")
	}
	ticker, err := s.tickerRepo.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if ticker == nil {
		return nil, newValidationError("invalid tickerSymbol; ticker not found")
	}

	articles, err := s.articleRepo.ListByTicker(ctx, ticker.TickerID)
	if err != nil {
		return nil, err
	}
	return toArticleList(articles), nil
}

func (s *articleService) FindArticleID(url string) (*dto.ArticleIDResponse, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, newValidationError("missing or invalid url")
	}
	return &dto.ArticleIDResponse{ArticleID: utils.ArticleID(url)}, nil
}

func toArticleList(articles []entity.NewsArticle) []dto.ArticleWithTickersResponse {
	resp := make([]dto.ArticleWithTickersResponse, 0, len(articles))
	for i := range articles {
		resp = append(resp, toArticleWithTickersResponse(&articles[i]))
	}
	return resp
}
