package http

import (
	"net/http"

	"golang-stock-watchlist/internal/api/dto"
	"golang-stock-watchlist/internal/api/service"
	"golang-stock-watchlist/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ArticleHandler handles HTTP requests for news articles and their ticker sentiments.
type ArticleHandler struct {
	articleService service.ArticleService
	logger         *logger.Logger
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(articleService service.ArticleService, logger *logger.Logger) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, logger: logger}
}

// RegisterRoutes registers the article routes to the Echo group.
// Reads of the full article list need a session; writes go through the ingest key check.
func (h *ArticleHandler) RegisterRoutes(g *echo.Group, session, ingest echo.MiddlewareFunc) {
	g.GET("", h.ListArticles, session)
	g.POST("", h.CreateArticle, ingest)
	g.POST("/bulk", h.BulkCreate, ingest)
	g.GET("/findSentiments/:tickerSymbol", h.FindSentiments)
	g.GET("/findArticleId", h.FindArticleID)
	g.GET("/:id/tickers", h.GetTickerSentiments)
	g.POST("/:id/tickers", h.UpsertTickerSentiment, ingest)
}

// CreateArticle godoc
// @Summary Create a news article
// @Description Stores an article; the id is the sha256 of the trimmed URL
// @Tags articles
// @Accept  json
// @Produce  json
// @Param   article  body    dto.CreateArticleRequest   true    "Article to create"
// @Success 201 {object} dto.ArticleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /articles [post]
func (h *ArticleHandler) CreateArticle(c echo.Context) error {
	var req dto.CreateArticleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	resp, err := h.articleService.CreateArticle(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// BulkCreate godoc
// @Summary Bulk create articles and sentiments
// @Description Inserts articles ignoring URL conflicts, upserts ticker sentiments and alerts on positive scores
// @Tags articles
// @Accept  json
// @Produce  json
// @Param   payload  body    dto.BulkArticlesRequest   true    "Articles and sentiments"
// @Success 201 {object} dto.BulkArticlesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /articles/bulk [post]
func (h *ArticleHandler) BulkCreate(c echo.Context) error {
	var req dto.BulkArticlesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	resp, err := h.articleService.BulkCreate(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListArticles godoc
// @Summary List articles
// @Description All articles with their ticker sentiments, newest first
// @Tags articles
// @Produce  json
// @Success 200 {array} dto.ArticleWithTickersResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /articles [get]
func (h *ArticleHandler) ListArticles(c echo.Context) error {
	articles, err := h.articleService.ListArticles(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, articles)
}

// FindSentiments godoc
// @Summary List articles for a ticker
// @Tags articles
// @Produce  json
// @Param   tickerSymbol  path    string true    "Ticker symbol"
// @Success 200 {array} dto.ArticleWithTickersResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /articles/findSentiments/{tickerSymbol} [get]
func (h *ArticleHandler) FindSentiments(c echo.Context) error {
	articles, err := h.articleService.ListArticlesByTicker(c.Request().Context(), c.Param("tickerSymbol"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, articles)
}

// FindArticleID godoc
// @Summary Derive an article id from a URL
// @Tags articles
// @Produce  json
// @Param   url  query    string true    "Article URL"
// @Success 200 {object} dto.ArticleIDResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /articles/findArticleId [get]
func (h *ArticleHandler) FindArticleID(c echo.Context) error {
	resp, err := h.articleService.FindArticleID(c.QueryParam("url"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetTickerSentiments godoc
// @Summary Get the ticker sentiments of an article
// @Tags articles
// @Produce  json
// @Param   id  path    string true    "Article ID"
// @Success 200 {array} dto.ArticleTickerResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /articles/{id}/tickers [get]
func (h *ArticleHandler) GetTickerSentiments(c echo.Context) error {
	rows, err := h.articleService.GetTickerSentiments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// UpsertTickerSentiment godoc
// @Summary Upsert a ticker sentiment of an article
// @Tags articles
// @Accept  json
// @Produce  json
// @Param   id  path    string true    "Article ID"
// @Param   sentiment  body    dto.UpsertTickerSentimentRequest   true    "Ticker sentiment"
// @Success 200 {object} dto.ArticleTickerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /articles/{id}/tickers [post]
func (h *ArticleHandler) UpsertTickerSentiment(c echo.Context) error {
	var req dto.UpsertTickerSentimentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	resp, err := h.articleService.UpsertTickerSentiment(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}
