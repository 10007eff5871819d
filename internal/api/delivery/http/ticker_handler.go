package http

import (
	"net/http"

	"golang-stock-watchlist/internal/api/service"
	"golang-stock-watchlist/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TickerHandler handles HTTP requests for tickers.
type TickerHandler struct {
	tickerService service.TickerService
	logger        *logger.Logger
}

// NewTickerHandler creates a new TickerHandler.
func NewTickerHandler(tickerService service.TickerService, logger *logger.Logger) *TickerHandler {
	return &TickerHandler{tickerService: tickerService, logger: logger}
}

// RegisterRoutes registers the ticker routes to the Echo group.
func (h *TickerHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListTickers)
	g.GET("/:symbol", h.GetTicker)
}

// GetTicker godoc
// @Summary Get a ticker by symbol
// @Tags tickers
// @Produce  json
// @Param   symbol  path    string true    "Ticker symbol"
// @Success 200 {object} dto.TickerResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tickers/{symbol} [get]
func (h *TickerHandler) GetTicker(c echo.Context) error {
	resp, err := h.tickerService.GetBySymbol(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListTickers godoc
// @Summary List tickers
// @Tags tickers
// @Produce  json
// @Param   type  query    string false    "stock or crypto"
// @Success 200 {array} dto.TickerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tickers [get]
func (h *TickerHandler) ListTickers(c echo.Context) error {
	resp, err := h.tickerService.ListByType(c.Request().Context(), c.QueryParam("type"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}
