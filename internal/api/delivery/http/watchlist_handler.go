package http

import (
	"net/http"
	"strconv"

	"golang-stock-watchlist/internal/api/dto"
	"golang-stock-watchlist/internal/api/service"
	"golang-stock-watchlist/pkg/logger"

	"github.com/labstack/echo/v4"
)

// WatchlistHandler handles the session user's watchlist and notification toggles.
type WatchlistHandler struct {
	watchlistService service.WatchlistService
	logger           *logger.Logger
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(watchlistService service.WatchlistService, logger *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{watchlistService: watchlistService, logger: logger}
}

// RegisterRoutes registers the user routes to the Echo group. The group must carry SessionAuth.
func (h *WatchlistHandler) RegisterRoutes(g *echo.Group) {
	g.PATCH("/notifications", h.SetGlobalNotification)
	g.GET("/notifications/history", h.GetNotificationHistory)
	g.GET("/watchlist", h.GetWatchlist)
	g.POST("/watchlist", h.AddToWatchlist)
	g.DELETE("/watchlist/:symbol", h.RemoveFromWatchlist)
	g.PATCH("/watchlist/:symbol/notifications", h.SetTickerNotification)
}

func (h *WatchlistHandler) userID(c echo.Context) string {
	if user := currentUser(c); user != nil {
		return user.UserID
	}
	return ""
}

// SetGlobalNotification godoc
// @Summary Toggle all notifications of the session user
// @Tags users
// @Accept  json
// @Produce  json
// @Param   payload  body    dto.SetNotificationsRequest   true    "Global flag"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/notifications [patch]
func (h *WatchlistHandler) SetGlobalNotification(c echo.Context) error {
	var req dto.SetNotificationsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	resp, err := h.watchlistService.SetGlobalNotification(c.Request().Context(), h.userID(c), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetWatchlist godoc
// @Summary Get the session user's watchlist
// @Tags users
// @Produce  json
// @Success 200 {array} dto.WatchlistEntryResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/watchlist [get]
func (h *WatchlistHandler) GetWatchlist(c echo.Context) error {
	rows, err := h.watchlistService.GetWatchlist(c.Request().Context(), h.userID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// AddToWatchlist godoc
// @Summary Add a ticker to the watchlist
// @Description Creates the ticker when a type is given and pushes the new notification filter
// @Tags users
// @Accept  json
// @Produce  json
// @Param   payload  body    dto.AddWatchlistRequest   true    "Ticker to watch"
// @Success 201 {object} dto.WatchlistEntryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/watchlist [post]
func (h *WatchlistHandler) AddToWatchlist(c echo.Context) error {
	var req dto.AddWatchlistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	resp, err := h.watchlistService.AddToWatchlist(c.Request().Context(), h.userID(c), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// RemoveFromWatchlist godoc
// @Summary Remove a ticker from the watchlist
// @Tags users
// @Produce  json
// @Param   symbol  path    string true    "Ticker symbol"
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/watchlist/{symbol} [delete]
func (h *WatchlistHandler) RemoveFromWatchlist(c echo.Context) error {
	resp, err := h.watchlistService.RemoveFromWatchlist(c.Request().Context(), h.userID(c), c.Param("symbol"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// SetTickerNotification godoc
// @Summary Toggle notifications for one ticker
// @Tags users
// @Accept  json
// @Produce  json
// @Param   symbol  path    string true    "Ticker symbol"
// @Param   payload  body    dto.SetTickerNotificationRequest   true    "Ticker flag"
// @Success 200 {object} dto.WatchlistEntryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/watchlist/{symbol}/notifications [patch]
func (h *WatchlistHandler) SetTickerNotification(c echo.Context) error {
	var req dto.SetTickerNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	resp, err := h.watchlistService.SetTickerNotification(c.Request().Context(), h.userID(c), c.Param("symbol"), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetNotificationHistory godoc
// @Summary List recent notification filter syncs of the session user
// @Description Newest first; failed syncs carry the error and are retried by the sync service
// @Tags users
// @Produce  json
// @Param   limit  query  int  false  "Maximum rows (default 20, max 100)"
// @Success 200 {array} dto.SyncLogResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/notifications/history [get]
func (h *WatchlistHandler) GetNotificationHistory(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be an integer"})
		}
		limit = n
	}

	logs, err := h.watchlistService.GetNotificationHistory(c.Request().Context(), h.userID(c), limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, logs)
}
