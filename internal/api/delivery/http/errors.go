package http

import (
	"errors"
	"net/http"

	"golang-stock-watchlist/internal/api/service"
	"golang-stock-watchlist/pkg/logger"

	"github.com/labstack/echo/v4"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case service.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTickerNotFound),
		errors.Is(err, service.ErrArticleNotFound),
		errors.Is(err, service.ErrWatchlistEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateArticle),
		errors.Is(err, service.ErrDuplicateWatchlistEntry):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, log *logger.Logger, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.ErrorContext(c.Request().Context(), "Request failed",
			logger.ErrorField(err),
			logger.StringField("method", c.Request().Method),
			logger.StringField("path", c.Path()))
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
