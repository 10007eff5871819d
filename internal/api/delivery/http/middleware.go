package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang-stock-watchlist/internal/api/service"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	contextKeyUser = "user"
	headerAPIKey   = "X-API-Key"
)

// sessionID reads the session from a bearer token first and the session cookie second.
func sessionID(c echo.Context, cookieName string) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// SessionAuth rejects requests without a live session and stores the session user on the context.
func SessionAuth(auth service.AuthService, cookieName string, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := auth.ResolveSession(c.Request().Context(), sessionID(c, cookieName))
			if err != nil {
				return respondError(c, log, err)
			}
			c.Set(contextKeyUser, user)
			return next(c)
		}
	}
}

// IngestKey guards article writes when a key is configured. An empty key disables the check.
func IngestKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if key == "" {
			return next
		}
		return func(c echo.Context) error {
			got := c.Request().Header.Get(headerAPIKey)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid api key"})
			}
			return next(c)
		}
	}
}

// RequestContext copies echo's request id into the request context so log lines carry it.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = c.Request().Header.Get(echo.HeaderXRequestID)
			}
			if id != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
			}
			return next(c)
		}
	}
}

func currentUser(c echo.Context) *entity.User {
	user, _ := c.Get(contextKeyUser).(*entity.User)
	return user
}
