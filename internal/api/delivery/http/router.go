package http

import (
	"golang-stock-watchlist/internal/api/service"
	"golang-stock-watchlist/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Handlers groups the api-service handlers.
type Handlers struct {
	Article   *ArticleHandler
	Watchlist *WatchlistHandler
	Ticker    *TickerHandler
	Auth      *AuthHandler
	Health    *HealthHandler
}

// RouterConfig carries what the route table needs besides the handlers.
type RouterConfig struct {
	BasePath      string
	SessionCookie string
	IngestAPIKey  string
}

// RegisterRoutes mounts every api route on e.
func RegisterRoutes(e *echo.Echo, cfg RouterConfig, h Handlers, auth service.AuthService, log *logger.Logger) {
	session := SessionAuth(auth, cfg.SessionCookie, log)
	ingest := IngestKey(cfg.IngestAPIKey)

	if h.Health != nil {
		e.GET("/health", h.Health.Health)
	}

	api := e.Group(cfg.BasePath)
	h.Article.RegisterRoutes(api.Group("/articles"), session, ingest)
	h.Watchlist.RegisterRoutes(api.Group("/users", session))
	h.Ticker.RegisterRoutes(api.Group("/tickers", session))
	h.Auth.RegisterRoutes(api.Group("/auth"))
}
