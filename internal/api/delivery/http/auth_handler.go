package http

import (
	"net/http"

	"golang-stock-watchlist/internal/api/service"
	"golang-stock-watchlist/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AuthHandler exposes the session issued by the identity provider.
type AuthHandler struct {
	authService service.AuthService
	cookieName  string
	logger      *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, cookieName string, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookieName: cookieName, logger: logger}
}

// RegisterRoutes registers the auth routes to the Echo group.
func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/session", h.GetSession)
	g.POST("/logout", h.Logout)
}

// GetSession godoc
// @Summary Get the current session user
// @Tags auth
// @Produce  json
// @Success 200 {object} dto.SessionResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/session [get]
func (h *AuthHandler) GetSession(c echo.Context) error {
	resp, err := h.authService.GetSession(c.Request().Context(), sessionID(c, h.cookieName))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Delete the current session
// @Tags auth
// @Produce  json
// @Success 200 {object} dto.SuccessResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), sessionID(c, h.cookieName)); err != nil {
		return respondError(c, h.logger, err)
	}
	c.SetCookie(&http.Cookie{Name: h.cookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
