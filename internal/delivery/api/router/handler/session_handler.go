package handler

import (
	"log/slog"
	"net/http"

	"farmlink/internal/delivery/api/response"
	"farmlink/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// SessionHandlerParams holds dependencies for SessionHandler, injected by Fx.
type SessionHandlerParams struct {
	fx.In

	Sessions usecase.SessionUsecase
	Logger   *slog.Logger
}

// SessionHandler mints client sessions.
type SessionHandler struct {
	sessions usecase.SessionUsecase
	logger   *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler
func NewSessionHandler(params SessionHandlerParams) *SessionHandler {
	return &SessionHandler{
		sessions: params.Sessions,
		logger:   params.Logger,
	}
}

// CreateSession starts a new isolated session and returns its bearer token.
func (h *SessionHandler) CreateSession(c echo.Context) error {
	session, err := h.sessions.CreateSession(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, session)
}
