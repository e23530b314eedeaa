package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "farmlink/internal/delivery/context"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	keySessionID   = "sessionID"
	keyMarketplace = "marketplace"
)

// SessionMiddlewareParams holds dependencies for SessionMiddleware, injected by Fx.
type SessionMiddlewareParams struct {
	fx.In

	Sessions usecase.SessionUsecase
	Logger   *slog.Logger
}

// SessionMiddleware resolves the bearer session token to the session's marketplace.
type SessionMiddleware struct {
	sessions usecase.SessionUsecase
	logger   *slog.Logger
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(params SessionMiddlewareParams) *SessionMiddleware {
	return &SessionMiddleware{
		sessions: params.Sessions,
		logger:   params.Logger,
	}
}

// Authenticate validates the session token and stores the marketplace on the context.
func (m *SessionMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return errors.WithStack(domainerrors.ErrSessionInvalid.WithDetails("authorization header is missing"))
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			return errors.WithStack(domainerrors.ErrSessionInvalid.WithDetails("token must be a Bearer token"))
		}

		ctx := c.Request().Context()

		sessionID, err := m.sessions.Authenticate(ctx, token)
		if err != nil {
			return err
		}

		marketplace, err := m.sessions.Open(ctx, sessionID)
		if err != nil {
			return err
		}

		// Session-scoped logger for the rest of the request
		c.SetRequest(c.Request().WithContext(deliverycontext.WithSession(ctx, sessionID, m.logger)))
		SetMarketplace(c, sessionID, marketplace)

		return next(c)
	}
}

// GetSessionID returns the authenticated session ID.
func GetSessionID(c echo.Context) (string, bool) {
	id, ok := c.Get(keySessionID).(string)

	return id, ok && id != ""
}

// GetMarketplace returns the authenticated session's marketplace.
func GetMarketplace(c echo.Context) (usecase.Marketplace, bool) {
	m, ok := c.Get(keyMarketplace).(usecase.Marketplace)

	return m, ok
}

// SetMarketplace stores the session's marketplace on the echo context for the handlers.
func SetMarketplace(c echo.Context, sessionID string, m usecase.Marketplace) {
	c.Set(keySessionID, sessionID)
	c.Set(keyMarketplace, m)
}
