// Package handler contains the echo handlers of the API server.
package handler

import (
	"net/http"

	"farmlink/internal/delivery/api/middleware"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// HealthCheck reports liveness.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// marketplace returns the session's marketplace set by the session middleware.
func marketplace(c echo.Context) (usecase.Marketplace, error) {
	m, ok := middleware.GetMarketplace(c)
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrSessionInvalid)
	}

	return m, nil
}

// bindAndValidate decodes the request body into req and validates it.
// The returned error is rendered by the error handler.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("invalid request body"))
	}

	return c.Validate(req)
}

// messageResponse is the body of operations that return no data.
type messageResponse struct {
	Message string `json:"message"`
}
