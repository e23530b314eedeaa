package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"farmlink/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimits(t *testing.T) {
	cfg := &config.Config{}
	cfg.HTTP.MaxRequestBodySize = "1K"
	cfg.HTTP.MaxImageBodySize = "8K"

	e := echo.New()
	e.Use(bodyLimits(cfg)...)
	readAll := func(c echo.Context) error {
		if _, err := io.ReadAll(c.Request().Body); err != nil {
			return err
		}

		return c.NoContent(http.StatusNoContent)
	}
	e.POST("/api/v1/products", readAll)
	e.POST("/api/v1/insights/price", readAll)
	e.POST("/api/v1/cart/items", readAll)

	tests := []struct {
		name       string
		path       string
		size       int
		wantStatus int
	}{
		{name: "listing with photo", path: "/api/v1/products", size: 4 * 1024, wantStatus: http.StatusNoContent},
		{name: "price request with photo", path: "/api/v1/insights/price", size: 4 * 1024, wantStatus: http.StatusNoContent},
		{name: "listing over image limit", path: "/api/v1/products", size: 9 * 1024, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "cart line over default limit", path: "/api/v1/cart/items", size: 4 * 1024, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "small cart line", path: "/api/v1/cart/items", size: 100, wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(strings.Repeat("a", tt.size)))
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
