package handler

import (
	"net/http"

	"farmlink/internal/delivery/api/response"

	"github.com/labstack/echo/v4"
)

// OrderHandler handles checkout and order history.
type OrderHandler struct{}

// NewOrderHandler is the constructor for OrderHandler
func NewOrderHandler() *OrderHandler {
	return &OrderHandler{}
}

// Checkout places an order for the cart and empties it.
func (h *OrderHandler) Checkout(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	order, err := m.Checkout(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, order)
}

// ListOrders returns the signed-in marketman's purchases, newest first.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	orders, err := m.PurchaseHistory()
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, orders)
}

// ListSales returns the signed-in farmer's sold lines, newest first.
func (h *OrderHandler) ListSales(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	sales, err := m.SalesHistory()
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, sales)
}
