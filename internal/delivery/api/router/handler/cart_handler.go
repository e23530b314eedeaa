package handler

import (
	"net/http"

	"farmlink/internal/delivery/api/response"
	domainerrors "farmlink/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CartHandler manages the session's cart.
type CartHandler struct{}

// NewCartHandler is the constructor for CartHandler
func NewCartHandler() *CartHandler {
	return &CartHandler{}
}

// AddCartItemRequest represents the request body for adding a product to the cart
type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// UpdateCartItemRequest overwrites a line's quantity; zero or less removes the line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the cart with subtotal, fees and total.
func (h *CartHandler) GetCart(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, m.CartSummary())
}

// AddItem adds a catalog product to the cart, merging quantities.
func (h *CartHandler) AddItem(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	var req AddCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, ok := m.ProductByID(req.ProductID)
	if !ok {
		return response.HandleAppError(c, errors.WithStack(domainerrors.ErrProductNotFound))
	}

	if err := m.AddToCart(product, req.Quantity); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, m.CartSummary())
}

// UpdateItem sets the quantity of a cart line.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("invalid request body"))
	}

	m.SetCartQuantity(c.Param("productId"), req.Quantity)

	return response.Success(c, http.StatusOK, m.CartSummary())
}

// RemoveItem drops a cart line.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	m.RemoveFromCart(c.Param("productId"))

	return response.Success(c, http.StatusOK, m.CartSummary())
}

// Clear empties the cart.
func (h *CartHandler) Clear(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	m.ClearCart()

	return response.Success(c, http.StatusOK, m.CartSummary())
}
