package handler

import (
	"net/http"

	"farmlink/internal/delivery/api/response"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CatalogHandler serves product listings.
type CatalogHandler struct{}

// NewCatalogHandler is the constructor for CatalogHandler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// CreateProductRequest represents the request body for a new listing
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,min=3"`
	Description string  `json:"description" validate:"required,min=10"`
	Image       string  `json:"image" validate:"required"`
	ImageHint   string  `json:"imageHint"`
	Price       float64 `json:"price" validate:"gt=0"`
}

// ListProducts returns the catalog, newest first.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, m.ListProducts())
}

// GetProduct returns one product.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	product, ok := m.ProductByID(c.Param("id"))
	if !ok {
		return response.HandleAppError(c, errors.WithStack(domainerrors.ErrProductNotFound))
	}

	return response.Success(c, http.StatusOK, product)
}

// CreateProduct lists a product for the signed-in farmer.
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	var req CreateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := m.CreateProduct(c.Request().Context(), usecase.CreateProductInput{
		Details: entity.ProductDetails{
			Name:        req.Name,
			Description: req.Description,
			Image:       req.Image,
			ImageHint:   req.ImageHint,
		},
		Price: req.Price,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	product, _ := m.ProductByID(id)

	return response.Success(c, http.StatusCreated, product)
}
