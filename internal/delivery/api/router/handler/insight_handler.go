package handler

import (
	"log/slog"
	"net/http"

	"farmlink/internal/delivery/api/response"
	"farmlink/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// InsightHandlerParams holds dependencies for InsightHandler, injected by Fx.
type InsightHandlerParams struct {
	fx.In

	Insights usecase.InsightUsecase
	Logger   *slog.Logger
}

// InsightHandler serves price suggestions, market trends and recommendations.
type InsightHandler struct {
	insights usecase.InsightUsecase
	logger   *slog.Logger
}

// NewInsightHandler is the constructor for InsightHandler
func NewInsightHandler(params InsightHandlerParams) *InsightHandler {
	return &InsightHandler{
		insights: params.Insights,
		logger:   params.Logger,
	}
}

// SuggestPriceRequest represents the request body for a price suggestion
type SuggestPriceRequest struct {
	ProductName        string `json:"productName" validate:"required"`
	ProductDescription string `json:"productDescription"`
	ProductImage       string `json:"productImage"`
	MarketTrends       string `json:"marketTrends"`
}

// SuggestPrice predicts a listing price for the signed-in farmer.
func (h *InsightHandler) SuggestPrice(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	var req SuggestPriceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	suggestion, err := h.insights.SuggestPrice(c.Request().Context(), m, usecase.SuggestPriceInput{
		ProductName:        req.ProductName,
		ProductDescription: req.ProductDescription,
		ProductImage:       req.ProductImage,
		MarketTrends:       req.MarketTrends,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, suggestion)
}

// MarketTrends narrates recent prices of a catalog product.
func (h *InsightHandler) MarketTrends(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	trends, err := h.insights.MarketTrends(c.Request().Context(), m, c.Param("productId"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, trends)
}

// ProductImageRequest represents the request body for a generated listing image
type ProductImageRequest struct {
	ProductName string `json:"productName" validate:"required,max=100"`
}

// ProductImage draws a placeholder photo for a listing the signed-in farmer is creating.
func (h *InsightHandler) ProductImage(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	var req ProductImageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	image, err := h.insights.ProductImage(c.Request().Context(), m, req.ProductName)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, image)
}

// Recommendations ranks catalog products for the signed-in marketman.
func (h *InsightHandler) Recommendations(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	recs, err := h.insights.Recommendations(c.Request().Context(), m)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, recs)
}
