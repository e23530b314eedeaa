// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"farmlink/internal/domain/entity"
)

// SuggestPriceInput describes the listing a farmer wants priced.
type SuggestPriceInput struct {
	ProductName        string
	ProductDescription string
	ProductImage       string // Data URI or URL
	MarketTrends       string // Free-text hint from the farmer
}

// PriceSuggestion is the prediction plus the logistics figures it was based on.
type PriceSuggestion struct {
	entity.PricePrediction
	DistanceToMarket float64 `json:"distanceToMarket"`
	LogisticsCost    float64 `json:"logisticsCost"`
	Market           string  `json:"market"`
}

// InsightUsecase builds generation requests from session state.
type InsightUsecase interface {
	SuggestPrice(ctx context.Context, m Marketplace, input SuggestPriceInput) (*PriceSuggestion, error)
	MarketTrends(ctx context.Context, m Marketplace, productID string) (*entity.MarketTrends, error)
	Recommendations(ctx context.Context, m Marketplace) ([]entity.Recommendation, error)
	ProductImage(ctx context.Context, m Marketplace, productName string) (*entity.ProductImage, error)
}
