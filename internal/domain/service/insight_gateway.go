package service

import (
	"context"

	"farmlink/internal/domain/entity"
)

// PriceRequest is the input for a listing price suggestion.
type PriceRequest struct {
	ProductName        string  `json:"productName"`
	ProductDescription string  `json:"productDescription"`
	ProductImage       string  `json:"productImage"` // Data URI or URL
	MarketTrends       string  `json:"marketTrends"`
	LogisticsCost      float64 `json:"logisticsCost"`
	DistanceToMarket   float64 `json:"distanceToMarket"` // Kilometres
}

// CatalogEntry is a product as presented to the recommender.
type CatalogEntry struct {
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	FarmerID    string  `json:"farmerId"`
}

// RecommendationRequest is the input for product recommendations.
type RecommendationRequest struct {
	OrderHistory []entity.OrderHistoryEntry `json:"orderHistory"`
	Catalog      []CatalogEntry             `json:"productCatalog"`
}

// InsightGateway wraps the external generation service.
type InsightGateway interface {
	// PredictPrice suggests a listing price, retrying a bounded number of times.
	PredictPrice(ctx context.Context, req PriceRequest) (*entity.PricePrediction, error)

	// MarketTrends synthesises a short price history and narrative for a product.
	MarketTrends(ctx context.Context, productName string) (*entity.MarketTrends, error)

	// RecommendProducts ranks catalog products for a buyer's order history.
	RecommendProducts(ctx context.Context, req RecommendationRequest) ([]entity.Recommendation, error)

	// GenerateProductImage draws an illustration of the product and returns it as a data URI.
	GenerateProductImage(ctx context.Context, productName string) (*entity.ProductImage, error)
}

// MarketInfoProvider answers the gateway's market-information callback.
type MarketInfoProvider interface {
	MarketInformation(ctx context.Context, productName string) (string, error)
}

// DistanceCalculator measures great-circle distance between two points.
type DistanceCalculator interface {
	// DistanceKm returns the distance in kilometres.
	DistanceKm(from, to entity.Location) float64
}
