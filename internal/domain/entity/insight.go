// Package entity contains the core business objects of the project.
package entity

// PricePrediction is the generation service's suggested listing price.
type PricePrediction struct {
	PredictedPrice float64 `json:"predictedPrice"`
	Reasoning      string  `json:"reasoning"`
}

// ProductImage is a generated listing photo placeholder.
type ProductImage struct {
	ImageDataURI string `json:"imageDataUri"`
}

// PricePoint is one month of a synthesised price history.
type PricePoint struct {
	Date  string  `json:"date"` // Month label such as "Jan 24".
	Price float64 `json:"price"`
}

// MarketTrends is a narrative plus 6-8 monthly price points.
type MarketTrends struct {
	TrendSummary string       `json:"trendSummary"`
	PriceHistory []PricePoint `json:"priceHistory"`
}

// Recommendation suggests a catalog product to a marketman.
type Recommendation struct {
	ProductID string `json:"productId"`
	Reason    string `json:"reason"`
}

// OrderHistoryEntry is one purchased line fed to the recommender.
type OrderHistoryEntry struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	OrderDate string `json:"orderDate"`
}
