// Package entity contains the core business objects of the project.
package entity

// Product is a listing created by a farmer. Listings are never edited or removed.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`     // Data URI or URL.
	ImageHint   string  `json:"imageHint"` // Short description used for image search.
	FarmerID    string  `json:"farmerId"`
	Price       float64 `json:"price"`  // Positive, currency-agnostic.
	Rating      float64 `json:"rating"` // Zero for new listings.
}

// ProductDetails is the farmer-supplied part of a new listing.
type ProductDetails struct {
	Name        string
	Description string
	Image       string
	ImageHint   string
}
