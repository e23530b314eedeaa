package service

import (
	"context"
)

// MarketEventType names what happened in the marketplace.
type MarketEventType string

const (
	// MarketEventProductListed is emitted when a farmer lists a new product.
	MarketEventProductListed MarketEventType = "product_listed"
	// MarketEventOrderPlaced is emitted when a marketman checks out.
	MarketEventOrderPlaced MarketEventType = "order_placed"
)

// MarketEvent represents an event to be processed by the notifier worker
type MarketEvent struct {
	RequestID     string          `json:"request_id,omitempty"` // For distributed tracing
	EventID       string          `json:"event_id"`
	Type          MarketEventType `json:"type"`
	FarmerID      string          `json:"farmer_id,omitempty"` // Listing farmer for product_listed
	FarmerName    string          `json:"farmer_name,omitempty"`
	ProductID     string          `json:"product_id,omitempty"`
	ProductName   string          `json:"product_name,omitempty"`
	OrderID       string          `json:"order_id,omitempty"`
	MarketmanName string          `json:"marketman_name,omitempty"`
	FarmerIDs     []string        `json:"farmer_ids,omitempty"` // Selling farmers for order_placed
	Total         float64         `json:"total,omitempty"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishMarketEvent publishes a marketplace event for async processing
	PublishMarketEvent(ctx context.Context, event *MarketEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
