// Package entity contains the core business objects of the project.
package entity

import "time"

// Order is the immutable receipt of a completed checkout.
type Order struct {
	ID            string      `json:"id"`
	MarketmanID   string      `json:"marketmanId"`
	MarketmanName string      `json:"marketmanName"` // Copied at checkout.
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"total"` // As supplied by the caller, never recomputed.
	Date          time.Time   `json:"date"`
}

// OrderItem is a snapshot of one cart line; it does not track later product changes.
type OrderItem struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductImage string  `json:"productImage"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	FarmerID     string  `json:"farmerId"`
}

// SaleLine is an order item seen from the selling farmer's side.
type SaleLine struct {
	OrderID       string    `json:"orderId"`
	Date          time.Time `json:"date"`
	MarketmanID   string    `json:"marketmanId"`
	MarketmanName string    `json:"marketmanName"`
	Item          OrderItem `json:"item"`
}

// NewOrderItem snapshots a cart line.
func NewOrderItem(line CartItem) OrderItem {
	return OrderItem{
		ProductID:    line.Product.ID,
		ProductName:  line.Product.Name,
		ProductImage: line.Product.Image,
		Quantity:     line.Quantity,
		Price:        line.Product.Price,
		FarmerID:     line.Product.FarmerID,
	}
}

// FarmerIDs returns the distinct farmers whose products appear in the order.
func (o *Order) FarmerIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.FarmerID]; ok {
			continue
		}
		seen[item.FarmerID] = struct{}{}
		ids = append(ids, item.FarmerID)
	}

	return ids
}
