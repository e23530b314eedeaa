// Package entity contains the core business objects of the project.
package entity

import "slices"

// CartItem associates a product snapshot with a requested quantity.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Cart holds at most one line per product, in insertion order.
type Cart struct {
	items []CartItem
}

// Add merges quantity into the line for product, appending a new line if needed.
func (c *Cart) Add(product Product, quantity int) {
	for i := range c.items {
		if c.items[i].Product.ID == product.ID {
			c.items[i].Quantity += quantity

			return
		}
	}

	c.items = append(c.items, CartItem{Product: product, Quantity: quantity})
}

// SetQuantity overwrites a line's quantity; a non-positive quantity removes the line.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)

		return
	}

	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = quantity

			return
		}
	}
}

// Remove drops the line for productID if present.
func (c *Cart) Remove(productID string) {
	c.items = slices.DeleteFunc(c.items, func(item CartItem) bool {
		return item.Product.ID == productID
	})
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []CartItem {
	items := slices.Clone(c.items)
	if items == nil {
		return []CartItem{}
	}

	return items
}

// Subtotal is the sum of price times quantity over all lines.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.items {
		total += item.Product.Price * float64(item.Quantity)
	}

	return total
}
