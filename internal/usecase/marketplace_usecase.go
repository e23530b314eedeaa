// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"farmlink/internal/domain/entity"
)

// --- Input DTOs ---

// SignUpInput defines the data required to create a user and sign in as them.
type SignUpInput struct {
	Name           string
	Phone          string
	Address        string
	Location       *entity.Location
	PIN            string
	ProfilePicture string
	Role           entity.Role
}

// CreateProductInput defines a new listing.
type CreateProductInput struct {
	Details entity.ProductDetails
	Price   float64
}

// --- Output DTOs ---

// AuthOutput returns the signed-in user and where the client should land.
type AuthOutput struct {
	User      *entity.User
	Dashboard string
}

// CartSummary is the cart plus its checkout amounts.
type CartSummary struct {
	Items    []entity.CartItem `json:"items"`
	Subtotal float64           `json:"subtotal"`
	Fees     float64           `json:"fees"`
	Total    float64           `json:"total"`
}

// Marketplace is the state of one client session. Every method runs to completion
// before the next one starts; returned values are copies.
type Marketplace interface {
	// Account
	SignUp(ctx context.Context, input SignUpInput) (*AuthOutput, error)
	SignInWithPIN(ctx context.Context, phone, pin string) (*AuthOutput, error)
	SignOut(ctx context.Context) error
	CurrentUser() *entity.User

	// Catalog
	ListProducts() []entity.Product
	ProductByID(id string) (entity.Product, bool)
	FarmerProducts(farmerID string) []entity.Product
	CreateProduct(ctx context.Context, input CreateProductInput) (string, error)

	// Cart
	AddToCart(product entity.Product, quantity int) error
	SetCartQuantity(productID string, quantity int)
	RemoveFromCart(productID string)
	ClearCart()
	Cart() []entity.CartItem
	CartSubtotal() float64
	CartSummary() CartSummary

	// Orders
	PlaceOrder(ctx context.Context, items []entity.CartItem, total float64) (*entity.Order, error)
	Checkout(ctx context.Context) (*entity.Order, error)
	Orders() []entity.Order
	PurchaseHistory() ([]entity.Order, error)
	SalesHistory() ([]entity.SaleLine, error)

	// Farmers and follows
	FarmerByID(id string) (*entity.User, bool)
	Farmers() []*entity.User
	FollowedFarmers() ([]*entity.User, error)
	FollowFarmer(ctx context.Context, farmerID string) error
	UnfollowFarmer(ctx context.Context, farmerID string) error
}
