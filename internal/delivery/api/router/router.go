// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"farmlink/config"
	"farmlink/internal/delivery/api/middleware"
	"farmlink/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	SessionHandler    *handler.SessionHandler
	AuthHandler       *handler.AuthHandler
	CatalogHandler    *handler.CatalogHandler
	CartHandler       *handler.CartHandler
	OrderHandler      *handler.OrderHandler
	FarmerHandler     *handler.FarmerHandler
	InsightHandler    *handler.InsightHandler
	SessionMiddleware *middleware.SessionMiddleware
	Config            *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	sessionHandler    *handler.SessionHandler
	authHandler       *handler.AuthHandler
	catalogHandler    *handler.CatalogHandler
	cartHandler       *handler.CartHandler
	orderHandler      *handler.OrderHandler
	farmerHandler     *handler.FarmerHandler
	insightHandler    *handler.InsightHandler
	sessionMiddleware *middleware.SessionMiddleware
	config            *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		sessionHandler:    params.SessionHandler,
		authHandler:       params.AuthHandler,
		catalogHandler:    params.CatalogHandler,
		cartHandler:       params.CartHandler,
		orderHandler:      params.OrderHandler,
		farmerHandler:     params.FarmerHandler,
		insightHandler:    params.InsightHandler,
		sessionMiddleware: params.SessionMiddleware,
		config:            params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	if r.config.Metrics != nil && r.config.Metrics.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	// Sessions are minted without authentication
	e.POST("/sessions", r.sessionHandler.CreateSession)

	// API v1 routes, every one bound to a session
	apiV1 := e.Group("/api/v1")
	apiV1.Use(r.sessionMiddleware.Authenticate)

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/signup", r.authHandler.SignUp)
		authGroup.POST("/pin-login", r.authHandler.PINLogin)
		authGroup.POST("/logout", r.authHandler.Logout)
	}
	apiV1.GET("/me", r.authHandler.Me)

	productsGroup := apiV1.Group("/products")
	{
		productsGroup.GET("", r.catalogHandler.ListProducts)
		productsGroup.GET("/:id", r.catalogHandler.GetProduct)
		productsGroup.POST("", r.catalogHandler.CreateProduct)
	}

	cartGroup := apiV1.Group("/cart")
	{
		cartGroup.GET("", r.cartHandler.GetCart)
		cartGroup.DELETE("", r.cartHandler.Clear)
		cartGroup.POST("/items", r.cartHandler.AddItem)
		cartGroup.PUT("/items/:productId", r.cartHandler.UpdateItem)
		cartGroup.DELETE("/items/:productId", r.cartHandler.RemoveItem)
	}

	apiV1.POST("/orders", r.orderHandler.Checkout)
	apiV1.GET("/orders", r.orderHandler.ListOrders)
	apiV1.GET("/sales", r.orderHandler.ListSales)

	farmersGroup := apiV1.Group("/farmers")
	{
		farmersGroup.GET("", r.farmerHandler.ListFarmers)
		farmersGroup.GET("/me/qr", r.farmerHandler.MyQRCode)
		farmersGroup.GET("/:id", r.farmerHandler.GetFarmer)
		farmersGroup.GET("/:id/products", r.farmerHandler.FarmerProducts)
		farmersGroup.POST("/:id/follow", r.farmerHandler.Follow)
		farmersGroup.DELETE("/:id/follow", r.farmerHandler.Unfollow)
	}
	apiV1.GET("/following", r.farmerHandler.Following)
	apiV1.POST("/follows/qr", r.farmerHandler.FollowByQR)

	insightsGroup := apiV1.Group("/insights")
	{
		insightsGroup.POST("/price", r.insightHandler.SuggestPrice)
		insightsGroup.GET("/trends/:productId", r.insightHandler.MarketTrends)
		insightsGroup.GET("/recommendations", r.insightHandler.Recommendations)
		insightsGroup.POST("/image", r.insightHandler.ProductImage)
	}
}
