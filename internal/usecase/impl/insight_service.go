package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"farmlink/config"
	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/service"
	"farmlink/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// InsightServiceParams defines the dependencies of the insight service.
type InsightServiceParams struct {
	fx.In

	Gateway  service.InsightGateway
	Distance service.DistanceCalculator
	Config   *config.Config
	Logger   *slog.Logger
}

// insightService implements the InsightUsecase interface.
type insightService struct {
	gateway  service.InsightGateway
	distance service.DistanceCalculator
	market   config.MarketConfig
	logger   *slog.Logger
}

// NewInsightService is the constructor for insightService.
func NewInsightService(params InsightServiceParams) usecase.InsightUsecase {
	var market config.MarketConfig
	if params.Config.Market != nil {
		market = *params.Config.Market
	}

	return &insightService{
		gateway:  params.Gateway,
		distance: params.Distance,
		market:   market,
		logger:   params.Logger,
	}
}

func (srv *insightService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SuggestPrice prices a listing for the signed-in farmer using their distance to the market.
func (srv *insightService) SuggestPrice(ctx context.Context, m usecase.Marketplace, input usecase.SuggestPriceInput) (*usecase.PriceSuggestion, error) {
	farmer, err := requireUser(m, entity.RoleFarmer)
	if err != nil {
		return nil, err
	}
	if input.ProductName == "" {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("product name is required"))
	}

	var distance float64
	if farmer.Location != nil {
		distance = srv.distance.DistanceKm(*farmer.Location, entity.Location{
			Lat: srv.market.Latitude,
			Lon: srv.market.Longitude,
		})
	}
	logistics := srv.market.LogisticsBaseCost + srv.market.LogisticsCostPerKm*distance

	srv.log(ctx).DebugContext(ctx, "Requesting price suggestion",
		slog.String("farmer_id", farmer.ID),
		slog.Float64("distance_km", distance),
		slog.Float64("logistics_cost", logistics),
	)

	prediction, err := observe("price", func() (*entity.PricePrediction, error) {
		return srv.gateway.PredictPrice(ctx, service.PriceRequest{
			ProductName:        input.ProductName,
			ProductDescription: input.ProductDescription,
			ProductImage:       input.ProductImage,
			MarketTrends:       input.MarketTrends,
			LogisticsCost:      logistics,
			DistanceToMarket:   distance,
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to predict price")
	}

	return &usecase.PriceSuggestion{
		PricePrediction:  *prediction,
		DistanceToMarket: distance,
		LogisticsCost:    logistics,
		Market:           srv.market.Name,
	}, nil
}

// MarketTrends narrates recent prices for a catalog product.
func (srv *insightService) MarketTrends(ctx context.Context, m usecase.Marketplace, productID string) (*entity.MarketTrends, error) {
	product, ok := m.ProductByID(productID)
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrProductNotFound)
	}

	trends, err := observe("trends", func() (*entity.MarketTrends, error) {
		return srv.gateway.MarketTrends(ctx, product.Name)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch market trends")
	}

	return trends, nil
}

// Recommendations ranks catalog products for the signed-in marketman's purchase history.
// Suggestions naming products outside the catalog are dropped.
func (srv *insightService) Recommendations(ctx context.Context, m usecase.Marketplace) ([]entity.Recommendation, error) {
	if _, err := requireUser(m, entity.RoleMarketman); err != nil {
		return nil, err
	}

	orders, err := m.PurchaseHistory()
	if err != nil {
		return nil, err
	}
	products := m.ListProducts()
	if len(products) == 0 {
		return []entity.Recommendation{}, nil
	}

	history := make([]entity.OrderHistoryEntry, 0)
	for _, order := range orders {
		for _, item := range order.Items {
			history = append(history, entity.OrderHistoryEntry{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				OrderDate: order.Date.Format(time.RFC3339),
			})
		}
	}

	catalog := make([]service.CatalogEntry, 0, len(products))
	known := make(map[string]struct{}, len(products))
	for _, p := range products {
		catalog = append(catalog, service.CatalogEntry{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Rating:      p.Rating,
			FarmerID:    p.FarmerID,
		})
		known[p.ID] = struct{}{}
	}

	recs, err := observe("recommendations", func() ([]entity.Recommendation, error) {
		return srv.gateway.RecommendProducts(ctx, service.RecommendationRequest{
			OrderHistory: history,
			Catalog:      catalog,
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to recommend products")
	}

	filtered := make([]entity.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if _, ok := known[rec.ProductID]; ok {
			filtered = append(filtered, rec)
		}
	}
	if dropped := len(recs) - len(filtered); dropped > 0 {
		srv.log(ctx).InfoContext(ctx, "Dropped recommendations for unknown products", slog.Int("dropped", dropped))
	}

	return filtered, nil
}

// ProductImage illustrates a listing the signed-in farmer is about to create.
func (srv *insightService) ProductImage(ctx context.Context, m usecase.Marketplace, productName string) (*entity.ProductImage, error) {
	farmer, err := requireUser(m, entity.RoleFarmer)
	if err != nil {
		return nil, err
	}
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("product name is required"))
	}

	srv.log(ctx).DebugContext(ctx, "Requesting product image",
		slog.String("farmer_id", farmer.ID),
		slog.String("product_name", productName),
	)

	image, err := observe("image", func() (*entity.ProductImage, error) {
		return srv.gateway.GenerateProductImage(ctx, productName)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate product image")
	}

	return image, nil
}

func requireUser(m usecase.Marketplace, role entity.Role) (*entity.User, error) {
	user := m.CurrentUser()
	if user == nil {
		return nil, errors.WithStack(domainerrors.ErrNotSignedIn)
	}
	if user.Role != role {
		return nil, errors.WithStack(domainerrors.ErrForbidden.WithDetails("requires the " + role.String() + " role"))
	}

	return user, nil
}

func observe[T any](operation string, fn func() (T, error)) (T, error) {
	result, err := fn()
	if err != nil {
		insightRequests.WithLabelValues(operation, "error").Inc()
	} else {
		insightRequests.WithLabelValues(operation, "ok").Inc()
	}

	return result, err
}
