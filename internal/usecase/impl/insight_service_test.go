package impl

import (
	"context"
	"testing"

	"farmlink/config"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/service"
	mockService "farmlink/internal/mocks/service"
	"farmlink/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fixedDistance reports the same distance for every pair.
type fixedDistance float64

func (d fixedDistance) DistanceKm(entity.Location, entity.Location) float64 { return float64(d) }

func newTestInsightService(t *testing.T) (usecase.InsightUsecase, *mockService.MockInsightGateway) {
	t.Helper()

	gateway := mockService.NewMockInsightGateway(t)
	srv := NewInsightService(InsightServiceParams{
		Gateway:  gateway,
		Distance: fixedDistance(20),
		Config: &config.Config{
			Market: &config.MarketConfig{
				Name:               "Koyambedu",
				Latitude:           13.0694,
				Longitude:          80.1948,
				LogisticsBaseCost:  50,
				LogisticsCostPerKm: 2.5,
			},
		},
		Logger: newDiscardLogger(),
	})

	return srv, gateway
}

func TestInsightService_SuggestPrice(t *testing.T) {
	srv, gateway := newTestInsightService(t)
	store := newTestStore(t, newMemRepo(), nil, defaultOptions())
	ctx := context.Background()

	_, err := store.SignUp(ctx, usecase.SignUpInput{
		Name: "Asha", Phone: "9000000001", PIN: "4321", Role: entity.RoleFarmer,
		Location: &entity.Location{Lat: 13.2, Lon: 80.3},
	})
	require.NoError(t, err)

	gateway.On("PredictPrice", ctx, service.PriceRequest{
		ProductName:        "Mangoes",
		ProductDescription: "Sweet",
		MarketTrends:       "rising",
		LogisticsCost:      100,
		DistanceToMarket:   20,
	}).Return(&entity.PricePrediction{PredictedPrice: 118, Reasoning: "demand"}, nil).Once()

	suggestion, err := srv.SuggestPrice(ctx, store, usecase.SuggestPriceInput{
		ProductName:        "Mangoes",
		ProductDescription: "Sweet",
		MarketTrends:       "rising",
	})

	require.NoError(t, err)
	assert.InDelta(t, 118, suggestion.PredictedPrice, 1e-9)
	assert.InDelta(t, 20, suggestion.DistanceToMarket, 1e-9)
	assert.InDelta(t, 100, suggestion.LogisticsCost, 1e-9)
	assert.Equal(t, "Koyambedu", suggestion.Market)
}

func TestInsightService_SuggestPrice_NoLocation(t *testing.T) {
	srv, gateway := newTestInsightService(t)
	store := newTestStore(t, newMemRepo(), nil, defaultOptions())
	ctx := context.Background()
	signUp(t, store, "Asha", "9000000001", entity.RoleFarmer)

	gateway.On("PredictPrice", ctx, mock.MatchedBy(func(req service.PriceRequest) bool {
		return req.DistanceToMarket == 0 && req.LogisticsCost == 50
	})).Return(&entity.PricePrediction{PredictedPrice: 90}, nil).Once()

	suggestion, err := srv.SuggestPrice(ctx, store, usecase.SuggestPriceInput{ProductName: "Mangoes"})
	require.NoError(t, err)
	assert.Zero(t, suggestion.DistanceToMarket)
}

func TestInsightService_SuggestPrice_Rejected(t *testing.T) {
	srv, _ := newTestInsightService(t)
	store := newTestStore(t, newMemRepo(), nil, defaultOptions())

	_, err := srv.SuggestPrice(context.Background(), store, usecase.SuggestPriceInput{ProductName: "Mangoes"})
	assert.ErrorIs(t, err, domainerrors.ErrNotSignedIn)

	signUp(t, store, "Ravi", "9000000002", entity.RoleMarketman)
	_, err = srv.SuggestPrice(context.Background(), store, usecase.SuggestPriceInput{ProductName: "Mangoes"})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestInsightService_SuggestPrice_GatewayFailure(t *testing.T) {
	srv, gateway := newTestInsightService(t)
	store := newTestStore(t, newMemRepo(), nil, defaultOptions())
	signUp(t, store, "Asha", "9000000001", entity.RoleFarmer)

	gateway.On("PredictPrice", mock.Anything, mock.Anything).
		Return(nil, errors.WithStack(domainerrors.ErrGatewayFailed)).Once()

	_, err := srv.SuggestPrice(context.Background(), store, usecase.SuggestPriceInput{ProductName: "Mangoes"})
	assert.ErrorIs(t, err, domainerrors.ErrGatewayFailed)
}

func TestInsightService_MarketTrends(t *testing.T) {
	srv, gateway := newTestInsightService(t)
	store := newTestStore(t, newMemRepo(), nil, defaultOptions())
	ctx := context.Background()

	trends := &entity.MarketTrends{TrendSummary: "steady", PriceHistory: []entity.PricePoint{{Date: "Jan 24", Price: 38}}}
	gateway.On("MarketTrends", ctx, "Organic Tomatoes").Return(trends, nil).Once()

	got, err := srv.MarketTrends(ctx, store, "prod_1")
	require.NoError(t, err)
	assert.Equal(t, trends, got)

	_, err = srv.MarketTrends(ctx, store, "prod_missing")
	assert.ErrorIs(t, err, domainerrors.ErrProductNotFound)
}

func TestInsightService_Recommendations(t *testing.T) {
	srv, gateway := newTestInsightService(t)
	store := newTestStore(t, newMemRepo(), nil, defaultOptions())
	ctx := context.Background()
	signUp(t, store, "Ravi", "9000000002", entity.RoleMarketman)

	tomatoes, _ := store.ProductByID("prod_1")
	_, err := store.PlaceOrder(ctx, []entity.CartItem{{Product: tomatoes, Quantity: 10}}, 400)
	require.NoError(t, err)

	gateway.On("RecommendProducts", ctx, mock.MatchedBy(func(req service.RecommendationRequest) bool {
		return len(req.OrderHistory) == 1 &&
			req.OrderHistory[0].ProductID == "prod_1" &&
			req.OrderHistory[0].Quantity == 10 &&
			len(req.Catalog) == 1 &&
			req.Catalog[0].Rating == 4.5
	})).Return([]entity.Recommendation{
		{ProductID: "prod_1", Reason: "bought often"},
		{ProductID: "prod_ghost", Reason: "hallucinated"},
	}, nil).Once()

	recs, err := srv.Recommendations(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []entity.Recommendation{{ProductID: "prod_1", Reason: "bought often"}}, recs)
}

func TestInsightService_Recommendations_RequiresMarketman(t *testing.T) {
	srv, _ := newTestInsightService(t)
	store := newTestStore(t, newMemRepo(), nil, defaultOptions())
	signUp(t, store, "Asha", "9000000001", entity.RoleFarmer)

	_, err := srv.Recommendations(context.Background(), store)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestInsightService_ProductImage(t *testing.T) {
	srv, gateway := newTestInsightService(t)
	store := newTestStore(t, newMemRepo(), nil, defaultOptions())
	ctx := context.Background()

	_, err := srv.ProductImage(ctx, store, "Mangoes")
	assert.ErrorIs(t, err, domainerrors.ErrNotSignedIn)

	signUp(t, store, "Asha", "9000000001", entity.RoleFarmer)

	_, err = srv.ProductImage(ctx, store, "   ")
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	image := &entity.ProductImage{ImageDataURI: "data:image/svg+xml;base64,PHN2Zy8+"}
	gateway.On("GenerateProductImage", ctx, "Mangoes").Return(image, nil).Once()

	got, err := srv.ProductImage(ctx, store, " Mangoes ")
	require.NoError(t, err)
	assert.Equal(t, image, got)
}

func TestInsightService_ProductImage_RequiresFarmer(t *testing.T) {
	srv, gateway := newTestInsightService(t)
	store := newTestStore(t, newMemRepo(), nil, defaultOptions())
	signUp(t, store, "Ravi", "9000000002", entity.RoleMarketman)

	_, err := srv.ProductImage(context.Background(), store, "Mangoes")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	gateway.AssertNotCalled(t, "GenerateProductImage", mock.Anything, mock.Anything)
}
