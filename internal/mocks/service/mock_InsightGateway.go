package service

import (
	"context"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockInsightGateway is a mock implementation of service.InsightGateway.
type MockInsightGateway struct {
	mock.Mock
}

// NewMockInsightGateway creates a mock whose expectations are asserted on test cleanup.
func NewMockInsightGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockInsightGateway {
	m := &MockInsightGateway{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockInsightGateway) PredictPrice(ctx context.Context, req service.PriceRequest) (*entity.PricePrediction, error) {
	args := m.Called(ctx, req)
	if v, ok := args.Get(0).(*entity.PricePrediction); ok {
		return v, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockInsightGateway) MarketTrends(ctx context.Context, productName string) (*entity.MarketTrends, error) {
	args := m.Called(ctx, productName)
	if v, ok := args.Get(0).(*entity.MarketTrends); ok {
		return v, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockInsightGateway) RecommendProducts(ctx context.Context, req service.RecommendationRequest) ([]entity.Recommendation, error) {
	args := m.Called(ctx, req)
	if v, ok := args.Get(0).([]entity.Recommendation); ok {
		return v, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockInsightGateway) GenerateProductImage(ctx context.Context, productName string) (*entity.ProductImage, error) {
	args := m.Called(ctx, productName)
	if v, ok := args.Get(0).(*entity.ProductImage); ok {
		return v, args.Error(1)
	}

	return nil, args.Error(1)
}
