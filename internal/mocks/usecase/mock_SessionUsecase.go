// Package usecase holds testify mocks of the usecase interfaces.
package usecase

import (
	"context"

	"farmlink/internal/usecase"

	"github.com/stretchr/testify/mock"
)

// MockSessionUsecase is a mock implementation of usecase.SessionUsecase.
type MockSessionUsecase struct {
	mock.Mock
}

// NewMockSessionUsecase creates a mock whose expectations are asserted on test cleanup.
func NewMockSessionUsecase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionUsecase {
	m := &MockSessionUsecase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSessionUsecase) CreateSession(ctx context.Context) (*usecase.SessionToken, error) {
	args := m.Called(ctx)
	if v, ok := args.Get(0).(*usecase.SessionToken); ok {
		return v, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockSessionUsecase) Authenticate(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)

	return args.String(0), args.Error(1)
}

func (m *MockSessionUsecase) Open(ctx context.Context, sessionID string) (usecase.Marketplace, error) {
	args := m.Called(ctx, sessionID)
	if v, ok := args.Get(0).(usecase.Marketplace); ok {
		return v, args.Error(1)
	}

	return nil, args.Error(1)
}
