// Package repository holds testify mocks of the domain repository interfaces.
package repository

import (
	"context"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"

	"github.com/stretchr/testify/mock"
)

// MockSessionRepository is a mock implementation of repository.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// NewMockSessionRepository creates a mock whose expectations are asserted on test cleanup.
func NewMockSessionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSessionRepository) Load(ctx context.Context) (*repository.SessionSnapshot, error) {
	args := m.Called(ctx)
	if v, ok := args.Get(0).(*repository.SessionSnapshot); ok {
		return v, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockSessionRepository) SaveCurrentUser(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockSessionRepository) SaveProducts(ctx context.Context, products []entity.Product) error {
	return m.Called(ctx, products).Error(0)
}

func (m *MockSessionRepository) SaveOrders(ctx context.Context, orders []entity.Order) error {
	return m.Called(ctx, orders).Error(0)
}

func (m *MockSessionRepository) SaveUsers(ctx context.Context, users []*entity.User) error {
	return m.Called(ctx, users).Error(0)
}

// MockSessionRepositoryFactory is a mock implementation of repository.SessionRepositoryFactory.
type MockSessionRepositoryFactory struct {
	mock.Mock
}

// NewMockSessionRepositoryFactory creates a mock whose expectations are asserted on test cleanup.
func NewMockSessionRepositoryFactory(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionRepositoryFactory {
	m := &MockSessionRepositoryFactory{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSessionRepositoryFactory) ForSession(sessionID string) repository.SessionRepository {
	return m.Called(sessionID).Get(0).(repository.SessionRepository)
}
