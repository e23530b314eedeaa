package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"farmlink/config"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/service"
	mockRepo "farmlink/internal/mocks/repository"
	mockService "farmlink/internal/mocks/service"
	"farmlink/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSessionTestConfig(cacheSize int) *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:       4,
			SessionTTL:       time.Hour,
			SessionCacheSize: cacheSize,
		},
		Marketplace: &config.MarketplaceConfig{UniquePhone: true, FeeRate: 0.05},
	}
}

func newTestSessionService(t *testing.T, cacheSize int) (usecase.SessionUsecase, *mockService.MockTokenService, *mockRepo.MockSessionRepositoryFactory) {
	t.Helper()

	tokens := mockService.NewMockTokenService(t)
	repos := mockRepo.NewMockSessionRepositoryFactory(t)

	srv := NewSessionService(SessionServiceParams{
		Repos:        repos,
		TokenService: tokens,
		Hasher:       plainHasher{},
		Config:       newSessionTestConfig(cacheSize),
		Logger:       newDiscardLogger(),
	})

	return srv, tokens, repos
}

func TestSessionService_CreateSession(t *testing.T) {
	srv, tokens, _ := newTestSessionService(t, 4)
	expiresAt := time.Now().Add(time.Hour)

	tokens.On("GenerateSessionToken", mock.AnythingOfType("string")).Return("signed", expiresAt, nil).Once()

	session, err := srv.CreateSession(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, "signed", session.Token)
	assert.Equal(t, expiresAt, session.ExpiresAt)
}

func TestSessionService_CreateSession_TokenFailure(t *testing.T) {
	srv, tokens, _ := newTestSessionService(t, 4)

	tokens.On("GenerateSessionToken", mock.AnythingOfType("string")).Return("", time.Time{}, errors.New("no key")).Once()

	_, err := srv.CreateSession(context.Background())
	assert.Error(t, err)
}

func TestSessionService_Authenticate(t *testing.T) {
	srv, tokens, _ := newTestSessionService(t, 4)

	t.Run("valid", func(t *testing.T) {
		tokens.On("ValidateToken", "good").Return(&service.Claims{SessionID: "s1", Type: service.TokenTypeSession}, nil).Once()

		id, err := srv.Authenticate(context.Background(), "good")
		require.NoError(t, err)
		assert.Equal(t, "s1", id)
	})

	t.Run("rejected", func(t *testing.T) {
		tokens.On("ValidateToken", "bad").Return(nil, errors.New("signature is invalid")).Once()

		_, err := srv.Authenticate(context.Background(), "bad")
		assert.ErrorIs(t, err, domainerrors.ErrSessionInvalid)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := srv.Authenticate(context.Background(), "")
		assert.ErrorIs(t, err, domainerrors.ErrSessionInvalid)
	})
}

func TestSessionService_Open_CachesStore(t *testing.T) {
	srv, _, repos := newTestSessionService(t, 4)
	repos.On("ForSession", "s1").Return(newMemRepo()).Once()

	first, err := srv.Open(context.Background(), "s1")
	require.NoError(t, err)
	_, err = first.SignUp(context.Background(), usecase.SignUpInput{
		Name: "Ravi", Phone: "9000000002", PIN: "4321", Role: entity.RoleMarketman,
	})
	require.NoError(t, err)

	second, err := srv.Open(context.Background(), "s1")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, "Ravi", second.CurrentUser().Name)
}

func TestSessionService_Open_IsolatesSessions(t *testing.T) {
	srv, _, repos := newTestSessionService(t, 4)
	repos.On("ForSession", "s1").Return(newMemRepo()).Once()
	repos.On("ForSession", "s2").Return(newMemRepo()).Once()

	s1, err := srv.Open(context.Background(), "s1")
	require.NoError(t, err)
	s2, err := srv.Open(context.Background(), "s2")
	require.NoError(t, err)

	require.NoError(t, s1.AddToCart(entity.Product{ID: "prod_1", Price: 40}, 1))

	assert.Len(t, s1.Cart(), 1)
	assert.Empty(t, s2.Cart())
}

func TestSessionService_Open_KeepsLiveSessionsWhenFull(t *testing.T) {
	srv, _, repos := newTestSessionService(t, 1)
	repos.On("ForSession", "s1").Return(newMemRepo()).Once()
	ctx := context.Background()

	store, err := srv.Open(ctx, "s1")
	require.NoError(t, err)
	signUp(t, store, "Ravi", "9000000002", entity.RoleMarketman)
	product, ok := store.ProductByID("prod_1")
	require.True(t, ok)
	require.NoError(t, store.AddToCart(product, 1))
	require.NoError(t, store.FollowFarmer(ctx, "farmer_123"))

	// A second session is refused instead of pushing s1 out
	_, err = srv.Open(ctx, "s2")
	assert.ErrorIs(t, err, domainerrors.ErrSessionLimitReached)
	_, err = srv.CreateSession(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrSessionLimitReached)

	reopened, err := srv.Open(ctx, "s1")
	require.NoError(t, err)
	assert.Same(t, store, reopened)
	assert.Len(t, reopened.Cart(), 1)
	farmer, ok := reopened.FarmerByID("farmer_123")
	require.True(t, ok)
	assert.Equal(t, 121, farmer.Farmer.Followers)

	require.NoError(t, reopened.UnfollowFarmer(ctx, "farmer_123"))
	farmer, _ = reopened.FarmerByID("farmer_123")
	assert.Equal(t, 120, farmer.Farmer.Followers)
}

func TestSessionService_Open_KeepsUnpersistedListings(t *testing.T) {
	srv, _, repos := newTestSessionService(t, 1)
	repos.On("ForSession", "s1").Return(newMemRepo()).Once()
	ctx := context.Background()

	store, err := srv.Open(ctx, "s1")
	require.NoError(t, err)
	_, err = store.SignInWithPIN(ctx, "9876543210", "1234")
	require.NoError(t, err)
	id, err := store.CreateProduct(ctx, usecase.CreateProductInput{
		Details: entity.ProductDetails{Name: "Mangoes", Description: "Sweet Alphonso mangoes"},
		Price:   120,
	})
	require.NoError(t, err)

	_, err = srv.Open(ctx, "s2")
	require.ErrorIs(t, err, domainerrors.ErrSessionLimitReached)

	reopened, err := srv.Open(ctx, "s1")
	require.NoError(t, err)
	_, ok := reopened.ProductByID(id)
	assert.True(t, ok)
	assert.Len(t, reopened.FarmerProducts("farmer_123"), 2)
}

func TestSessionService_Open_UseRenewsLifetime(t *testing.T) {
	tokens := mockService.NewMockTokenService(t)
	repos := mockRepo.NewMockSessionRepositoryFactory(t)
	cfg := newSessionTestConfig(4)
	cfg.Auth.SessionTTL = 200 * time.Millisecond
	srv := NewSessionService(SessionServiceParams{
		Repos:        repos,
		TokenService: tokens,
		Hasher:       plainHasher{},
		Config:       cfg,
		Logger:       newDiscardLogger(),
	})
	// Loaded exactly once although the session outlives one TTL
	repos.On("ForSession", "s1").Return(newMemRepo()).Once()

	first, err := srv.Open(context.Background(), "s1")
	require.NoError(t, err)
	for range 3 {
		time.Sleep(120 * time.Millisecond)
		again, err := srv.Open(context.Background(), "s1")
		require.NoError(t, err)
		assert.Same(t, first, again)
	}
}

func TestSessionService_Open_ConcurrentFirstUse(t *testing.T) {
	srv, _, repos := newTestSessionService(t, 4)
	repos.On("ForSession", "s1").Return(newMemRepo()).Once()

	var wg sync.WaitGroup
	stores := make([]usecase.Marketplace, 8)
	for i := range stores {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store, err := srv.Open(context.Background(), "s1")
			assert.NoError(t, err)
			stores[i] = store
		}()
	}
	wg.Wait()

	for _, store := range stores[1:] {
		assert.Same(t, stores[0], store)
	}
}

func TestSessionService_Open_LoadFailure(t *testing.T) {
	srv, _, repos := newTestSessionService(t, 4)
	repo := mockRepo.NewMockSessionRepository(t)
	repo.On("Load", mock.Anything).Return(nil, errors.New("bucket unavailable")).Once()
	repos.On("ForSession", "s1").Return(repo).Once()

	_, err := srv.Open(context.Background(), "s1")
	assert.Error(t, err)
}
