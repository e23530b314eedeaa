// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	"farmlink/config"
	deliverycontext "farmlink/internal/delivery/context"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/repository"
	"farmlink/internal/domain/service"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/sync/singleflight"
)

// SessionServiceParams defines the dependencies of the session registry.
type SessionServiceParams struct {
	fx.In

	Repos        repository.SessionRepositoryFactory
	TokenService service.TokenService
	Hasher       service.PINHasher
	Publisher    service.EventPublisher
	Config       *config.Config
	Logger       *slog.Logger
}

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	repos        repository.SessionRepositoryFactory
	tokenService service.TokenService
	hasher       service.PINHasher
	publisher    service.EventPublisher
	options      MarketplaceOptions
	logger       *slog.Logger

	// Stores are never evicted for space; an entry only expires after a full token
	// lifetime without use, so a valid token always finds its live store.
	stores      *expirable.LRU[string, usecase.Marketplace]
	maxSessions int
	loading     singleflight.Group
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	cfg := params.Config

	var options MarketplaceOptions
	if cfg.Marketplace != nil {
		options = MarketplaceOptions{
			PersistCatalog: cfg.Marketplace.PersistCatalog,
			UniquePhone:    cfg.Marketplace.UniquePhone,
			FeeRate:        cfg.Marketplace.FeeRate,
		}
	}

	var (
		maxSessions int
		ttl         time.Duration
	)
	if cfg.Auth != nil {
		maxSessions, ttl = cfg.Auth.SessionCacheSize, cfg.Auth.SessionTTL
	}

	onEvict := func(string, usecase.Marketplace) {
		sessionsOpen.Dec()
		sessionExpirations.Inc()
	}

	return &sessionService{
		repos:        params.Repos,
		tokenService: params.TokenService,
		hasher:       params.Hasher,
		publisher:    params.Publisher,
		options:      options,
		logger:       params.Logger,
		stores:       expirable.NewLRU[string, usecase.Marketplace](0, onEvict, ttl),
		maxSessions:  maxSessions,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// full reports whether no further session store may be loaded.
func (srv *sessionService) full() bool {
	return srv.maxSessions > 0 && srv.stores.Len() >= srv.maxSessions
}

func (srv *sessionService) reject(ctx context.Context, sessionID string) error {
	sessionRejections.Inc()
	srv.log(ctx).WarnContext(ctx, "Session registry is full",
		slog.String("session_id", sessionID),
		slog.Int("max_sessions", srv.maxSessions),
	)

	return errors.WithStack(domainerrors.ErrSessionLimitReached)
}

// CreateSession starts an empty session and returns its bearer token.
// New sessions are refused while the registry is full.
func (srv *sessionService) CreateSession(ctx context.Context) (*usecase.SessionToken, error) {
	sessionID := uuid.NewString()
	if srv.full() {
		return nil, srv.reject(ctx, sessionID)
	}

	token, expiresAt, err := srv.tokenService.GenerateSessionToken(sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate session token")
	}

	srv.log(ctx).InfoContext(ctx, "Session created", slog.String("session_id", sessionID))

	return &usecase.SessionToken{
		SessionID: sessionID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Authenticate validates a bearer token and returns the session ID.
func (srv *sessionService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errors.WithStack(domainerrors.ErrSessionInvalid)
	}

	claims, err := srv.tokenService.ValidateToken(token)
	if err != nil {
		srv.log(ctx).DebugContext(ctx, "Rejected session token", slog.Any("error", err))

		return "", errors.Wrap(domainerrors.ErrSessionInvalid, err.Error())
	}

	return claims.SessionID, nil
}

// Open returns the session's marketplace, rehydrating it from storage on first use.
// Concurrent first opens of one session share a single load. Every hit restarts the
// entry's lifetime.
func (srv *sessionService) Open(ctx context.Context, sessionID string) (usecase.Marketplace, error) {
	if store, ok := srv.touch(sessionID); ok {
		return store, nil
	}

	v, err, _ := srv.loading.Do(sessionID, func() (any, error) {
		if store, ok := srv.touch(sessionID); ok {
			return store, nil
		}
		if srv.full() {
			return nil, srv.reject(ctx, sessionID)
		}

		store, err := NewMarketplaceStore(context.WithoutCancel(ctx), MarketplaceDeps{
			Repo:      srv.repos.ForSession(sessionID),
			Hasher:    srv.hasher,
			Publisher: srv.publisher,
			Logger:    srv.logger.With(slog.String("session_id", sessionID)),
			Options:   srv.options,
		})
		if err != nil {
			return nil, err
		}

		// An expired entry lingers until the reaper runs; drop it so the gauge stays exact
		srv.stores.Remove(sessionID)
		srv.stores.Add(sessionID, store)
		sessionsOpen.Inc()

		srv.log(ctx).DebugContext(ctx, "Session store loaded", slog.String("session_id", sessionID))

		return store, nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrSessionLimitReached) {
			return nil, err
		}

		return nil, errors.Wrap(err, "failed to open session")
	}

	return v.(usecase.Marketplace), nil
}

// touch returns the cached store and re-adds it, which renews its expiry.
func (srv *sessionService) touch(sessionID string) (usecase.Marketplace, bool) {
	store, ok := srv.stores.Get(sessionID)
	if ok {
		srv.stores.Add(sessionID, store)
	}

	return store, ok
}
