// Package persistence selects the record store backend from configuration.
package persistence

import (
	"context"
	"log/slog"

	"farmlink/config"
	"farmlink/internal/domain/constants"
	"farmlink/internal/domain/repository"
	"farmlink/internal/infra/persistence/blobstore"
	"farmlink/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// RecordStoreParams holds dependencies for the record store, injected by Fx
type RecordStoreParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewRecordStore creates a RecordStore based on configuration, defaulting to an in-memory bucket
func NewRecordStore(params RecordStoreParams) (repository.RecordStore, error) {
	provider := ""
	if params.Config.Storage != nil {
		provider = params.Config.Storage.Provider
	}

	switch provider {
	case "", constants.StorageProviderBlob:
		return blobstore.Open(blobstore.Params{
			Lifecycle: params.Lc,
			Ctx:       params.Ctx,
			Config:    params.Config,
			Logger:    params.Logger,
		})

	case constants.StorageProviderPostgres:
		return postgres.Open(postgres.Params{
			Lifecycle: params.Lc,
			Config:    params.Config,
			Logger:    params.Logger,
		})

	default:
		return nil, errors.Errorf("unknown storage provider: %s", provider)
	}
}

// Module provides the persistence FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewRecordStore),
)
