// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/repository"
	"farmlink/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// recordStore implements the repository.RecordStore interface.
type recordStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRecordStore is the constructor for recordStore.
func NewRecordStore(db *gorm.DB) repository.RecordStore {
	return &recordStore{
		db:  db,
		now: time.Now,
	}
}

// Migrate creates or updates the session_records table.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&model.SessionRecordModel{}); err != nil {
		return errors.Wrap(err, "failed to migrate session_records")
	}

	return nil
}

// Get retrieves the record stored under key.
func (repo *recordStore) Get(ctx context.Context, key string) ([]byte, error) {
	var recordM model.SessionRecordModel

	if err := repo.db.WithContext(ctx).
		Where("record_key = ?", key).
		First(&recordM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRecordNotFound
		}

		return nil, domainerrors.NewStorageError(err, "failed to read record "+key)
	}

	return recordM.Value, nil
}

// Put inserts the record or overwrites the existing value.
func (repo *recordStore) Put(ctx context.Context, key string, value []byte) error {
	recordM := fromRecord(key, value, repo.now())

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "record_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(recordM).Error; err != nil {
		return domainerrors.NewStorageError(err, "failed to write record "+key)
	}

	return nil
}

// Delete removes the record; deleting a missing key affects no rows and succeeds.
func (repo *recordStore) Delete(ctx context.Context, key string) error {
	if err := repo.db.WithContext(ctx).
		Where("record_key = ?", key).
		Delete(&model.SessionRecordModel{}).Error; err != nil {
		return domainerrors.NewStorageError(err, "failed to delete record "+key)
	}

	return nil
}

func fromRecord(key string, value []byte, updatedAt time.Time) *model.SessionRecordModel {
	return &model.SessionRecordModel{
		Key:       key,
		Value:     value,
		UpdatedAt: updatedAt,
	}
}
