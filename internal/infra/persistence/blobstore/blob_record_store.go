// Package blobstore implements the record store on top of a gocloud.dev blob bucket.
package blobstore

import (
	"context"
	"log/slog"

	"farmlink/config"
	"farmlink/internal/domain/lifecycle"
	"farmlink/internal/domain/repository"
	"farmlink/internal/errors"

	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/gcsblob"  // gs:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	_ "gocloud.dev/blob/s3blob"   // s3:// buckets
	"gocloud.dev/gcerrors"
)

const (
	defaultBucketURL = "mem://"
	contentType      = "application/json"
)

// Params defines the dependencies for opening the bucket
type Params struct {
	fx.In
	fx.Lifecycle

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

type blobRecordStore struct {
	bucket *blob.Bucket
}

// Open opens the configured bucket and closes it when the application stops
func Open(params Params) (repository.RecordStore, error) {
	url := defaultBucketURL
	if params.Config.Storage != nil && params.Config.Storage.Blob.URL != "" {
		url = params.Config.Storage.Blob.URL
	}

	bucket, err := blob.OpenBucket(params.Ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", url)
	}

	params.Logger.Info("Record store bucket opened", slog.String("url", url))

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			// IsAccessible reports false without error for a missing bucket
			ok, err := bucket.IsAccessible(ctx)
			if err != nil {
				return errors.Wrap(err, "failed to check bucket accessibility")
			}
			if !ok {
				return errors.Errorf("bucket %s is not accessible", url)
			}

			return nil
		},
		OnStop: func(_ context.Context) error {
			return bucket.Close()
		},
	})

	return NewRecordStore(bucket), nil
}

// NewRecordStore wraps an already opened bucket
func NewRecordStore(bucket *blob.Bucket) repository.RecordStore {
	return &blobRecordStore{bucket: bucket}
}

// Get returns the object body stored under key
func (s *blobRecordStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, repository.ErrRecordNotFound
		}

		return nil, errors.Wrapf(err, "failed to read record %s", key)
	}

	return data, nil
}

// Put overwrites the object stored under key
func (s *blobRecordStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.bucket.WriteAll(ctx, key, value, &blob.WriterOptions{ContentType: contentType}); err != nil {
		return errors.Wrapf(err, "failed to write record %s", key)
	}

	return nil
}

// Delete removes the object stored under key; a missing object is not an error
func (s *blobRecordStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil
		}

		return errors.Wrapf(err, "failed to delete record %s", key)
	}

	return nil
}
