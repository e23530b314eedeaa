package blobstore

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"farmlink/config"
	"farmlink/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"gocloud.dev/blob/memblob"
)

func TestBlobRecordStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()
	store := NewRecordStore(bucket)

	_, err := store.Get(ctx, "sessions/s1/agri-user")
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)

	require.NoError(t, store.Put(ctx, "sessions/s1/agri-user", []byte(`{"id":"farmer_1"}`)))
	got, err := store.Get(ctx, "sessions/s1/agri-user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"farmer_1"}`, string(got))

	require.NoError(t, store.Put(ctx, "sessions/s1/agri-user", []byte(`{"id":"farmer_2"}`)))
	got, err = store.Get(ctx, "sessions/s1/agri-user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"farmer_2"}`, string(got))

	require.NoError(t, store.Delete(ctx, "sessions/s1/agri-user"))
	_, err = store.Get(ctx, "sessions/s1/agri-user")
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestBlobRecordStore_DeleteMissingKey(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	assert.NoError(t, NewRecordStore(bucket).Delete(context.Background(), "sessions/none/agri-user"))
}

func TestOpen_MemBucket(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := &config.Config{Storage: &config.StorageConfig{}}
	cfg.Storage.Blob.URL = "mem://"

	store, err := Open(Params{
		Lifecycle: lc,
		Ctx:       context.Background(),
		Config:    cfg,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	lc.RequireStart()
	require.NoError(t, store.Put(context.Background(), "k", []byte("v")))
	lc.RequireStop()
}
