package records

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/internal/infra/auth"
	"farmlink/internal/infra/persistence/blobstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
	"golang.org/x/crypto/bcrypt"
)

func newTestAdapter(t *testing.T) (*Adapter, repository.RecordStore) {
	t.Helper()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })
	store := blobstore.NewRecordStore(bucket)

	adapter := NewAdapter(Params{
		Store:  store,
		Hasher: auth.NewBcryptHasherWithCost(bcrypt.MinCost),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return adapter, store
}

func TestLoad_EmptyStoreUsesSeeds(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	snapshot, err := adapter.ForSession("s1").Load(context.Background())
	require.NoError(t, err)

	assert.Nil(t, snapshot.CurrentUser)
	assert.Equal(t, SeedProducts(), snapshot.Products)
	assert.Empty(t, snapshot.Orders)
	require.Len(t, snapshot.Users, 2)
	assert.Equal(t, "farmer_123", snapshot.Users[0].ID)
	assert.Equal(t, 120, snapshot.Users[0].Farmer.Followers)
	assert.Equal(t, "farmer_456", snapshot.Users[1].ID)

	// Seed PINs are stored as hashes
	assert.NotEqual(t, "1234", snapshot.Users[0].PINHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(snapshot.Users[0].PINHash), []byte("1234")))
}

func TestLoad_SeedCopiesAreIndependent(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	first, err := adapter.ForSession("s1").Load(context.Background())
	require.NoError(t, err)
	first.Users[0].Farmer.Followers = 999

	second, err := adapter.ForSession("s2").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, second.Users[0].Farmer.Followers)
}

func TestLoad_UnparsableRecordsFallBack(t *testing.T) {
	adapter, store := newTestAdapter(t)
	ctx := context.Background()

	for _, name := range []string{RecordCurrentUser, RecordProducts, RecordOrders, RecordUsers} {
		require.NoError(t, store.Put(ctx, Key("s1", name), []byte("{not json")))
	}

	snapshot, err := adapter.ForSession("s1").Load(ctx)
	require.NoError(t, err)

	assert.Nil(t, snapshot.CurrentUser)
	assert.Equal(t, SeedProducts(), snapshot.Products)
	assert.Empty(t, snapshot.Orders)
	assert.Len(t, snapshot.Users, 2)
}

func TestLoad_DirectoryMergeSeedWins(t *testing.T) {
	adapter, store := newTestAdapter(t)
	ctx := context.Background()

	stored := `[
		{"id":"farmer_123","name":"Impostor","phone":"1","role":"farmer","pin":"0000","followers":5},
		{"id":"marketman_1","name":"Ravi","phone":"9000000000","role":"marketman","pin":"4321","following":["farmer_123","farmer_123"]},
		{"id":"ghost_1","name":"Ghost","role":"ghost"}
	]`
	require.NoError(t, store.Put(ctx, Key("s1", RecordUsers), []byte(stored)))

	snapshot, err := adapter.ForSession("s1").Load(ctx)
	require.NoError(t, err)

	require.Len(t, snapshot.Users, 3)
	assert.Equal(t, "Suresh Kumar", snapshot.Users[0].Name)
	assert.Equal(t, 120, snapshot.Users[0].Farmer.Followers)

	ravi := snapshot.Users[2]
	assert.Equal(t, "marketman_1", ravi.ID)
	assert.True(t, ravi.IsMarketman())
	assert.Equal(t, []string{"farmer_123"}, ravi.Marketman.Following)
	// Plain PINs from older records are upgraded to hashes
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(ravi.PINHash), []byte("4321")))
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()
	repo := adapter.ForSession("s1")

	hash, err := bcrypt.GenerateFromPassword([]byte("2468"), bcrypt.MinCost)
	require.NoError(t, err)

	asha := entity.NewFarmer("farmer_asha", entity.Identity{
		Name:     "Asha",
		Phone:    "9123456780",
		Location: &entity.Location{Lat: 12.9, Lon: 77.6},
		PINHash:  string(hash),
	})
	ravi := entity.NewMarketman("marketman_ravi", entity.Identity{Name: "Ravi", Phone: "9000000000", PINHash: string(hash)})
	ravi.Marketman.Following = []string{"farmer_asha"}

	products := []entity.Product{{ID: "prod_x", Name: "Mangoes", FarmerID: "farmer_asha", Price: 120}}
	orders := []entity.Order{{
		ID:            "order_1",
		MarketmanID:   ravi.ID,
		MarketmanName: ravi.Name,
		Items: []entity.OrderItem{{
			ProductID: "prod_x", ProductName: "Mangoes", Quantity: 5, Price: 120, FarmerID: "farmer_asha",
		}},
		Total: 600,
		Date:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}}

	require.NoError(t, repo.SaveCurrentUser(ctx, ravi))
	require.NoError(t, repo.SaveProducts(ctx, products))
	require.NoError(t, repo.SaveOrders(ctx, orders))
	require.NoError(t, repo.SaveUsers(ctx, []*entity.User{asha, ravi}))

	snapshot, err := repo.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, ravi, snapshot.CurrentUser)
	assert.Equal(t, products, snapshot.Products)
	assert.Equal(t, orders, snapshot.Orders)
	require.Len(t, snapshot.Users, 4)
	assert.Equal(t, asha, snapshot.Users[2])
	assert.Equal(t, ravi, snapshot.Users[3])

	// Other sessions are isolated
	other, err := adapter.ForSession("s2").Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, other.CurrentUser)
	assert.Equal(t, SeedProducts(), other.Products)
}

func TestSaveCurrentUser_NilClearsRecord(t *testing.T) {
	adapter, store := newTestAdapter(t)
	ctx := context.Background()
	repo := adapter.ForSession("s1")

	user := entity.NewMarketman("marketman_1", entity.Identity{Name: "Ravi"})
	require.NoError(t, repo.SaveCurrentUser(ctx, user))
	require.NoError(t, repo.SaveCurrentUser(ctx, nil))

	_, err := store.Get(ctx, Key("s1", RecordCurrentUser))
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestSaveUsers_UsesStoredFieldNames(t *testing.T) {
	adapter, store := newTestAdapter(t)
	ctx := context.Background()

	farmer := entity.NewFarmer("farmer_1", entity.Identity{Name: "Asha", PINHash: "$2a$04$hash"})
	farmer.Farmer.Followers = 3
	require.NoError(t, adapter.ForSession("s1").SaveUsers(ctx, []*entity.User{farmer}))

	data, err := store.Get(ctx, Key("s1", RecordUsers))
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "farmer", raw[0]["role"])
	assert.Equal(t, "$2a$04$hash", raw[0]["pin"])
	assert.EqualValues(t, 3, raw[0]["followers"])
	assert.NotContains(t, raw[0], "following")
}
