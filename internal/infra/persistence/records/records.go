// Package records mirrors session state into named records of a RecordStore.
package records

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"
)

// Record names, one record per name inside a session namespace.
const (
	RecordCurrentUser = "agri-user"
	RecordProducts    = "agri-products"
	RecordOrders      = "agri-orders"
	RecordUsers       = "agri-all-users"
)

// Params defines the dependencies of the adapter
type Params struct {
	fx.In

	Store  repository.RecordStore
	Hasher service.PINHasher
	Logger *slog.Logger
}

// Adapter hands out session-scoped repositories over one record store.
type Adapter struct {
	store  repository.RecordStore
	hasher service.PINHasher
	logger *slog.Logger

	seedOnce  sync.Once
	seedUsers []*entity.User
	seedErr   error
}

// NewAdapter creates the persistence adapter
func NewAdapter(params Params) *Adapter {
	return &Adapter{
		store:  params.Store,
		hasher: params.Hasher,
		logger: params.Logger,
	}
}

// Key returns the record store key of a named record in a session.
func Key(sessionID, name string) string {
	return "sessions/" + sessionID + "/" + name
}

// ForSession returns the repository for one session's records.
func (a *Adapter) ForSession(sessionID string) repository.SessionRepository {
	return &sessionRecords{
		adapter:   a,
		sessionID: sessionID,
		logger:    a.logger.With(slog.String("session_id", sessionID)),
	}
}

// seeds returns fresh copies of the seed farmers with hashed PINs.
func (a *Adapter) seeds() ([]*entity.User, error) {
	a.seedOnce.Do(func() {
		for _, rec := range seedFarmers() {
			hash, err := a.hasher.Hash(rec.PIN)
			if err != nil {
				a.seedErr = errors.Wrapf(err, "failed to hash seed PIN for %s", rec.ID)

				return
			}
			rec.PIN = hash

			user, err := toUserDomain(rec)
			if err != nil {
				a.seedErr = err

				return
			}
			a.seedUsers = append(a.seedUsers, user)
		}
	})
	if a.seedErr != nil {
		return nil, a.seedErr
	}

	users := make([]*entity.User, 0, len(a.seedUsers))
	for _, u := range a.seedUsers {
		users = append(users, u.Clone())
	}

	return users, nil
}

// ensureHashed upgrades records written with a plain PIN.
func (a *Adapter) ensureHashed(u *entity.User) error {
	if u.PINHash == "" {
		return nil
	}
	if _, err := bcrypt.Cost([]byte(u.PINHash)); err == nil {
		return nil
	}

	hash, err := a.hasher.Hash(u.PINHash)
	if err != nil {
		return errors.Wrapf(err, "failed to hash stored PIN for %s", u.ID)
	}
	u.PINHash = hash

	return nil
}

type sessionRecords struct {
	adapter   *Adapter
	sessionID string
	logger    *slog.Logger
}

// Load reads the four records independently; an unreadable record never fails the load.
func (r *sessionRecords) Load(ctx context.Context) (*repository.SessionSnapshot, error) {
	seeds, err := r.adapter.seeds()
	if err != nil {
		return nil, err
	}

	snapshot := &repository.SessionSnapshot{
		CurrentUser: r.loadCurrentUser(ctx),
		Products:    r.loadProducts(ctx),
		Orders:      r.loadOrders(ctx),
		Users:       r.mergeDirectory(seeds, r.loadUsers(ctx)),
	}

	return snapshot, nil
}

func (r *sessionRecords) loadCurrentUser(ctx context.Context) *entity.User {
	var rec userRecord
	if !r.read(ctx, RecordCurrentUser, &rec) {
		return nil
	}

	user, err := toUserDomain(rec)
	if err != nil {
		r.logger.WarnContext(ctx, "Discarding unreadable current user record", slog.Any("error", err))

		return nil
	}
	if err := r.adapter.ensureHashed(user); err != nil {
		r.logger.WarnContext(ctx, "Discarding current user record", slog.Any("error", err))

		return nil
	}

	return user
}

func (r *sessionRecords) loadProducts(ctx context.Context) []entity.Product {
	var recs []productRecord
	if !r.read(ctx, RecordProducts, &recs) || recs == nil {
		return SeedProducts()
	}

	products := make([]entity.Product, 0, len(recs))
	for _, rec := range recs {
		products = append(products, toProductDomain(rec))
	}

	return products
}

func (r *sessionRecords) loadOrders(ctx context.Context) []entity.Order {
	var recs []orderRecord
	if !r.read(ctx, RecordOrders, &recs) {
		return []entity.Order{}
	}

	orders := make([]entity.Order, 0, len(recs))
	for _, rec := range recs {
		orders = append(orders, toOrderDomain(rec))
	}

	return orders
}

func (r *sessionRecords) loadUsers(ctx context.Context) []*entity.User {
	var recs []userRecord
	if !r.read(ctx, RecordUsers, &recs) {
		return nil
	}

	users := make([]*entity.User, 0, len(recs))
	for _, rec := range recs {
		user, err := toUserDomain(rec)
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping unreadable directory entry", slog.Any("error", err))

			continue
		}
		if err := r.adapter.ensureHashed(user); err != nil {
			r.logger.WarnContext(ctx, "Skipping directory entry", slog.Any("error", err))

			continue
		}
		users = append(users, user)
	}

	return users
}

// mergeDirectory puts the seed farmers first and appends stored users whose id is new.
func (r *sessionRecords) mergeDirectory(seeds, stored []*entity.User) []*entity.User {
	seen := make(map[string]struct{}, len(seeds)+len(stored))
	merged := make([]*entity.User, 0, len(seeds)+len(stored))

	for _, u := range append(seeds, stored...) {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		merged = append(merged, u)
	}

	return merged
}

// read decodes one record into dst and reports whether a usable value was found.
func (r *sessionRecords) read(ctx context.Context, name string, dst any) bool {
	data, err := r.adapter.store.Get(ctx, Key(r.sessionID, name))
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			r.logger.WarnContext(ctx, "Failed to read record",
				slog.String("record", name),
				slog.Any("error", err),
			)
		}

		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		r.logger.WarnContext(ctx, "Failed to parse record, using defaults",
			slog.String("record", name),
			slog.Any("error", err),
		)

		return false
	}

	return true
}

// SaveCurrentUser writes the signed-in user or removes the record on sign-out
func (r *sessionRecords) SaveCurrentUser(ctx context.Context, user *entity.User) error {
	if user == nil {
		return errors.Wrap(r.adapter.store.Delete(ctx, Key(r.sessionID, RecordCurrentUser)), "failed to clear current user")
	}

	return r.write(ctx, RecordCurrentUser, fromUserDomain(user))
}

// SaveProducts overwrites the catalog record
func (r *sessionRecords) SaveProducts(ctx context.Context, products []entity.Product) error {
	recs := make([]productRecord, 0, len(products))
	for _, p := range products {
		recs = append(recs, fromProductDomain(p))
	}

	return r.write(ctx, RecordProducts, recs)
}

// SaveOrders overwrites the order ledger record
func (r *sessionRecords) SaveOrders(ctx context.Context, orders []entity.Order) error {
	recs := make([]orderRecord, 0, len(orders))
	for _, o := range orders {
		recs = append(recs, fromOrderDomain(o))
	}

	return r.write(ctx, RecordOrders, recs)
}

// SaveUsers overwrites the user directory record
func (r *sessionRecords) SaveUsers(ctx context.Context, users []*entity.User) error {
	recs := make([]userRecord, 0, len(users))
	for _, u := range users {
		recs = append(recs, fromUserDomain(u))
	}

	return r.write(ctx, RecordUsers, recs)
}

func (r *sessionRecords) write(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to encode record %s", name)
	}

	if err := r.adapter.store.Put(ctx, Key(r.sessionID, name), data); err != nil {
		return errors.Wrapf(err, "failed to store record %s", name)
	}

	return nil
}
