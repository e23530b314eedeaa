package repository

import (
	"context"

	"farmlink/internal/domain/entity"
)

// SessionSnapshot is the rehydrated state of one client session.
type SessionSnapshot struct {
	CurrentUser *entity.User // Nil when nobody is signed in.
	Products    []entity.Product
	Orders      []entity.Order
	Users       []*entity.User // Directory of farmers and marketmen.
}

// SessionRepository mirrors a session's state into named records.
// Each Save call overwrites one record; records are independent of each other.
type SessionRepository interface {
	// Load reads every record, substituting defaults for missing or unreadable ones.
	Load(ctx context.Context) (*SessionSnapshot, error)

	// SaveCurrentUser writes the signed-in user, or clears the record when user is nil.
	SaveCurrentUser(ctx context.Context, user *entity.User) error

	// SaveProducts overwrites the catalog record.
	SaveProducts(ctx context.Context, products []entity.Product) error

	// SaveOrders overwrites the order ledger record.
	SaveOrders(ctx context.Context, orders []entity.Order) error

	// SaveUsers overwrites the user directory record.
	SaveUsers(ctx context.Context, users []*entity.User) error
}

// SessionRepositoryFactory scopes repositories to a session.
type SessionRepositoryFactory interface {
	ForSession(sessionID string) SessionRepository
}
