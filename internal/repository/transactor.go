package repository

import (
	"context"

	"github.com/rpattn/fleetreg/internal/db"

	"github.com/jackc/pgx/v5"
)

// TxRepositories are repositories bound to a single transaction.
type TxRepositories struct {
	Users     UserRepository
	Profiles  ProfileRepository
	UserRoles UserRoleRepository
}

// Transactor runs a unit of work atomically.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(TxRepositories) error) error
}

type transactor struct {
	conn *db.Connection
}

// NewTransactor builds a Transactor on top of the connection pool.
func NewTransactor(conn *db.Connection) Transactor {
	return &transactor{conn: conn}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(TxRepositories) error) error {
	return t.conn.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(TxRepositories{
			Users:     NewUserRepository(tx),
			Profiles:  NewProfileRepository(tx),
			UserRoles: NewUserRoleRepository(tx),
		})
	})
}
