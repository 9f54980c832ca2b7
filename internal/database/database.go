package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type (
	Customer struct {
		AppUserId   string
		FirstSeenAt *time.Time
		LastSeenAt  *time.Time
		SyncedAt    time.Time
	}

	Subscription struct {
		Id                    string
		AppUserId             string
		ProductId             string
		Entitlement           string
		Status                string
		GivesAccess           bool
		AutoRenewalStatus     string
		Store                 string
		Environment           string
		CurrentPeriodStartsAt *time.Time
		CurrentPeriodEndsAt   *time.Time
		SyncedAt              time.Time
	}
)

// Queries are the operations available inside a transaction.
type Queries interface {
	UpsertCustomer(ctx context.Context, customer Customer) error
	// ReplaceSubscriptions stores subscriptions and deletes every other subscription
	// of the customer, returning how many were deleted.
	ReplaceSubscriptions(ctx context.Context, appUserId string, subscriptions []Subscription) (int, error)
	// ListCustomerIds returns the customers last synced before syncedBefore.
	ListCustomerIds(ctx context.Context, syncedBefore time.Time) ([]string, error)
	DeleteCustomer(ctx context.Context, appUserId string) (bool, error)
}

type Database struct {
	pool *pgxpool.Pool
}

func NewDatabase(pool *pgxpool.Pool) *Database {
	return &Database{
		pool: pool,
	}
}

func Connect(ctx context.Context, uri string) (*pgxpool.Pool, error) {
	return pgxpool.Connect(ctx, uri)
}

func (d *Database) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// WithTx runs fn in a transaction, committing only if fn returns nil.
func (d *Database) WithTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
		defer cancel()

		tx.Rollback(ctx)
	}()

	if err := fn(&txQueries{tx: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

type txQueries struct {
	tx pgx.Tx
}

var _ Queries = (*txQueries)(nil)
