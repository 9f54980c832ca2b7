package database

import (
	"context"
	"time"
)

func (q *txQueries) UpsertCustomer(ctx context.Context, customer Customer) error {
	query := `
INSERT INTO customers (app_user_id, first_seen_at, last_seen_at, synced_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (app_user_id) DO UPDATE SET
	first_seen_at = EXCLUDED.first_seen_at,
	last_seen_at = EXCLUDED.last_seen_at,
	synced_at = EXCLUDED.synced_at;`

	_, err := q.tx.Exec(ctx, query, customer.AppUserId, customer.FirstSeenAt, customer.LastSeenAt, customer.SyncedAt)
	return err
}

func (q *txQueries) ListCustomerIds(ctx context.Context, syncedBefore time.Time) ([]string, error) {
	rows, err := q.tx.Query(ctx, `SELECT app_user_id FROM customers WHERE synced_at < $1;`, syncedBefore)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// DeleteCustomer removes the customer and, through the foreign key, its subscriptions.
func (q *txQueries) DeleteCustomer(ctx context.Context, appUserId string) (bool, error) {
	tag, err := q.tx.Exec(ctx, `DELETE FROM customers WHERE app_user_id = $1;`, appUserId)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}
