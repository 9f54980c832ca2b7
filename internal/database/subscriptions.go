package database

import (
	"context"

	"github.com/jackc/pgx/v4"
)

func (q *txQueries) ReplaceSubscriptions(ctx context.Context, appUserId string, subscriptions []Subscription) (int, error) {
	query := `
INSERT INTO subscriptions (
	id, app_user_id, product_id, entitlement, status, gives_access, auto_renewal_status,
	store, environment, current_period_starts_at, current_period_ends_at, synced_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
	app_user_id = EXCLUDED.app_user_id,
	product_id = EXCLUDED.product_id,
	entitlement = EXCLUDED.entitlement,
	status = EXCLUDED.status,
	gives_access = EXCLUDED.gives_access,
	auto_renewal_status = EXCLUDED.auto_renewal_status,
	store = EXCLUDED.store,
	environment = EXCLUDED.environment,
	current_period_starts_at = EXCLUDED.current_period_starts_at,
	current_period_ends_at = EXCLUDED.current_period_ends_at,
	synced_at = EXCLUDED.synced_at;`

	batch := &pgx.Batch{}
	ids := make([]string, 0, len(subscriptions))
	for _, sub := range subscriptions {
		batch.Queue(query,
			sub.Id, appUserId, sub.ProductId, sub.Entitlement, sub.Status, sub.GivesAccess, sub.AutoRenewalStatus,
			sub.Store, sub.Environment, sub.CurrentPeriodStartsAt, sub.CurrentPeriodEndsAt, sub.SyncedAt,
		)

		ids = append(ids, sub.Id)
	}

	if batch.Len() > 0 {
		res := q.tx.SendBatch(ctx, batch)
		for range subscriptions {
			if _, err := res.Exec(); err != nil {
				res.Close()
				return 0, err
			}
		}

		if err := res.Close(); err != nil {
			return 0, err
		}
	}

	tag, err := q.tx.Exec(ctx, `DELETE FROM subscriptions WHERE app_user_id = $1 AND NOT (id = ANY($2));`, appUserId, ids)
	if err != nil {
		return 0, err
	}

	return int(tag.RowsAffected()), nil
}
