package daemon

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/TicketsBot/revenuecat-sync/internal/config"
	"github.com/TicketsBot/revenuecat-sync/internal/database"
	"github.com/TicketsBot/revenuecat-sync/pkg/model"
	"github.com/TicketsBot/revenuecat-sync/pkg/revenuecat"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Store interface {
	WithTx(ctx context.Context, fn func(q database.Queries) error) error
}

type Daemon struct {
	config     config.Config
	db         Store
	logger     *zap.Logger
	revenuecat *revenuecat.Client
}

func NewDaemon(config config.Config, db Store, logger *zap.Logger, revenuecat *revenuecat.Client) *Daemon {
	return &Daemon{
		config:     config,
		db:         db,
		logger:     logger,
		revenuecat: revenuecat,
	}
}

func (d *Daemon) Start(ctx context.Context) error {
	d.logger.Info("Starting daemon", zap.Duration("frequency", d.config.RunFrequency))

	timer := time.NewTimer(d.config.RunFrequency)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			start := time.Now()
			if err := d.doRun(ctx, d.config.ExecutionTimeout); err != nil {
				d.logger.Error("Failed to run", zap.Error(err))
			}

			d.logger.Info("Run completed", zap.Duration("duration", time.Since(start)))

			timer.Reset(d.config.RunFrequency)
		case <-ctx.Done():
			d.logger.Info("Shutting down daemon")
			return nil
		}
	}
}

func (d *Daemon) doRun(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return d.RunOnce(ctx)
}

type customerSnapshot struct {
	customer      database.Customer
	subscriptions []database.Subscription
}

// RunOnce mirrors every RevenueCat customer and their subscriptions into the database.
// Everything is fetched first and then written in a single transaction.
func (d *Daemon) RunOnce(ctx context.Context) (err error) {
	logger := d.logger.With(zap.String("run_id", uuid.NewString()))
	logger.Debug("Running synchronisation")

	start := time.Now()
	defer func() {
		duration := time.Since(start)
		runDuration.Observe(duration.Seconds())

		if err != nil {
			runsTotal.WithLabelValues("failed").Inc()
		} else {
			runsTotal.WithLabelValues("success").Inc()
		}

		if d.config.ExecutionTimeout > 0 && duration > (d.config.ExecutionTimeout/2.0) {
			logger.Warn("Execution took more than 50% of the timeout", zap.Duration("duration", duration))
		}
	}()

	logger.Debug("Fetching customers")
	customers, err := d.listCustomers(ctx)
	if err != nil {
		logger.Error("Failed to list customers", zap.Error(err))
		return err
	}
	logger.Debug("Fetched customers", zap.Int("count", len(customers)))

	allowRemovals := true
	if len(customers) < d.config.MinCustomersThreshold {
		logger.Warn("Number of customers below threshold", zap.Int("count", len(customers)))
		allowRemovals = false
	}

	if !allowRemovals {
		logger.Warn("Continuing, but not removing customers")
	}

	snapshots := make([]customerSnapshot, 0, len(customers))
	seen := make(map[string]struct{}, len(customers))
	for _, customer := range customers {
		snapshot, err := d.fetchCustomer(ctx, customer)
		if err != nil {
			if revenuecat.IsNotFound(err) {
				// Deleted between listing and fetching, so treat it as unseen.
				logger.Info("Customer disappeared during sync", zap.String("app_user_id", customer.Id))
				continue
			}

			logger.Error("Failed to fetch customer", zap.String("app_user_id", customer.Id), zap.Error(err))
			return err
		}

		seen[customer.Id] = struct{}{}
		snapshots = append(snapshots, snapshot)
	}

	logger.Debug("Fetched subscriptions", zap.Int("customers", len(snapshots)))

	return d.db.WithTx(ctx, func(q database.Queries) error {
		for _, snapshot := range snapshots {
			if err := d.writeCustomer(ctx, q, snapshot); err != nil {
				logger.Error("Failed to write customer", zap.String("app_user_id", snapshot.customer.AppUserId), zap.Error(err))
				return err
			}
		}

		logger.Info("Updated customers", zap.Int("count", len(snapshots)))

		if !allowRemovals {
			return nil
		}

		// Customers synced since the run started, e.g. by a webhook, are newer than the listing.
		existing, err := q.ListCustomerIds(ctx, start)
		if err != nil {
			return err
		}

		var stale []string
		for _, id := range existing {
			if _, ok := seen[id]; !ok {
				stale = append(stale, id)
			}
		}

		if len(stale) > d.config.MaxRemovalsThreshold {
			logger.Error("Too many customers flagged for removal", zap.Int("count", len(stale)))
			return fmt.Errorf("too many customers flagged for removal: %d", len(stale))
		}

		for _, id := range stale {
			if _, err := q.DeleteCustomer(ctx, id); err != nil {
				logger.Error("Failed to remove customer", zap.String("app_user_id", id), zap.Error(err))
				return err
			}

			logger.Debug("Removed customer", zap.String("app_user_id", id))
		}

		customersRemoved.Add(float64(len(stale)))
		logger.Info("Removed customers", zap.Int("count", len(stale)))

		return nil
	})
}

// SyncCustomer refreshes a single customer, e.g. after a webhook event. A customer that
// no longer exists in RevenueCat is removed locally.
func (d *Daemon) SyncCustomer(ctx context.Context, appUserId string) error {
	snapshot, err := d.fetchCustomerById(ctx, appUserId)
	notFound := revenuecat.IsNotFound(err)
	if err != nil && !notFound {
		return err
	}

	return d.db.WithTx(ctx, func(q database.Queries) error {
		if notFound {
			deleted, err := q.DeleteCustomer(ctx, appUserId)
			if err != nil {
				return err
			}

			if deleted {
				customersRemoved.Inc()
				d.logger.Info("Removed customer missing from RevenueCat", zap.String("app_user_id", appUserId))
			}

			return nil
		}

		return d.writeCustomer(ctx, q, snapshot)
	})
}

func (d *Daemon) fetchCustomerById(ctx context.Context, appUserId string) (customerSnapshot, error) {
	res, err := d.revenuecat.GetCustomer(ctx, appUserId, false, nil)
	if err != nil {
		return customerSnapshot{}, err
	}

	var customer model.Customer
	if err := res.Decode(&customer); err != nil {
		return customerSnapshot{}, fmt.Errorf("failed to decode customer %s: %w", appUserId, err)
	}

	if customer.Id == "" {
		customer.Id = appUserId
	}

	return d.fetchCustomer(ctx, customer)
}

// fetchCustomer collects the customer's subscriptions from RevenueCat without touching
// the database.
func (d *Daemon) fetchCustomer(ctx context.Context, customer model.Customer) (customerSnapshot, error) {
	subscriptions, err := d.listSubscriptions(ctx, customer.Id)
	if err != nil {
		return customerSnapshot{}, err
	}

	now := time.Now()
	snapshot := customerSnapshot{
		customer: database.Customer{
			AppUserId:   customer.Id,
			FirstSeenAt: customer.FirstSeenAt.Ptr(),
			LastSeenAt:  customer.LastSeenAt.Ptr(),
			SyncedAt:    now,
		},
		subscriptions: make([]database.Subscription, 0, len(subscriptions)),
	}

	for _, sub := range subscriptions {
		snapshot.subscriptions = append(snapshot.subscriptions, database.Subscription{
			Id:                    sub.Id,
			AppUserId:             customer.Id,
			ProductId:             sub.ProductId,
			Entitlement:           d.entitlementName(ctx, sub),
			Status:                string(sub.Status),
			GivesAccess:           sub.GivesAccess,
			AutoRenewalStatus:     sub.AutoRenewalStatus,
			Store:                 sub.Store,
			Environment:           sub.Environment,
			CurrentPeriodStartsAt: sub.CurrentPeriodStartsAt.Ptr(),
			CurrentPeriodEndsAt:   sub.CurrentPeriodEndsAt.Ptr(),
			SyncedAt:              now,
		})
	}

	return snapshot, nil
}

func (d *Daemon) writeCustomer(ctx context.Context, q database.Queries, snapshot customerSnapshot) error {
	if err := q.UpsertCustomer(ctx, snapshot.customer); err != nil {
		return err
	}

	removed, err := q.ReplaceSubscriptions(ctx, snapshot.customer.AppUserId, snapshot.subscriptions)
	if err != nil {
		return err
	}

	customersSynced.Inc()
	d.logger.Debug("Synced customer",
		zap.String("app_user_id", snapshot.customer.AppUserId),
		zap.Int("subscriptions", len(snapshot.subscriptions)),
		zap.Int("removed_subscriptions", removed),
	)

	return nil
}

func (d *Daemon) listCustomers(ctx context.Context) ([]model.Customer, error) {
	query := url.Values{}
	if d.config.RevenueCat.PageSize > 0 {
		query.Set("limit", strconv.Itoa(d.config.RevenueCat.PageSize))
	}

	first, err := d.revenuecat.GetCustomers(ctx, query)
	if err != nil {
		return nil, err
	}

	var customers []model.Customer
	err = d.revenuecat.ListAll(ctx, first, func(item revenuecat.Object) error {
		var customer model.Customer
		if err := item.Decode(&customer); err != nil {
			return err
		}

		if customer.Id == "" {
			d.logger.Warn("Found customer with empty ID", zap.Any("customer", item))
			return nil
		}

		customers = append(customers, customer)
		return nil
	})

	return customers, err
}

func (d *Daemon) listSubscriptions(ctx context.Context, appUserId string) ([]model.Subscription, error) {
	first, err := d.revenuecat.GetCustomerSubscriptions(ctx, appUserId)
	if err != nil {
		return nil, err
	}

	var subscriptions []model.Subscription
	err = d.revenuecat.ListAll(ctx, first, func(item revenuecat.Object) error {
		var sub model.Subscription
		if err := item.Decode(&sub); err != nil {
			return err
		}

		subscriptions = append(subscriptions, sub)
		return nil
	})

	return subscriptions, err
}

// entitlementName prefers the lookup key embedded in the subscription and falls back
// to fetching the entitlement, which the catalog cache usually serves.
func (d *Daemon) entitlementName(ctx context.Context, sub model.Subscription) string {
	if name := sub.EntitlementName(); name != "" {
		return name
	}

	if len(sub.Entitlements.Items) == 0 || sub.Entitlements.Items[0].Id == "" {
		return ""
	}

	entitlementId := sub.Entitlements.Items[0].Id
	res, err := d.revenuecat.GetEntitlement(ctx, entitlementId, false, nil)
	if err != nil {
		d.logger.Warn("Failed to resolve entitlement", zap.String("entitlement_id", entitlementId), zap.Error(err))
		return ""
	}

	return res.String("lookup_key")
}
