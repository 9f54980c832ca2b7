package revenuecat_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TicketsBot/revenuecat-sync/pkg/revenuecat"
)

func TestClient_GetUserSubscriptions(t *testing.T) {
	t.Parallel()

	t.Run("returns active entitlement items", func(t *testing.T) {
		t.Parallel()

		client, requests := newTestClient(t, respondJSON(http.StatusOK, map[string]any{
			"items": []any{
				map[string]any{
					"entitlement_id": "premium",
					"expires_at":     1755778147000,
					"object":         "customer.active_entitlement",
				},
			},
			"next_page": nil,
			"object":    "list",
			"url":       "https://api.revenuecat.com/v2/projects/test/customers/test-user/active_entitlements",
		}))

		subscriptions, err := client.GetUserSubscriptions(context.Background(), "test-user")
		require.NoError(t, err)
		require.Len(t, subscriptions, 1)
		assert.Equal(t, "premium", subscriptions[0].String("entitlement_id"))
		assert.Equal(t, "customer.active_entitlement", subscriptions[0].String("object"))
		assert.Equal(t, "/v2/projects/test-project-id/customers/test-user/active_entitlements", requests.all()[0].Path)
	})

	t.Run("empty when items missing", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, respondJSON(http.StatusOK, map[string]any{"object": "list"}))

		subscriptions, err := client.GetUserSubscriptions(context.Background(), "test-user")
		require.NoError(t, err)
		assert.NotNil(t, subscriptions)
		assert.Empty(t, subscriptions)
	})

	t.Run("propagates errors", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, respondJSON(http.StatusUnauthorized, map[string]any{"type": "authentication_error"}))

		_, err := client.GetUserSubscriptions(context.Background(), "test-user")
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, revenuecat.StatusCode(err))
	})
}

func TestClient_GetCustomerActiveSubscription(t *testing.T) {
	t.Parallel()

	t.Run("returns first subscription giving access", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, respondJSON(http.StatusOK, map[string]any{
			"items": []any{
				map[string]any{
					"auto_renewal_status": "will_not_renew",
					"customer_id":         "test-user",
					"entitlements":        map[string]any{"items": []any{}},
					"gives_access":        false,
					"id":                  "sub1",
					"status":              "expired",
					"product_id":          "prod1",
				},
				map[string]any{
					"auto_renewal_status": "will_renew",
					"customer_id":         "test-user",
					"entitlements": map[string]any{"items": []any{
						map[string]any{"id": "entl123", "lookup_key": "Pro"},
					}},
					"gives_access": true,
					"id":           "sub2",
					"status":       "active",
					"product_id":   "prod2",
				},
				map[string]any{
					"gives_access": true,
					"id":           "sub3",
					"status":       "active",
				},
			},
			"next_page": nil,
			"object":    "list",
		}))

		subscription, err := client.GetCustomerActiveSubscription(context.Background(), "test-user")
		require.NoError(t, err)
		require.NotNil(t, subscription)
		assert.Equal(t, "sub2", subscription.String("id"))
		assert.Equal(t, "active", subscription.String("status"))
		assert.True(t, subscription.Bool("gives_access"))
		assert.Equal(t, "prod2", subscription.String("product_id"))
	})

	t.Run("nil when nothing gives access", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, respondJSON(http.StatusOK, map[string]any{
			"items": []any{
				map[string]any{"gives_access": false, "id": "sub1", "status": "expired"},
				map[string]any{"gives_access": "true", "id": "sub2"},
				map[string]any{"id": "sub3"},
			},
			"object": "list",
		}))

		subscription, err := client.GetCustomerActiveSubscription(context.Background(), "test-user")
		require.NoError(t, err)
		assert.Nil(t, subscription)
	})

	t.Run("nil when items missing", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, respondJSON(http.StatusOK, map[string]any{}))

		subscription, err := client.GetCustomerActiveSubscription(context.Background(), "test-user")
		require.NoError(t, err)
		assert.Nil(t, subscription)
	})
}

func TestSubscriptionName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data revenuecat.Object
		want string
	}{
		{
			name: "entitlement object",
			data: revenuecat.Object{
				"identifier":  "premium",
				"is_active":   true,
				"will_renew":  true,
				"period_type": "NORMAL",
			},
			want: "premium",
		},
		{
			name: "entitlement without identifier",
			data: revenuecat.Object{"is_active": true, "will_renew": true, "period_type": "NORMAL"},
			want: "",
		},
		{
			name: "webhook event",
			data: revenuecat.Object{
				"entitlement_ids": []any{"pro"},
				"product_id":      "pro_monthly",
				"type":            "INITIAL_PURCHASE",
				"transaction_id":  "2000000885927737",
			},
			want: "pro",
		},
		{
			name: "webhook event with string slice",
			data: revenuecat.Object{"entitlement_ids": []string{"pro", "plus"}},
			want: "pro",
		},
		{
			name: "webhook event without entitlement ids",
			data: revenuecat.Object{"product_id": "pro_monthly", "type": "INITIAL_PURCHASE"},
			want: "",
		},
		{
			name: "webhook event with empty entitlement ids ignores identifier",
			data: revenuecat.Object{"entitlement_ids": []any{}, "identifier": "premium"},
			want: "",
		},
		{
			name: "entitlement ids take precedence",
			data: revenuecat.Object{"entitlement_ids": []any{"pro"}, "identifier": "premium", "entitlement_id": "basic"},
			want: "pro",
		},
		{
			name: "customer active entitlement",
			data: revenuecat.Object{"entitlement_id": "premium", "object": "customer.active_entitlement"},
			want: "premium",
		},
		{
			name: "null identifier falls through",
			data: revenuecat.Object{"identifier": nil, "entitlement_id": "premium"},
			want: "premium",
		},
		{
			name: "null entitlement ids falls through",
			data: revenuecat.Object{"entitlement_ids": nil, "identifier": "premium"},
			want: "premium",
		},
		{
			name: "empty",
			data: revenuecat.Object{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, revenuecat.SubscriptionName(tt.data))
		})
	}
}

func TestObject(t *testing.T) {
	t.Parallel()

	obj := revenuecat.Object{
		"id":           "sub1",
		"gives_access": true,
		"expires_at":   float64(1755778147000),
		"next_page":    "/v2/projects/p/customers?starting_after=a",
		"items":        []any{map[string]any{"id": "a"}, "not an object"},
	}

	assert.Equal(t, "sub1", obj.String("id"))
	assert.Equal(t, "1755778147000", obj.String("expires_at"))
	assert.Equal(t, "", obj.String("missing"))
	assert.True(t, obj.Bool("gives_access"))
	assert.False(t, obj.Bool("id"))
	assert.Equal(t, "/v2/projects/p/customers?starting_after=a", obj.NextPage())
	require.Len(t, obj.Items(), 1)
	assert.Equal(t, "a", obj.Items()[0].String("id"))

	var decoded struct {
		Id          string `json:"id"`
		GivesAccess bool   `json:"gives_access"`
		ExpiresAt   int64  `json:"expires_at"`
	}
	require.NoError(t, obj.Decode(&decoded))
	assert.Equal(t, "sub1", decoded.Id)
	assert.True(t, decoded.GivesAccess)
	assert.Equal(t, int64(1755778147000), decoded.ExpiresAt)
}
