package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TicketsBot/revenuecat-sync/pkg/model"
)

func TestMillis(t *testing.T) {
	t.Parallel()

	var decoded struct {
		ExpiresAt model.Millis `json:"expires_at"`
		Missing   model.Millis `json:"missing"`
		Null      model.Millis `json:"null"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"expires_at": 1755778147000, "null": null}`), &decoded))
	assert.Equal(t, time.UnixMilli(1755778147000).UTC(), decoded.ExpiresAt.Time)
	assert.True(t, decoded.Missing.IsZero())
	assert.True(t, decoded.Null.IsZero())
	assert.Nil(t, decoded.Null.Ptr())
	require.NotNil(t, decoded.ExpiresAt.Ptr())

	data, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"expires_at": 1755778147000, "missing": null, "null": null}`, string(data))

	var invalid model.Millis
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &invalid))
}

func TestSubscription_Decode(t *testing.T) {
	t.Parallel()

	raw := `{
		"object": "subscription",
		"id": "sub2",
		"customer_id": "test-user",
		"product_id": "prod2",
		"current_period_starts_at": 1755778447000,
		"current_period_ends_at": 1755778747000,
		"gives_access": true,
		"auto_renewal_status": "will_renew",
		"status": "active",
		"environment": "sandbox",
		"store": "app_store",
		"entitlements": {"items": [{"id": "entl123", "lookup_key": "Pro"}]}
	}`

	var sub model.Subscription
	require.NoError(t, json.Unmarshal([]byte(raw), &sub))
	assert.Equal(t, "sub2", sub.Id)
	assert.Equal(t, model.SubscriptionStatusActive, sub.Status)
	assert.True(t, sub.GivesAccess)
	assert.Equal(t, "Pro", sub.EntitlementName())
	assert.Equal(t, int64(1755778747000), sub.CurrentPeriodEndsAt.UnixMilli())
}

func TestSubscription_EntitlementName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", model.Subscription{}.EntitlementName())

	sub := model.Subscription{Entitlements: model.EntitlementList{Items: []model.Entitlement{
		{Id: "entl1"},
		{Id: "entl2", LookupKey: "plus"},
	}}}
	assert.Equal(t, "plus", sub.EntitlementName())
}

func TestWebhookEvent_AffectedAppUserIds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event model.WebhookEvent
		want  []string
	}{
		{
			name:  "purchase",
			event: model.WebhookEvent{Type: model.EventTypeInitialPurchase, AppUserId: "u1"},
			want:  []string{"u1"},
		},
		{
			name: "transfer",
			event: model.WebhookEvent{
				Type:            model.EventTypeTransfer,
				AppUserId:       "ignored",
				TransferredFrom: []string{"u1", "u1"},
				TransferredTo:   []string{"u2", ""},
			},
			want: []string{"u1", "u2"},
		},
		{
			name:  "missing app user id",
			event: model.WebhookEvent{Type: model.EventTypeRenewal},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.event.AffectedAppUserIds())
		})
	}
}

func TestWebhookPayload_Decode(t *testing.T) {
	t.Parallel()

	raw := `{
		"api_version": "1.0",
		"event": {
			"id": "evt1",
			"type": "INITIAL_PURCHASE",
			"app_user_id": "test-user",
			"entitlement_ids": ["pro"],
			"product_id": "pro_monthly",
			"transaction_id": "2000000885927737",
			"event_timestamp_ms": 1755778147000,
			"expiration_at_ms": null
		}
	}`

	var payload model.WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, "1.0", payload.ApiVersion)
	assert.Equal(t, model.EventTypeInitialPurchase, payload.Event.Type)
	assert.Equal(t, []string{"pro"}, payload.Event.EntitlementIds)
	assert.True(t, payload.Event.ExpirationAt.IsZero())
	assert.False(t, payload.Event.EventTimestamp.IsZero())
}
