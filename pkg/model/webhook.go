package model

type EventType string

const (
	EventTypeTest                      EventType = "TEST"
	EventTypeInitialPurchase           EventType = "INITIAL_PURCHASE"
	EventTypeRenewal                   EventType = "RENEWAL"
	EventTypeCancellation              EventType = "CANCELLATION"
	EventTypeUncancellation            EventType = "UNCANCELLATION"
	EventTypeNonRenewingPurchase       EventType = "NON_RENEWING_PURCHASE"
	EventTypeSubscriptionPaused        EventType = "SUBSCRIPTION_PAUSED"
	EventTypeExpiration                EventType = "EXPIRATION"
	EventTypeBillingIssue              EventType = "BILLING_ISSUE"
	EventTypeProductChange             EventType = "PRODUCT_CHANGE"
	EventTypeTransfer                  EventType = "TRANSFER"
	EventTypeSubscriptionExtended      EventType = "SUBSCRIPTION_EXTENDED"
	EventTypeTemporaryEntitlementGrant EventType = "TEMPORARY_ENTITLEMENT_GRANT"
)

type (
	WebhookPayload struct {
		ApiVersion string       `json:"api_version"`
		Event      WebhookEvent `json:"event"`
	}

	WebhookEvent struct {
		Id                string    `json:"id"`
		Type              EventType `json:"type"`
		AppUserId         string    `json:"app_user_id"`
		OriginalAppUserId string    `json:"original_app_user_id"`
		Aliases           []string  `json:"aliases"`
		EntitlementIds    []string  `json:"entitlement_ids"`
		ProductId         string    `json:"product_id"`
		PeriodType        string    `json:"period_type"`
		Environment       string    `json:"environment"`
		Store             string    `json:"store"`
		TransactionId     string    `json:"transaction_id"`
		PurchasedAt       Millis    `json:"purchased_at_ms"`
		ExpirationAt      Millis    `json:"expiration_at_ms"`
		EventTimestamp    Millis    `json:"event_timestamp_ms"`
		TransferredFrom   []string  `json:"transferred_from"`
		TransferredTo     []string  `json:"transferred_to"`
	}
)

// AffectedAppUserIds lists the customers whose state the event may have changed.
// Transfers touch both sides; every other event concerns app_user_id only.
func (e WebhookEvent) AffectedAppUserIds() []string {
	var candidates []string
	if e.Type == EventTypeTransfer {
		candidates = append(candidates, e.TransferredFrom...)
		candidates = append(candidates, e.TransferredTo...)
	} else {
		candidates = append(candidates, e.AppUserId)
	}

	seen := make(map[string]struct{}, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if id == "" {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}
