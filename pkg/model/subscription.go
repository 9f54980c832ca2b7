package model

type (
	SubscriptionStatus string

	Subscription struct {
		Object                string             `json:"object"`
		Id                    string             `json:"id"`
		CustomerId            string             `json:"customer_id"`
		OriginalCustomerId    string             `json:"original_customer_id"`
		ProductId             string             `json:"product_id"`
		StartsAt              Millis             `json:"starts_at"`
		CurrentPeriodStartsAt Millis             `json:"current_period_starts_at"`
		CurrentPeriodEndsAt   Millis             `json:"current_period_ends_at"`
		GivesAccess           bool               `json:"gives_access"`
		PendingPayment        bool               `json:"pending_payment"`
		AutoRenewalStatus     string             `json:"auto_renewal_status"`
		Status                SubscriptionStatus `json:"status"`
		Store                 string             `json:"store"`
		Environment           string             `json:"environment"`
		Country               string             `json:"country"`
		Entitlements          EntitlementList    `json:"entitlements"`
	}
)

const (
	SubscriptionStatusTrialing       SubscriptionStatus = "trialing"
	SubscriptionStatusActive         SubscriptionStatus = "active"
	SubscriptionStatusExpired        SubscriptionStatus = "expired"
	SubscriptionStatusInGracePeriod  SubscriptionStatus = "in_grace_period"
	SubscriptionStatusInBillingRetry SubscriptionStatus = "in_billing_retry"
	SubscriptionStatusPaused         SubscriptionStatus = "paused"
	SubscriptionStatusUnknown        SubscriptionStatus = "unknown"
	SubscriptionStatusIncomplete     SubscriptionStatus = "incomplete"
)

// EntitlementName is the lookup key of the first entitlement the subscription grants.
func (s Subscription) EntitlementName() string {
	for _, entitlement := range s.Entitlements.Items {
		if entitlement.LookupKey != "" {
			return entitlement.LookupKey
		}
	}

	return ""
}
