package revenuecat

import "context"

// GetUserSubscriptions returns the customer's active entitlements.
func (c *Client) GetUserSubscriptions(ctx context.Context, appUserId string) ([]Object, error) {
	activeEntitlements, err := c.GetCustomerActiveEntitlements(ctx, appUserId)
	if err != nil {
		return nil, err
	}

	return activeEntitlements.Items(), nil
}

// GetCustomerActiveSubscription returns the first subscription that gives access,
// or nil if there is none.
func (c *Client) GetCustomerActiveSubscription(ctx context.Context, appUserId string) (Object, error) {
	subscriptions, err := c.GetCustomerSubscriptions(ctx, appUserId)
	if err != nil {
		return nil, err
	}

	for _, subscription := range subscriptions.Items() {
		if subscription.Bool("gives_access") {
			return subscription, nil
		}
	}

	return nil, nil
}

// SubscriptionName extracts an entitlement name from a webhook event, an entitlement
// object or a customer active entitlement, in that order of precedence.
func SubscriptionName(data Object) string {
	switch ids := data["entitlement_ids"].(type) {
	case []any:
		if len(ids) == 0 {
			return ""
		}

		name, _ := scalarString(ids[0])
		return name
	case []string:
		if len(ids) == 0 {
			return ""
		}

		return ids[0]
	}

	if identifier, ok := data["identifier"]; ok && identifier != nil {
		name, _ := scalarString(identifier)
		return name
	}

	if entitlementId, ok := data["entitlement_id"]; ok && entitlementId != nil {
		name, _ := scalarString(entitlementId)
		return name
	}

	return ""
}
