package revenuecat

import (
	"context"
	"net/url"
)

// GetCustomer fetches a customer, expanding its attributes when withAttributes is set.
func (c *Client) GetCustomer(ctx context.Context, appUserId string, withAttributes bool, query url.Values) (Object, error) {
	params := withExpand(query, withAttributes, "attributes")
	return c.get(ctx, buildUri(c.projectPath("/customers/%s", appUserId), params))
}

// CreateCustomer creates a customer. Attributes are merged into the request body
// and may override app_user_id.
func (c *Client) CreateCustomer(ctx context.Context, appUserId string, attributes map[string]any) (Object, error) {
	body := make(map[string]any, len(attributes)+1)
	body["app_user_id"] = appUserId
	for key, value := range attributes {
		body[key] = value
	}

	return c.post(ctx, c.projectPath("/customers"), body)
}

func (c *Client) UpdateCustomer(ctx context.Context, appUserId string, attributes map[string]any) (Object, error) {
	if attributes == nil {
		attributes = map[string]any{}
	}

	return c.patch(ctx, c.projectPath("/customers/%s", appUserId), attributes)
}

func (c *Client) DeleteCustomer(ctx context.Context, appUserId string) (Object, error) {
	return c.delete(ctx, c.projectPath("/customers/%s", appUserId))
}

// GetCustomers returns the first page of the project's customers.
func (c *Client) GetCustomers(ctx context.Context, query url.Values) (Object, error) {
	return c.get(ctx, buildUri(c.projectPath("/customers"), query))
}

func (c *Client) GetCustomerAliases(ctx context.Context, appUserId string, query url.Values) (Object, error) {
	return c.get(ctx, buildUri(c.projectPath("/customers/%s/aliases", appUserId), query))
}

func (c *Client) GetCustomerAttributes(ctx context.Context, appUserId string, query url.Values) (Object, error) {
	return c.get(ctx, buildUri(c.projectPath("/customers/%s/attributes", appUserId), query))
}

func (c *Client) GetCustomerActiveEntitlements(ctx context.Context, appUserId string) (Object, error) {
	return c.get(ctx, c.projectPath("/customers/%s/active_entitlements", appUserId))
}

func (c *Client) GetCustomerPurchases(ctx context.Context, appUserId string) (Object, error) {
	return c.get(ctx, c.projectPath("/customers/%s/purchases", appUserId))
}

func (c *Client) GetCustomerSubscriptions(ctx context.Context, appUserId string) (Object, error) {
	return c.get(ctx, c.projectPath("/customers/%s/subscriptions", appUserId))
}
