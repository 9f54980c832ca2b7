package revenuecat

import (
	"context"
	"net/url"
)

// The expand flag on catalog calls adds RevenueCat's default expansion for that
// resource, overriding any expand value already present in query.

func (c *Client) GetProduct(ctx context.Context, productId string, expand bool, query url.Values) (Object, error) {
	params := withExpand(query, expand, "app")
	return c.get(ctx, buildUri(c.projectPath("/products/%s", productId), params))
}

func (c *Client) GetProducts(ctx context.Context, expand bool, query url.Values) (Object, error) {
	params := withExpand(query, expand, "items.app")
	return c.get(ctx, buildUri(c.projectPath("/products"), params))
}

func (c *Client) GetOfferings(ctx context.Context, expand bool, query url.Values) (Object, error) {
	params := withExpand(query, expand, "items.package")
	return c.get(ctx, buildUri(c.projectPath("/offerings"), params))
}

func (c *Client) GetOffering(ctx context.Context, offeringId string, expand bool, query url.Values) (Object, error) {
	params := withExpand(query, expand, "package")
	return c.get(ctx, buildUri(c.projectPath("/offerings/%s", offeringId), params))
}

func (c *Client) GetEntitlements(ctx context.Context, expand bool, query url.Values) (Object, error) {
	params := withExpand(query, expand, "items.product")
	return c.get(ctx, buildUri(c.projectPath("/entitlements"), params))
}

func (c *Client) GetEntitlement(ctx context.Context, entitlementId string, expand bool, query url.Values) (Object, error) {
	params := withExpand(query, expand, "product")
	return c.get(ctx, buildUri(c.projectPath("/entitlements/%s", entitlementId), params))
}

func (c *Client) GetProductsFromEntitlement(ctx context.Context, entitlementId string, query url.Values) (Object, error) {
	return c.get(ctx, buildUri(c.projectPath("/entitlements/%s/products", entitlementId), query))
}
