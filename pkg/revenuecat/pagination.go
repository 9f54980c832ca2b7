package revenuecat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// NextPage fetches the page after list. It returns nil when list is the last page.
func (c *Client) NextPage(ctx context.Context, list Object) (Object, error) {
	next := list.NextPage()
	if next == "" {
		return nil, nil
	}

	uri, err := c.pageUri(next)
	if err != nil {
		return nil, &Error{Method: http.MethodGet, Uri: next, Message: "invalid next_page", Err: err}
	}

	return c.get(ctx, uri)
}

// ListAll calls fn for every item of first and of each following page.
func (c *Client) ListAll(ctx context.Context, first Object, fn func(item Object) error) error {
	for page := first; page != nil; {
		for _, item := range page.Items() {
			if err := fn(item); err != nil {
				return err
			}
		}

		next, err := c.NextPage(ctx, page)
		if err != nil {
			return err
		}

		page = next
	}

	return nil
}

// pageUri reduces next_page to a request URI on the configured base URL. Absolute
// URLs are accepted as long as they point at the same API version.
func (c *Client) pageUri(next string) (string, error) {
	parsed, err := url.Parse(next)
	if err != nil {
		return "", err
	}

	uri := parsed.RequestURI()
	if !strings.HasPrefix(uri, "/v2/") {
		return "", fmt.Errorf("unexpected page path %q", uri)
	}

	return uri, nil
}
