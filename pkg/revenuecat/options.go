package revenuecat

import (
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/lestrrat-go/backoff/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Option func(*Client)

// WithHttpClient replaces the underlying HTTP client, e.g. to inject a test transport.
func WithHttpClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit caps outgoing requests at perMinute, allowing bursts of up to burst requests.
func WithRateLimit(perMinute, burst int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			return
		}

		if burst <= 0 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)
	}
}

// WithRetries retries temporary failures with exponential backoff between minInterval and maxInterval.
func WithRetries(maxRetries int, minInterval, maxInterval time.Duration) Option {
	return func(c *Client) {
		if maxRetries <= 0 {
			return
		}

		c.retry = backoff.Exponential(
			backoff.WithMinInterval(minInterval),
			backoff.WithMaxInterval(maxInterval),
			backoff.WithJitterFactor(0.05),
			backoff.WithMaxRetries(maxRetries),
		)
	}
}

// WithCircuitBreaker opens the circuit after consecutiveFailures temporary failures and
// probes again after timeout.
func WithCircuitBreaker(consecutiveFailures uint32, timeout time.Duration) Option {
	return func(c *Client) {
		if consecutiveFailures == 0 {
			return
		}

		c.breakerSettings = &gobreaker.Settings{
			Name:        "revenuecat",
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= consecutiveFailures
			},
		}
	}
}

// WithCatalogCache caches product, offering and entitlement responses for ttl.
func WithCatalogCache(size int, ttl time.Duration) Option {
	return func(c *Client) {
		if size <= 0 {
			return
		}

		c.cache = expirable.NewLRU[string, []byte](size, nil, ttl)
	}
}

var catalogResources = []string{"/products", "/offerings", "/entitlements"}

func isCatalogUri(uri string) bool {
	if !strings.HasPrefix(uri, "/v2/projects/") {
		return false
	}

	rest := strings.TrimPrefix(uri, "/v2/projects/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[i:]
	} else {
		return false
	}

	for _, resource := range catalogResources {
		if rest == resource || strings.HasPrefix(rest, resource+"/") || strings.HasPrefix(rest, resource+"?") {
			return true
		}
	}

	return false
}
