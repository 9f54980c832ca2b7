// Package revenuecat is a client for the RevenueCat v2 REST API.
//
// Responses are passed through as Object values so that callers see exactly what
// RevenueCat returned. The typed views in pkg/model can be decoded from them.
package revenuecat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/lestrrat-go/backoff/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseUrl  = "https://api.revenuecat.com"
	DefaultPlatform = "go"
	DefaultTimeout  = 30 * time.Second

	maxResponseSize = 10 << 20
)

var (
	ErrMissingApiKey    = errors.New("revenuecat: api key is required")
	ErrMissingProjectId = errors.New("revenuecat: project id is required")
	ErrCircuitOpen      = errors.New("revenuecat: circuit breaker is open")
)

type Config struct {
	ApiKey    string
	ProjectId string
	BaseUrl   string
	Platform  string
	Timeout   time.Duration
}

type Client struct {
	config Config
	client *http.Client
	logger *zap.Logger

	limiter *rate.Limiter
	retry   backoff.Policy
	breaker *gobreaker.CircuitBreaker
	cache   *expirable.LRU[string, []byte]

	breakerSettings *gobreaker.Settings
}

// NewClient returns a client for the project in config. Options are applied in order.
func NewClient(config Config, opts ...Option) (*Client, error) {
	if config.ApiKey == "" {
		return nil, ErrMissingApiKey
	}

	if config.ProjectId == "" {
		return nil, ErrMissingProjectId
	}

	if config.BaseUrl == "" {
		config.BaseUrl = DefaultBaseUrl
	}
	config.BaseUrl = strings.TrimRight(config.BaseUrl, "/")

	if config.Platform == "" {
		config.Platform = DefaultPlatform
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	c := &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.breakerSettings != nil {
		settings := *c.breakerSettings
		settings.IsSuccessful = func(err error) bool {
			return err == nil || !IsTemporary(err)
		}
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			c.logger.Warn("RevenueCat circuit breaker state changed",
				zap.String("name", name), zap.Stringer("from", from), zap.Stringer("to", to))
			circuitBreakerState.Set(float64(to))
		}

		c.breaker = gobreaker.NewCircuitBreaker(settings)
	}

	return c, nil
}

func (c *Client) ProjectId() string {
	return c.config.ProjectId
}

func (c *Client) projectPath(format string, args ...any) string {
	escaped := make([]any, len(args))
	for i, arg := range args {
		escaped[i] = url.PathEscape(fmt.Sprint(arg))
	}

	return "/v2/projects/" + url.PathEscape(c.config.ProjectId) + fmt.Sprintf(format, escaped...)
}

func buildUri(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}

	return path + "?" + query.Encode()
}

// withExpand copies query and, when expand is set, forces the expand parameter.
func withExpand(query url.Values, expand bool, value string) url.Values {
	params := make(url.Values, len(query)+1)
	for key, values := range query {
		params[key] = append([]string(nil), values...)
	}

	if expand {
		params.Set("expand", value)
	}

	return params
}

func (c *Client) get(ctx context.Context, uri string) (Object, error) {
	return c.do(ctx, http.MethodGet, uri, nil)
}

func (c *Client) post(ctx context.Context, uri string, data any) (Object, error) {
	return c.do(ctx, http.MethodPost, uri, data)
}

func (c *Client) patch(ctx context.Context, uri string, data any) (Object, error) {
	return c.do(ctx, http.MethodPatch, uri, data)
}

func (c *Client) delete(ctx context.Context, uri string) (Object, error) {
	return c.do(ctx, http.MethodDelete, uri, nil)
}

func (c *Client) do(ctx context.Context, method, uri string, data any) (Object, error) {
	var payload []byte
	if data != nil {
		var err error
		if payload, err = json.Marshal(data); err != nil {
			return nil, &Error{Method: method, Uri: uri, Message: "failed to encode request body", Err: err}
		}
	}

	cacheable := c.cache != nil && method == http.MethodGet && isCatalogUri(uri)
	if cacheable {
		if body, ok := c.cache.Get(uri); ok {
			catalogCacheLookups.WithLabelValues("hit").Inc()
			return decodeObject(method, uri, http.StatusOK, body)
		}

		catalogCacheLookups.WithLabelValues("miss").Inc()
	}

	var body []byte
	var err error
	if c.breaker == nil {
		body, err = c.sendWithRetry(ctx, method, uri, payload)
	} else {
		var res any
		res, err = c.breaker.Execute(func() (any, error) {
			return c.sendWithRetry(ctx, method, uri, payload)
		})

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &Error{Method: method, Uri: uri, Message: "circuit breaker rejected request", Err: fmt.Errorf("%w: %w", ErrCircuitOpen, err)}
		}

		if res != nil {
			body = res.([]byte)
		}
	}

	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(method, uri, http.StatusOK, body)
	if err != nil {
		return nil, err
	}

	if cacheable {
		c.cache.Add(uri, body)
	}

	return obj, nil
}

func (c *Client) sendWithRetry(ctx context.Context, method, uri string, payload []byte) ([]byte, error) {
	if c.retry == nil {
		return c.send(ctx, method, uri, payload)
	}

	// The controller's goroutine lives until its context ends.
	retryCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	controller := c.retry.Start(retryCtx)

	var attempt int
	var lastErr error
	for backoff.Continue(controller) {
		attempt++

		body, err := c.send(ctx, method, uri, payload)
		if err == nil {
			return body, nil
		}

		if !IsTemporary(err) {
			return nil, err
		}

		lastErr = err
		c.logger.Debug("RevenueCat request failed, retrying",
			zap.String("method", method), zap.String("uri", uri), zap.Int("attempt", attempt), zap.Error(err))
	}

	if lastErr == nil {
		lastErr = &Error{Method: method, Uri: uri, Err: ctx.Err()}
	}

	return nil, lastErr
}

func (c *Client) send(ctx context.Context, method, uri string, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Method: method, Uri: uri, Message: "rate limiter wait aborted", Err: err}
		}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseUrl+uri, reqBody)
	if err != nil {
		return nil, &Error{Method: method, Uri: uri, Err: err}
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.ApiKey))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Platform", c.config.Platform)

	start := time.Now()
	res, err := c.client.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		return nil, &Error{Method: method, Uri: uri, Err: err, network: true}
	}

	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(method, strconv.Itoa(res.StatusCode)).Inc()

	if err != nil {
		return nil, &Error{Method: method, Uri: uri, StatusCode: res.StatusCode, Message: "failed to read response body", Err: err}
	}

	c.logger.Debug("RevenueCat request completed",
		zap.String("method", method),
		zap.String("uri", uri),
		zap.Int("status", res.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if res.StatusCode > 299 {
		return nil, newApiError(method, uri, res.StatusCode, body)
	}

	return body, nil
}

func decodeObject(method, uri string, status int, body []byte) (Object, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Object{}, nil
	}

	var obj Object
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, &Error{Method: method, Uri: uri, StatusCode: status, Message: "invalid response body", Err: err}
	}

	if obj == nil {
		obj = Object{}
	}

	return obj, nil
}
