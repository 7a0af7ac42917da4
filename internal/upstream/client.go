package upstream

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-retry"

	"github.com/angelmondragon/pointsdash/internal/records"
	"github.com/angelmondragon/pointsdash/pkg/auth"
	pkgerrors "github.com/angelmondragon/pointsdash/pkg/errors"
	"github.com/angelmondragon/pointsdash/pkg/logger"
	"github.com/angelmondragon/pointsdash/pkg/pagination"
	"github.com/angelmondragon/pointsdash/pkg/redis"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultRetryAttempts = 3
	defaultRetryBase     = 200 * time.Millisecond
	responseBodyLimit    = 8 << 20
	errorBodyReadLimit   = 1024
)

const (
	pathMyTransactions = "/users/me/transactions"
	pathTransactions   = "/transactions"
	pathEvents         = "/events"
	pathPromotions     = "/promotions"
	pathUsers          = "/users"
	pathCashierStats   = "/analytics/cashier/stats"
)

var errBaseURLRequired = errors.New("upstream base url is required")

// Client talks to the remote points service on behalf of the authenticated caller.
// The caller's bearer token is read from the request context and forwarded.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	cache         redis.Cache
	cacheTTL      time.Duration
	retryAttempts int
	retryBase     time.Duration
	validate      *validator.Validate
	logg          *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCache enables response caching for ttl. A nil cache or non-positive ttl disables it.
func WithCache(cache redis.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		if cache != nil && ttl > 0 {
			c.cache = cache
			c.cacheTTL = ttl
		}
	}
}

// WithRetry sets the total number of attempts per request and the first backoff delay.
func WithRetry(attempts int, base time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retryAttempts = attempts
		}
		if base > 0 {
			c.retryBase = base
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse upstream base url: %w", err)
	}

	client := &Client{
		httpClient:    &http.Client{Timeout: defaultTimeout},
		baseURL:       trimmed,
		retryAttempts: defaultRetryAttempts,
		retryBase:     defaultRetryBase,
		validate:      validator.New(),
		logg:          logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func (c *Client) ListMyTransactions(ctx context.Context, q records.Query) (records.Page[records.Transaction], error) {
	return getPage[records.Transaction](ctx, c, pathMyTransactions, q)
}

func (c *Client) ListTransactions(ctx context.Context, q records.Query) (records.Page[records.Transaction], error) {
	return getPage[records.Transaction](ctx, c, pathTransactions, q)
}

func (c *Client) ListEvents(ctx context.Context, q records.Query) (records.Page[records.Event], error) {
	return getPage[records.Event](ctx, c, pathEvents, q)
}

func (c *Client) ListPromotions(ctx context.Context, q records.Query) (records.Page[records.Promotion], error) {
	return getPage[records.Promotion](ctx, c, pathPromotions, q)
}

func (c *Client) ListUsers(ctx context.Context, q records.Query) (records.Page[records.User], error) {
	return getPage[records.User](ctx, c, pathUsers, q)
}

func (c *Client) CashierStats(ctx context.Context) (records.CashierStats, error) {
	var stats records.CashierStats
	if err := c.getJSON(ctx, pathCashierStats, nil, &stats); err != nil {
		return records.CashierStats{}, err
	}
	return stats, nil
}

func getPage[T any](ctx context.Context, c *Client, path string, q records.Query) (records.Page[T], error) {
	q.Limit = pagination.NormalizeLimit(q.Limit)
	q.Page = pagination.NormalizePage(q.Page)
	if err := c.validate.Struct(q); err != nil {
		return records.Page[T]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid upstream query")
	}

	var page records.Page[T]
	if err := c.getJSON(ctx, path, encodeQuery(q), &page); err != nil {
		return records.Page[T]{}, err
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	return page, nil
}

func encodeQuery(q records.Query) url.Values {
	values := url.Values{}
	values.Set("limit", strconv.Itoa(q.Limit))
	values.Set("page", strconv.Itoa(q.Page))
	if q.Type != "" {
		values.Set("type", q.Type.String())
	}
	if q.Processed != nil {
		values.Set("processed", strconv.FormatBool(*q.Processed))
	}
	return values
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	token, ok := auth.BearerFromContext(ctx)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller credentials for upstream request")
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var cacheKey string
	if c.cache != nil {
		cacheKey = c.cache.FetchKey(subjectFor(token), target)
		cached, hit, err := c.cache.Lookup(ctx, cacheKey)
		if err != nil {
			c.logg.Warn(c.logg.WithField(ctx, "cache_error", err.Error()), "upstream cache lookup failed")
		} else if hit {
			if err := json.Unmarshal(cached, out); err == nil {
				return nil
			}
		}
	}

	body, err := c.fetch(ctx, target, token)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode upstream response").
			WithDetails(map[string]any{"path": path})
	}

	if cacheKey != "" {
		if err := c.cache.Store(ctx, cacheKey, body, c.cacheTTL); err != nil {
			c.logg.Warn(c.logg.WithField(ctx, "cache_error", err.Error()), "upstream cache store failed")
		}
	}
	return nil
}

// fetch performs the GET with retries on transport errors, 429 and 5xx.
func (c *Client) fetch(ctx context.Context, target, token string) ([]byte, error) {
	maxRetries := uint64(0)
	if c.retryAttempts > 1 {
		maxRetries = uint64(c.retryAttempts - 1)
	}
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(c.retryBase))

	var body []byte
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		body, err = c.do(ctx, target, token)
		if err != nil && pkgerrors.IsRetryable(err) && ctx.Err() == nil {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		if ctx.Err() != nil && pkgerrors.As(err) == nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "upstream request cancelled")
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, target, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if id := requestIDFrom(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "upstream request timed out")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute upstream request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, statusError(resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read upstream response")
	}
	return body, nil
}

func statusError(status int, msg string) *pkgerrors.Error {
	cause := fmt.Errorf("status %d: %s", status, msg)
	details := map[string]any{"status": status}
	switch {
	case status == http.StatusUnauthorized:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, cause, "upstream rejected credentials")
	case status == http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeForbidden, cause, "upstream denied access")
	case status == http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, "upstream resource not found")
	case status == http.StatusTooManyRequests || status >= 500:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "upstream unavailable").WithDetails(details)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, cause, "upstream rejected request").WithDetails(details)
	}
}

func subjectFor(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
