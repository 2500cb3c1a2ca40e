// Package price reads USD token prices from the external price API. Prices
// are cached with a short TTL so the preview engine can re-read the gas
// asset price on every recompute without hammering the API.
package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrUnavailable marks a price that could not be fetched. Callers degrade
// gracefully: an unavailable gas price renders the network fee as unknown.
var ErrUnavailable = errors.New("price unavailable")

// Source is the price dependency the preview engine consumes.
type Source interface {
	PriceUSD(ctx context.Context, mint string) (decimal.Decimal, error)
}

const defaultTTL = 10 * time.Second

type cachedPrice struct {
	price     decimal.Decimal
	expiresAt time.Time
}

// Client is the HTTP implementation of Source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	ttl        time.Duration
	maxRetries int

	cache sync.Map // mint -> cachedPrice
}

func NewClient(baseURL string, timeout, ttl time.Duration, maxRetries int, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if maxRetries <= 0 {
		maxRetries = 2
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		ttl:        ttl,
		maxRetries: maxRetries,
	}
}

// priceResponse mirrors the price API payload: prices keyed by mint, encoded
// as decimal strings.
type priceResponse struct {
	Data map[string]struct {
		ID    string `json:"id"`
		Price string `json:"price"`
	} `json:"data"`
}

// PriceUSD returns the cached price when fresh, otherwise fetches it.
func (c *Client) PriceUSD(ctx context.Context, mint string) (decimal.Decimal, error) {
	if price, ok := c.getFromCache(mint); ok {
		return price, nil
	}

	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = 100 * time.Millisecond

	operation := func() (decimal.Decimal, error) {
		return c.fetchPrice(ctx, mint)
	}

	price, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(uint(c.maxRetries)),
		backoff.WithNotify(func(err error, duration time.Duration) {
			c.logger.Debug("Retrying price fetch",
				zap.String("mint", mint),
				zap.Error(err),
				zap.Duration("backoff", duration))
		}))
	if err != nil {
		return decimal.Zero, err
	}

	c.cache.Store(mint, cachedPrice{price: price, expiresAt: time.Now().Add(c.ttl)})
	return price, nil
}

func (c *Client) getFromCache(mint string) (decimal.Decimal, bool) {
	if value, ok := c.cache.Load(mint); ok {
		cached := value.(cachedPrice)
		if time.Now().Before(cached.expiresAt) {
			return cached.price, true
		}
		c.cache.Delete(mint)
	}
	return decimal.Zero, false
}

func (c *Client) fetchPrice(ctx context.Context, mint string) (decimal.Decimal, error) {
	endpoint := c.baseURL + "/price?ids=" + url.QueryEscape(mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, backoff.Permanent(fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: price API returned status %d", ErrUnavailable, resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError {
			return decimal.Zero, err
		}
		return decimal.Zero, backoff.Permanent(err)
	}

	var payload priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, backoff.Permanent(fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err))
	}

	entry, ok := payload.Data[mint]
	if !ok || entry.Price == "" {
		return decimal.Zero, backoff.Permanent(fmt.Errorf("%w: no price for %s", ErrUnavailable, mint))
	}

	price, err := decimal.NewFromString(entry.Price)
	if err != nil || price.IsNegative() {
		return decimal.Zero, backoff.Permanent(fmt.Errorf("%w: bad price %q for %s", ErrUnavailable, entry.Price, mint))
	}

	return price, nil
}
