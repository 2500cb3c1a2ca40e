// Package aggregator fetches swap quotes from the external routing provider.
// Transport failures are retried here with exponential backoff; the
// calculators downstream never retry anything.
package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/mcintyre94/swapsies/internal/quote"
)

// ErrQuoteUnavailable marks a network or provider failure. Inline provider
// rejections (no route, low liquidity) are NOT this error; they come back as
// a valid payload with the error fields set.
var ErrQuoteUnavailable = errors.New("quote unavailable")

// Request identifies the swap to quote. Taker is the requesting party's
// address; providers use it to fill in fee payer attribution.
type Request struct {
	InputMint    string
	OutputMint   string
	AmountNative uint64
	Taker        string
}

// Provider is the quote source the preview engine depends on.
type Provider interface {
	Quote(ctx context.Context, req Request) (*quote.Raw, error)
}

const defaultRetryDelay = 200 * time.Millisecond

// Client is the HTTP implementation of Provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a quote client for the given endpoint. Zero timeout and
// retry values fall back to sane defaults.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		maxRetries: maxRetries,
		retryDelay: defaultRetryDelay,
	}
}

// Quote fetches a raw quote for the request, retrying transient failures.
// 4xx responses without an inline error payload are permanent: the request
// itself is wrong and hammering the provider will not fix it.
func (c *Client) Quote(ctx context.Context, req Request) (*quote.Raw, error) {
	if req.InputMint == "" || req.OutputMint == "" {
		return nil, fmt.Errorf("aggregator: input and output mints are required")
	}
	if req.AmountNative == 0 {
		return nil, fmt.Errorf("aggregator: amount must be positive")
	}

	params := url.Values{}
	params.Set("inputMint", req.InputMint)
	params.Set("outputMint", req.OutputMint)
	params.Set("amount", strconv.FormatUint(req.AmountNative, 10))
	if req.Taker != "" {
		params.Set("taker", req.Taker)
	}
	endpoint := c.baseURL + "/quote?" + params.Encode()

	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = c.retryDelay
	backoffPolicy.MaxInterval = c.retryDelay * 10

	notify := func(err error, duration time.Duration) {
		c.logger.Warn("Retrying quote fetch",
			zap.Error(err),
			zap.Duration("backoff", duration))
	}

	operation := func() (*quote.Raw, error) {
		return c.fetchQuote(ctx, endpoint)
	}

	maxTries := uint(c.maxRetries)
	raw, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(maxTries),
		backoff.WithNotify(notify))

	if err != nil {
		c.logger.Error("❌ Quote fetch failed",
			zap.String("input_mint", req.InputMint),
			zap.String("output_mint", req.OutputMint),
			zap.Error(err))
		return nil, err
	}

	return raw, nil
}

func (c *Client) fetchQuote(ctx context.Context, endpoint string) (*quote.Raw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: failed to create request: %v", ErrQuoteUnavailable, err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrQuoteUnavailable, resp.StatusCode)
	}

	var raw quote.Raw
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(fmt.Errorf("%w: provider returned status %d", ErrQuoteUnavailable, resp.StatusCode))
		}
		return nil, backoff.Permanent(fmt.Errorf("%w: failed to decode response: %v", ErrQuoteUnavailable, err))
	}

	// Providers report inline rejections with a 4xx status and an error
	// payload. That is a valid, non-exceptional response.
	if resp.StatusCode != http.StatusOK && raw.ErrorCode == "" && raw.ErrorMessage == "" {
		return nil, backoff.Permanent(fmt.Errorf("%w: provider returned status %d", ErrQuoteUnavailable, resp.StatusCode))
	}

	return &raw, nil
}
