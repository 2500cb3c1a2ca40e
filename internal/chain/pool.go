// internal/chain/pool.go
package chain

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrUnavailable is returned when every endpoint in the pool failed.
var ErrUnavailable = errors.New("no rpc endpoint available")

// unhealthyAfter is how many consecutive failures sideline an endpoint.
// A sidelined endpoint is still tried as a last resort and a single
// success brings it back.
const unhealthyAfter = 3

type endpoint struct {
	client   *rpc.Client
	url      string
	healthy  atomic.Bool
	failures atomic.Uint32
}

func (e *endpoint) markSuccess() {
	e.failures.Store(0)
	e.healthy.Store(true)
}

func (e *endpoint) markFailure() {
	if e.failures.Add(1) >= unhealthyAfter {
		e.healthy.Store(false)
	}
}

// Pool spreads read-only RPC calls across several Solana endpoints with
// simple failover: requests rotate over healthy endpoints, and an endpoint
// that keeps failing is skipped until it answers again.
type Pool struct {
	endpoints []*endpoint
	next      atomic.Uint32
	logger    *zap.Logger
}

// NewPool builds a pool from the configured RPC URLs. URLs that do not
// parse are dropped with a warning; at least one usable URL is required.
func NewPool(rpcURLs []string, logger *zap.Logger) (*Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("chain")

	var endpoints []*endpoint
	for _, raw := range rpcURLs {
		if _, err := url.Parse(raw); err != nil {
			logger.Warn("Invalid RPC URL", zap.String("url", raw), zap.Error(err))
			continue
		}
		ep := &endpoint{client: rpc.New(raw), url: raw}
		ep.healthy.Store(true)
		endpoints = append(endpoints, ep)
	}
	if len(endpoints) == 0 {
		return nil, errors.New("no valid RPC URLs provided")
	}

	return &Pool{endpoints: endpoints, logger: logger}, nil
}

// Probe checks every endpoint concurrently and sidelines the ones that do
// not answer. It fails only when no endpoint is reachable.
func (p *Pool) Probe(ctx context.Context) error {
	g, probeCtx := errgroup.WithContext(ctx)

	for _, ep := range p.endpoints {
		g.Go(func() error {
			version, err := ep.client.GetVersion(probeCtx)
			if err != nil {
				ep.markFailure()
				ep.healthy.Store(false)
				p.logger.Warn("RPC endpoint unreachable",
					zap.String("url", ep.url), zap.Error(err))
				return nil
			}
			ep.markSuccess()
			p.logger.Debug("RPC endpoint ready",
				zap.String("url", ep.url),
				zap.String("solana_core", version.SolanaCore))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if p.Healthy() == 0 {
		return fmt.Errorf("%w: all %d endpoints failed probe", ErrUnavailable, len(p.endpoints))
	}
	return nil
}

// Healthy returns how many endpoints are currently in rotation.
func (p *Pool) Healthy() int {
	n := 0
	for _, ep := range p.endpoints {
		if ep.healthy.Load() {
			n++
		}
	}
	return n
}

// Size returns the total number of configured endpoints.
func (p *Pool) Size() int {
	return len(p.endpoints)
}

// candidates returns endpoints in try order: healthy ones first, starting
// from the rotation cursor, then sidelined ones as a last resort.
func (p *Pool) candidates() []*endpoint {
	start := int(p.next.Add(1)-1) % len(p.endpoints)

	ordered := make([]*endpoint, 0, len(p.endpoints))
	var sidelined []*endpoint
	for i := 0; i < len(p.endpoints); i++ {
		ep := p.endpoints[(start+i)%len(p.endpoints)]
		if ep.healthy.Load() {
			ordered = append(ordered, ep)
		} else {
			sidelined = append(sidelined, ep)
		}
	}
	return append(ordered, sidelined...)
}

// do runs fn against endpoints in failover order until one succeeds.
func (p *Pool) do(ctx context.Context, op string, fn func(*rpc.Client) error) error {
	var lastErr error
	for _, ep := range p.candidates() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := fn(ep.client); err != nil {
			ep.markFailure()
			lastErr = err
			p.logger.Debug("RPC call failed, trying next endpoint",
				zap.String("op", op),
				zap.String("url", ep.url),
				zap.Error(err))
			continue
		}
		ep.markSuccess()
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, lastErr)
}

// GetBalance returns the SOL balance of an account.
func (p *Pool) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	var out *rpc.GetBalanceResult
	err := p.do(ctx, "getBalance", func(c *rpc.Client) error {
		res, err := c.GetBalance(ctx, account, commitment)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// GetTokenAccountBalance returns the balance of an SPL token account.
func (p *Pool) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error) {
	var out *rpc.GetTokenAccountBalanceResult
	err := p.do(ctx, "getTokenAccountBalance", func(c *rpc.Client) error {
		res, err := c.GetTokenAccountBalance(ctx, account, commitment)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// GetAccountInfo returns raw account data, used for mint decimals lookups.
func (p *Pool) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	var out *rpc.GetAccountInfoResult
	err := p.do(ctx, "getAccountInfo", func(c *rpc.Client) error {
		res, err := c.GetAccountInfo(ctx, account)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}
