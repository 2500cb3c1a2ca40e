// internal/preview/engine.go
package preview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mcintyre94/swapsies/internal/aggregator"
	"github.com/mcintyre94/swapsies/internal/basis"
	"github.com/mcintyre94/swapsies/internal/cost"
	"github.com/mcintyre94/swapsies/internal/events"
	"github.com/mcintyre94/swapsies/internal/fees"
	"github.com/mcintyre94/swapsies/internal/metrics"
	"github.com/mcintyre94/swapsies/internal/pnl"
	"github.com/mcintyre94/swapsies/internal/price"
	"github.com/mcintyre94/swapsies/internal/quote"
	"github.com/mcintyre94/swapsies/internal/token"
)

// DefaultDebounce is how long input must stay still before a quote is fetched.
const DefaultDebounce = 300 * time.Millisecond

// State classifies a computed preview.
type State int

const (
	// StateReady means the full breakdown (and gain/loss when a basis record
	// exists) is available.
	StateReady State = iota
	// StateInvalid means the input itself cannot produce a quote request.
	StateInvalid
	// StateProviderError means the aggregator answered with an inline error
	// for this route.
	StateProviderError
	// StateFailed means the quote could not be fetched or normalized.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateInvalid:
		return "invalid"
	case StateProviderError:
		return "provider_error"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Input is one snapshot of the swap form.
type Input struct {
	InputMint     string
	OutputMint    string
	AmountDisplay string
	// Party is the fee-payer identity fees are attributed against, normally
	// the active wallet's public key.
	Party string
}

// Result is everything the UI renders for one computed preview.
type Result struct {
	Seq   uint64
	Input Input
	State State

	Quote     *quote.Quote
	Fee       fees.NetworkFee
	Breakdown cost.Breakdown
	Severity  cost.Severity

	// PnL is nil when the input mint has no cost basis record.
	PnL        *pnl.Result
	BasisFound bool

	// SOLPriceUSD is the price used to convert the network fee, nil when it
	// was not needed or not available.
	SOLPriceUSD *decimal.Decimal

	Elapsed time.Duration
	Err     error
}

// TokenResolver resolves input-token decimals for amount conversion.
type TokenResolver interface {
	Lookup(ctx context.Context, mint string) (*token.Token, error)
}

// Config wires the engine's collaborators.
type Config struct {
	Provider   aggregator.Provider
	Prices     price.Source
	Tokens     TokenResolver
	Store      basis.Store
	Bus        *events.Bus
	Logger     *zap.Logger
	Debounce   time.Duration
	Thresholds cost.Thresholds
}

// Engine debounces form input, fetches quotes, and turns them into cost and
// gain/loss previews. Exactly one preview is in flight at a time; newer input
// cancels and supersedes older work.
type Engine struct {
	provider   aggregator.Provider
	prices     price.Source
	tokens     TokenResolver
	store      basis.Store
	bus        *events.Bus
	logger     *zap.Logger
	debounce   time.Duration
	thresholds cost.Thresholds

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	seq      uint64
	last     Input
	timer    *time.Timer
	inflight context.CancelFunc

	results chan Result
}

// NewEngine creates a preview engine bound to ctx. Close releases it.
func NewEngine(ctx context.Context, cfg Config) *Engine {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Thresholds.Neutral.IsZero() && cfg.Thresholds.Caution.IsZero() {
		cfg.Thresholds = cost.DefaultThresholds()
	}

	engineCtx, cancel := context.WithCancel(ctx)
	return &Engine{
		provider:   cfg.Provider,
		prices:     cfg.Prices,
		tokens:     cfg.Tokens,
		store:      cfg.Store,
		bus:        cfg.Bus,
		logger:     cfg.Logger.Named("preview"),
		debounce:   cfg.Debounce,
		thresholds: cfg.Thresholds,
		ctx:        engineCtx,
		cancel:     cancel,
		results:    make(chan Result, 1),
	}
}

// Results returns the channel computed previews arrive on. Only the newest
// result is kept when the reader falls behind.
func (e *Engine) Results() <-chan Result {
	return e.results
}

// Submit schedules a preview for the given input. Each call supersedes the
// previous one: the debounce timer restarts and any in-flight computation is
// canceled.
func (e *Engine) Submit(input Input) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.submitLocked(input)
}

// SetPair changes the trading pair on the last submitted input and
// reschedules the preview.
func (e *Engine) SetPair(inputMint, outputMint string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	in := e.last
	in.InputMint = inputMint
	in.OutputMint = outputMint
	e.submitLocked(in)
}

// SetAmount changes the amount on the last submitted input and reschedules
// the preview.
func (e *Engine) SetAmount(display string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	in := e.last
	in.AmountDisplay = display
	e.submitLocked(in)
}

// SetParty changes the fee-attribution party on the last submitted input and
// reschedules the preview.
func (e *Engine) SetParty(party string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	in := e.last
	in.Party = party
	e.submitLocked(in)
}

func (e *Engine) submitLocked(input Input) {
	e.last = input
	e.seq++
	seq := e.seq

	if e.inflight != nil {
		e.inflight()
		e.inflight = nil
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, func() {
		e.run(seq, input)
	})

	e.logger.Debug("Preview scheduled",
		zap.Uint64("seq", seq),
		zap.String("input_mint", input.InputMint),
		zap.String("output_mint", input.OutputMint),
		zap.String("amount", input.AmountDisplay))
}

// Flush runs any pending submit immediately instead of waiting out the
// debounce window.
func (e *Engine) Flush() {
	e.mu.Lock()
	timer := e.timer
	e.mu.Unlock()
	if timer != nil && timer.Stop() {
		// Reschedule to fire now.
		timer.Reset(0)
	}
}

// Close cancels all pending and in-flight work.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
	}
	e.mu.Unlock()
	e.cancel()
}

func (e *Engine) run(seq uint64, input Input) {
	e.mu.Lock()
	if seq != e.seq {
		e.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(e.ctx)
	e.inflight = cancel
	e.mu.Unlock()
	defer cancel()

	start := time.Now()
	res := e.compute(ctx, seq, input)
	res.Elapsed = time.Since(start)

	e.mu.Lock()
	stale := seq != e.seq
	e.mu.Unlock()
	if stale || ctx.Err() != nil {
		e.logger.Debug("Discarding stale preview", zap.Uint64("seq", seq))
		return
	}

	e.deliver(res)
	e.publish(res)
}

func (e *Engine) compute(ctx context.Context, seq uint64, input Input) Result {
	res := Result{Seq: seq, Input: input}

	if input.InputMint == "" || input.OutputMint == "" {
		return invalid(res, fmt.Errorf("both input and output tokens are required"))
	}
	if input.InputMint == input.OutputMint {
		return invalid(res, fmt.Errorf("input and output tokens must differ"))
	}

	amount, err := token.ParseDisplayAmount(input.AmountDisplay)
	if err != nil {
		return invalid(res, err)
	}

	inTok, err := e.tokens.Lookup(ctx, input.InputMint)
	if err != nil {
		res.State = StateFailed
		res.Err = fmt.Errorf("failed to resolve input token: %w", err)
		return res
	}

	native, err := token.ToNativeAmount(amount, inTok.Decimals)
	if err != nil {
		return invalid(res, err)
	}

	e.publishEvent(events.PreviewRequestedEvent{
		BaseEvent:  events.NewBase(events.PreviewRequested),
		Seq:        seq,
		InputMint:  input.InputMint,
		OutputMint: input.OutputMint,
		AmountIn:   amount,
	})

	raw, err := e.provider.Quote(ctx, aggregator.Request{
		InputMint:    input.InputMint,
		OutputMint:   input.OutputMint,
		AmountNative: native,
		Taker:        input.Party,
	})
	if err != nil {
		metrics.RecordQuoteFetch("failed")
		res.State = StateFailed
		res.Err = err
		return res
	}
	metrics.RecordQuoteFetch("success")

	q, err := quote.Normalize(raw)
	if err != nil {
		res.State = StateFailed
		res.Err = err
		return res
	}
	res.Quote = q

	if q.ProviderError != nil {
		res.State = StateProviderError
		res.Err = fmt.Errorf("provider error %s: %s", q.ProviderError.Code, q.ProviderError.Message)
		return res
	}

	res.Fee = fees.ResolveNetworkFee(q, input.Party)

	// The SOL price only matters when there is a known, nonzero fee to
	// convert. A failed price fetch degrades the fee to unknown rather than
	// failing the preview.
	if res.Fee.Known && res.Fee.Lamports > 0 {
		p, err := e.prices.PriceUSD(ctx, token.WSOLMint)
		if err != nil {
			e.logger.Warn("SOL price unavailable, network fee will show as unknown",
				zap.Error(err))
		} else {
			res.SOLPriceUSD = &p
			e.publishEvent(events.PriceUpdatedEvent{
				BaseEvent: events.NewBase(events.PriceUpdated),
				Mint:      token.WSOLMint,
				PriceUSD:  p,
			})
		}
	}

	res.Breakdown = cost.ComputeBreakdown(q, res.Fee, res.SOLPriceUSD)
	res.Severity = e.thresholds.Severity(res.Breakdown.TotalCostPercent)

	// Read the book at preview time so edits made while typing are honored.
	rec, err := e.store.Get(ctx, input.InputMint)
	switch {
	case errors.Is(err, basis.ErrNotFound):
		// No record, no gain/loss section.
	case err != nil:
		e.logger.Warn("Cost basis lookup failed",
			zap.String("mint", input.InputMint),
			zap.Error(err))
	default:
		res.BasisFound = true
		res.PnL = pnl.Compute(rec, q, res.Breakdown, q.InDisplayAmount)
	}

	res.State = StateReady
	return res
}

func invalid(res Result, err error) Result {
	res.State = StateInvalid
	res.Err = err
	return res
}

// deliver keeps only the newest result when the reader falls behind.
func (e *Engine) deliver(res Result) {
	for {
		select {
		case e.results <- res:
			return
		default:
		}
		select {
		case <-e.results:
		default:
		}
	}
}

func (e *Engine) publish(res Result) {
	switch res.State {
	case StateReady:
		e.publishEvent(events.PreviewReadyEvent{
			BaseEvent:    events.NewBase(events.PreviewReady),
			Seq:          res.Seq,
			InputMint:    res.Input.InputMint,
			OutputMint:   res.Input.OutputMint,
			AmountIn:     res.Quote.InDisplayAmount,
			TotalCostUSD: res.Breakdown.TotalCostUSD,
			Severity:     res.Severity.String(),
			Elapsed:      res.Elapsed,
		})
	case StateFailed, StateProviderError:
		e.publishEvent(events.PreviewFailedEvent{
			BaseEvent: events.NewBase(events.PreviewFailed),
			Seq:       res.Seq,
			Reason:    res.State.String(),
			Err:       res.Err,
		})
	case StateInvalid:
		// Keystroke noise, not a failure worth broadcasting.
	}
}

func (e *Engine) publishEvent(event events.Event) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(event); err != nil {
		e.logger.Debug("Event publish failed",
			zap.String("event_type", string(event.Type())),
			zap.Error(err))
	}
}
