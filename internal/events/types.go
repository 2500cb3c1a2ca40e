// internal/events/types.go
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType represents the type of event.
type EventType string

const (
	// Preview lifecycle events
	PreviewRequested EventType = "preview.requested"
	PreviewReady     EventType = "preview.ready"
	PreviewFailed    EventType = "preview.failed"

	// Price events
	PriceUpdated EventType = "price.updated"

	// Cost basis book events
	BasisChanged EventType = "basis.changed"

	// Wallet events
	WalletSelected EventType = "wallet.selected"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// NewBase stamps a BaseEvent with the current time.
func NewBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now()}
}

// PreviewRequestedEvent is emitted when a debounced preview computation
// actually starts.
type PreviewRequestedEvent struct {
	BaseEvent
	Seq        uint64
	InputMint  string
	OutputMint string
	AmountIn   decimal.Decimal
}

// PreviewReadyEvent is emitted when a preview computation completes.
type PreviewReadyEvent struct {
	BaseEvent
	Seq          uint64
	InputMint    string
	OutputMint   string
	AmountIn     decimal.Decimal
	TotalCostUSD decimal.Decimal
	Severity     string
	Elapsed      time.Duration
}

// PreviewFailedEvent is emitted when a preview computation fails.
type PreviewFailedEvent struct {
	BaseEvent
	Seq    uint64
	Reason string
	Err    error
}

// PriceUpdatedEvent is emitted when a fresh SOL price is fetched.
type PriceUpdatedEvent struct {
	BaseEvent
	Mint     string
	PriceUSD decimal.Decimal
}

// BasisChangedEvent is emitted when the cost basis book is modified.
type BasisChangedEvent struct {
	BaseEvent
	Mint   string
	Action string // "set", "delete", "import"
}

// WalletSelectedEvent is emitted when the active wallet changes.
type WalletSelectedEvent struct {
	BaseEvent
	Name   string
	Pubkey string
}
