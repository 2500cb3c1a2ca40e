package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/mcintyre94/swapsies/internal/basis"
	"github.com/mcintyre94/swapsies/internal/preview"
	"github.com/mcintyre94/swapsies/internal/token"
)

// Tea message types for UI communication

// PreviewMsg carries a computed preview from the engine.
type PreviewMsg struct {
	Result preview.Result
}

// SymbolsMsg carries resolved token metadata for the current pair. Either
// side may be nil when the lookup failed.
type SymbolsMsg struct {
	In  *token.Token
	Out *token.Token
}

// BalanceMsg carries the active wallet's SOL balance.
type BalanceMsg struct {
	Wallet string
	SOL    decimal.Decimal
	Err    error
}

// SearchResultMsg carries token search results for the picker.
type SearchResultMsg struct {
	Query  string
	Tokens []token.Token
	Err    error
}

// BasisSavedMsg reports the outcome of writing a cost-basis record.
type BasisSavedMsg struct {
	Rec *basis.Record
	Err error
}

// BasisDeletedMsg reports the outcome of deleting a cost-basis record.
type BasisDeletedMsg struct {
	Mint string
	Err  error
}

// TickMsg drives periodic refreshes (log tail, balance staleness).
type TickMsg time.Time

// waitForPreview blocks on the engine's result channel and wraps the next
// result. The model re-issues it after every PreviewMsg.
func waitForPreview(results <-chan preview.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return nil
		}
		return PreviewMsg{Result: res}
	}
}

// tick schedules the next periodic refresh.
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Mode identifies which part of the UI owns the keyboard.
type Mode int

const (
	// ModeSwap is the main screen: swap form plus live preview.
	ModeSwap Mode = iota
	// ModePicker is the token search overlay.
	ModePicker
	// ModeBasis is the cost-basis editor overlay.
	ModeBasis
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeSwap:
		return "swap"
	case ModePicker:
		return "picker"
	case ModeBasis:
		return "basis"
	default:
		return "unknown"
	}
}
