package component

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/mcintyre94/swapsies/internal/ui/style"
)

// StatusHeader is the top bar: active wallet, its SOL balance, the current
// SOL price, and the cost-basis store backend.
type StatusHeader struct {
	walletName   string
	walletPubkey string
	solBalance   *decimal.Decimal
	solPrice     *decimal.Decimal
	backend      string
	width        int

	container lipgloss.Style
	title     lipgloss.Style
	wallet    lipgloss.Style
	balance   lipgloss.Style
	price     lipgloss.Style
	muted     lipgloss.Style
}

// NewStatusHeader creates the status header.
func NewStatusHeader() *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		container: lipgloss.NewStyle().
			Foreground(palette.Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(0, 2).
			MarginBottom(1),

		title: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		wallet: lipgloss.NewStyle().
			Foreground(palette.TextSecondary),

		balance: lipgloss.NewStyle().
			Foreground(palette.Success),

		price: lipgloss.NewStyle().
			Foreground(palette.Info),

		muted: lipgloss.NewStyle().
			Foreground(palette.TextMuted),
	}
}

// SetWallet updates the active wallet display.
func (sh *StatusHeader) SetWallet(name, pubkey string) {
	sh.walletName = name
	sh.walletPubkey = pubkey
}

// SetSOLBalance updates the wallet's SOL balance display.
func (sh *StatusHeader) SetSOLBalance(balance decimal.Decimal) {
	sh.solBalance = &balance
}

// SetSOLPrice updates the SOL price display.
func (sh *StatusHeader) SetSOLPrice(price decimal.Decimal) {
	sh.solPrice = &price
}

// SetBackend sets the cost-basis store backend name.
func (sh *StatusHeader) SetBackend(backend string) {
	sh.backend = backend
}

// SetWidth sets the component width.
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
	sh.container = sh.container.Width(width - 2)
}

// View renders the status header.
func (sh *StatusHeader) View() string {
	title := sh.title.Render("Swapsies")

	wallet := "no wallet"
	if sh.walletName != "" {
		wallet = fmt.Sprintf("%s (%s)", sh.walletName, shorten(sh.walletPubkey))
	}

	balance := "◎ —"
	if sh.solBalance != nil {
		balance = "◎ " + sh.solBalance.StringFixed(4)
	}

	price := "SOL $—"
	if sh.solPrice != nil {
		price = "SOL $" + sh.solPrice.StringFixed(2)
	}

	sep := sh.muted.Render(" │ ")
	content := lipgloss.JoinHorizontal(
		lipgloss.Left,
		title,
		sep,
		sh.wallet.Render(wallet),
		sep,
		sh.balance.Render(balance),
		sep,
		sh.price.Render(price),
		sep,
		sh.muted.Render("store: "+sh.backend),
	)

	return sh.container.Render(content)
}

// GetHeight returns the component height for layout math.
func (sh *StatusHeader) GetHeight() int {
	return 3
}
