package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/mcintyre94/swapsies/internal/preview"
	"github.com/mcintyre94/swapsies/internal/ui/style"
)

// usd formats a USD figure with the sign outside the currency symbol, the
// way brokers print it: -$1.45, $0.05.
func usd(d decimal.Decimal) string {
	if d.Sign() < 0 {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// CostPanel renders the live preview: what goes in, what comes out, and
// every cost line in between. It displays engine results verbatim and does
// no arithmetic of its own.
type CostPanel struct {
	res   *preview.Result
	width int

	inSymbol  string
	outSymbol string

	container  lipgloss.Style
	title      lipgloss.Style
	label      lipgloss.Style
	value      lipgloss.Style
	muted      lipgloss.Style
	warnStyle  lipgloss.Style
	errStyle   lipgloss.Style
	hint       lipgloss.Style
	elapsed    lipgloss.Style
	totalBold  lipgloss.Style
	labelWidth int
}

// NewCostPanel creates the preview pane.
func NewCostPanel() *CostPanel {
	palette := style.DefaultPalette()

	return &CostPanel{
		container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(1, 2),

		title: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		label: lipgloss.NewStyle().
			Foreground(palette.TextSecondary),

		value: lipgloss.NewStyle().
			Foreground(palette.Text),

		muted: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		warnStyle: lipgloss.NewStyle().
			Foreground(palette.Warning),

		errStyle: lipgloss.NewStyle().
			Foreground(palette.Error),

		hint: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true),

		elapsed: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		totalBold: lipgloss.NewStyle().
			Bold(true),

		labelWidth: 15,
	}
}

// SetResult updates the displayed result.
func (c *CostPanel) SetResult(res preview.Result) {
	c.res = &res
}

// SetSymbols sets resolved symbol annotations for the pair.
func (c *CostPanel) SetSymbols(in, out string) {
	c.inSymbol = in
	c.outSymbol = out
}

// SetWidth sets the pane width.
func (c *CostPanel) SetWidth(width int) {
	c.width = width
	c.container = c.container.Width(width - 2)
}

// View renders the pane for the current result state.
func (c *CostPanel) View() string {
	title := c.title.Render("Preview")
	if c.res != nil && c.res.State == preview.StateReady && c.res.Elapsed > 0 {
		title += c.elapsed.Render(fmt.Sprintf("  %dms", c.res.Elapsed.Milliseconds()))
	}

	body := c.renderBody()
	content := lipgloss.JoinVertical(lipgloss.Left, title, "", body)
	return c.container.Render(content)
}

func (c *CostPanel) renderBody() string {
	if c.res == nil {
		return c.hint.Render("Enter a pair and an amount to preview a swap.")
	}

	switch c.res.State {
	case preview.StateInvalid:
		return c.hint.Render(c.reason())
	case preview.StateProviderError:
		return c.warnStyle.Render("Provider rejected the route: " + c.reason())
	case preview.StateFailed:
		return c.errStyle.Render("⚠ " + c.reason())
	}

	return c.renderBreakdown()
}

func (c *CostPanel) reason() string {
	if c.res.Err == nil {
		return "unavailable"
	}
	return c.res.Err.Error()
}

func (c *CostPanel) renderBreakdown() string {
	q := c.res.Quote
	b := c.res.Breakdown
	if q == nil {
		return c.hint.Render("unavailable")
	}

	var lines []string

	pay := q.InDisplayAmount.String()
	if c.inSymbol != "" {
		pay += " " + c.inSymbol
	}
	lines = append(lines, c.line("You pay", fmt.Sprintf("%s (%s)", pay, usd(q.InValueUSD))))

	recv := q.OutDisplayAmount.String()
	if c.outSymbol != "" {
		recv += " " + c.outSymbol
	}
	lines = append(lines, c.line("You receive", fmt.Sprintf("%s (%s)", recv, usd(q.OutValueUSD))))
	lines = append(lines, "")

	lines = append(lines, c.line("Value change", usd(b.ValueChangeUSD)))

	if b.PlatformFeeBps > 0 {
		fee := fmt.Sprintf("%s (%d bps, included in quote)", usd(b.PlatformFeeUSD), b.PlatformFeeBps)
		lines = append(lines, c.line("Platform fee", fee))
	}

	lines = append(lines, c.line("Network fee", c.networkFee()))

	if !b.PriceImpactPct.IsZero() {
		lines = append(lines, c.line("Price impact", b.PriceImpactPct.StringFixed(2)+"%"))
	}
	lines = append(lines, "")

	total := usd(b.TotalCostUSD)
	if b.TotalCostPercent != nil {
		total += fmt.Sprintf(" (%s%%)", b.TotalCostPercent.StringFixed(2))
	} else {
		total += " (n/a)"
	}
	totalStyle := c.totalBold.Foreground(severityColor(c.res.Severity))
	lines = append(lines, c.renderLabel("Total cost")+totalStyle.Render(total))

	return strings.Join(lines, "\n")
}

// networkFee renders the three-way fee state: gasless, known, or unknown.
func (c *CostPanel) networkFee() string {
	b := c.res.Breakdown
	switch {
	case b.Gasless:
		return "gasless"
	case !b.NetworkFeeKnown:
		return "unable to estimate"
	case c.res.Fee.Lamports == 0:
		return usd(b.NetworkFeeUSD)
	default:
		return fmt.Sprintf("%s (%d lamports)", usd(b.NetworkFeeUSD), c.res.Fee.Lamports)
	}
}

func (c *CostPanel) line(label, value string) string {
	return c.renderLabel(label) + c.value.Render(value)
}

func (c *CostPanel) renderLabel(label string) string {
	padded := fmt.Sprintf("%-*s", c.labelWidth, label)
	return c.label.Render(padded)
}
