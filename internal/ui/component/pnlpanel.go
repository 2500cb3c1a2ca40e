package component

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/mcintyre94/swapsies/internal/cost"
	"github.com/mcintyre94/swapsies/internal/preview"
	"github.com/mcintyre94/swapsies/internal/ui/style"
)

// PnLPanel renders the gain/loss estimate for the token being sold, or the
// call to action when no cost basis is on record.
type PnLPanel struct {
	res    *preview.Result
	symbol string
	width  int
	gauge  *SeverityGauge

	container lipgloss.Style
	title     lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	hint      lipgloss.Style
}

// NewPnLPanel creates the gain/loss pane.
func NewPnLPanel() *PnLPanel {
	palette := style.DefaultPalette()

	return &PnLPanel{
		gauge: NewSeverityGauge(16),

		container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Secondary).
			Padding(1, 2),

		title: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true),

		label: lipgloss.NewStyle().
			Foreground(palette.TextSecondary),

		value: lipgloss.NewStyle().
			Foreground(palette.Text),

		hint: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true),
	}
}

// SetResult updates the displayed result.
func (p *PnLPanel) SetResult(res preview.Result) {
	p.res = &res
}

// SetSymbol sets the sell-side symbol annotation.
func (p *PnLPanel) SetSymbol(symbol string) {
	p.symbol = symbol
}

// SetWidth sets the pane width.
func (p *PnLPanel) SetWidth(width int) {
	p.width = width
	p.container = p.container.Width(width - 2)
}

// View renders the pane. It is empty until a preview is ready.
func (p *PnLPanel) View() string {
	if p.res == nil || p.res.State != preview.StateReady {
		return ""
	}

	title := p.title.Render("Gain / Loss")
	body := p.renderBody()
	content := lipgloss.JoinVertical(lipgloss.Left, title, "", body)
	return p.container.Render(content)
}

func (p *PnLPanel) renderBody() string {
	if p.res.PnL == nil {
		token := p.symbol
		if token == "" {
			token = shorten(p.res.Input.InputMint)
		}
		return p.hint.Render(fmt.Sprintf("No cost basis recorded for %s.\nPress ctrl+b to add one.", token))
	}

	r := p.res.PnL

	basisLine := p.label.Render(fmt.Sprintf("%-12s", "Cost basis")) +
		p.value.Render(fmt.Sprintf("%s/unit (%s total)", usd(r.CostPerUnitUSD), usd(r.TotalCostBasisUSD)))

	severity := cost.SeverityGain
	if r.RealizedUSD.Sign() < 0 {
		severity = cost.SeverityWarning
	}
	if r.RealizedPercent == nil {
		severity = cost.SeverityUnknown
	}

	realized := usd(r.RealizedUSD)
	if r.RealizedUSD.Sign() > 0 {
		realized = "+" + realized
	}
	realizedLine := p.label.Render(fmt.Sprintf("%-12s", "Realized")) +
		lipgloss.NewStyle().Foreground(severityColor(severity)).Bold(true).Render(realized)

	p.gauge.Set(r.RealizedPercent, severity)

	return lipgloss.JoinVertical(lipgloss.Left, basisLine, realizedLine, "", p.gauge.View())
}

// shorten truncates a mint for display.
func shorten(mint string) string {
	if len(mint) > 8 {
		return mint[:8] + "..."
	}
	return mint
}
