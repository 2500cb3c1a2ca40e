package component

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/mcintyre94/swapsies/internal/cost"
	"github.com/mcintyre94/swapsies/internal/ui/style"
)

// severityColor maps a cost severity grade to its palette color.
func severityColor(s cost.Severity) lipgloss.Color {
	palette := style.DefaultPalette()
	switch s {
	case cost.SeverityGain:
		return palette.Gain
	case cost.SeverityNeutral:
		return palette.Neutral
	case cost.SeverityCaution:
		return palette.Caution
	case cost.SeverityWarning:
		return palette.Loss
	default:
		return palette.Unknown
	}
}

// SeverityGauge visualizes a cost or gain/loss percentage as a filled bar
// colored by severity. The percentage is display-only; intensity math never
// feeds back into any money calculation.
type SeverityGauge struct {
	pct      *decimal.Decimal
	severity cost.Severity
	width    int

	// fullScale is the percent magnitude that fills the whole bar.
	fullScale float64
}

// NewSeverityGauge creates a gauge of the given width.
func NewSeverityGauge(width int) *SeverityGauge {
	return &SeverityGauge{
		severity:  cost.SeverityUnknown,
		width:     width,
		fullScale: 20.0,
	}
}

// Set updates the displayed percentage and severity. pct may be nil for the
// undefined state.
func (g *SeverityGauge) Set(pct *decimal.Decimal, severity cost.Severity) {
	g.pct = pct
	g.severity = severity
}

// SetWidth sets the gauge width.
func (g *SeverityGauge) SetWidth(width int) {
	g.width = width
}

// View renders the bar followed by the signed percentage and trend arrow.
func (g *SeverityGauge) View() string {
	color := severityColor(g.severity)
	bar := lipgloss.NewStyle().Foreground(color).Render(g.bar())
	label := lipgloss.NewStyle().Foreground(color).Bold(true).Render(g.label())
	return bar + " " + label
}

// ViewCompact renders just the colored percentage and arrow.
func (g *SeverityGauge) ViewCompact() string {
	color := severityColor(g.severity)
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(g.label())
}

func (g *SeverityGauge) label() string {
	if g.pct == nil {
		return "n/a " + g.Arrow()
	}
	text := g.pct.StringFixed(2) + "%"
	if g.pct.Sign() > 0 {
		text = "+" + text
	}
	return text + " " + g.Arrow()
}

// Arrow returns the trend arrow for the current value.
func (g *SeverityGauge) Arrow() string {
	if g.pct == nil {
		return "→"
	}
	switch {
	case g.severity == cost.SeverityWarning:
		return "↘"
	case g.pct.Sign() > 0:
		return "↑"
	case g.pct.Sign() < 0:
		return "↓"
	default:
		return "→"
	}
}

// bar builds the fill characters. Intensity scales with the percent
// magnitude up to fullScale.
func (g *SeverityGauge) bar() string {
	if g.width <= 0 {
		return ""
	}

	chars := []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

	magnitude := 0.0
	if g.pct != nil {
		magnitude = math.Abs(g.pct.InexactFloat64())
	}
	intensity := math.Min(magnitude/g.fullScale, 1.0)

	charIndex := int(intensity * float64(len(chars)-1))
	if charIndex >= len(chars) {
		charIndex = len(chars) - 1
	}

	filled := int(intensity * float64(g.width))
	if filled < 1 && magnitude > 0 {
		filled = 1
	}

	var b strings.Builder
	for i := 0; i < g.width; i++ {
		if i < filled {
			b.WriteString(chars[charIndex])
		} else {
			b.WriteString("▁")
		}
	}
	return b.String()
}
