package cost

import "github.com/shopspring/decimal"

// Severity grades a total-cost percentage for display.
type Severity int

const (
	// SeverityUnknown covers an undefined percentage (zero input value).
	SeverityUnknown Severity = iota
	// SeverityGain means the swap comes out flat or ahead.
	SeverityGain
	// SeverityNeutral is a cost within the configured noise band.
	SeverityNeutral
	// SeverityCaution is a noticeable but tolerable cost.
	SeverityCaution
	// SeverityWarning is a cost above the caution threshold.
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityGain:
		return "gain"
	case SeverityNeutral:
		return "neutral"
	case SeverityCaution:
		return "caution"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Thresholds are cost-percent boundaries, in percent of input value.
type Thresholds struct {
	Neutral decimal.Decimal
	Caution decimal.Decimal
}

// DefaultThresholds treats up to 0.1% as noise and up to 1% as caution.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Neutral: decimal.RequireFromString("0.1"),
		Caution: decimal.NewFromInt(1),
	}
}

// Severity grades a TotalCostPercent value. A nil percentage is unknown; a
// non-negative one is a gain; otherwise the cost magnitude is compared
// against the thresholds.
func (t Thresholds) Severity(pct *decimal.Decimal) Severity {
	if pct == nil {
		return SeverityUnknown
	}
	if !pct.IsNegative() {
		return SeverityGain
	}
	magnitude := pct.Neg()
	switch {
	case magnitude.LessThanOrEqual(t.Neutral):
		return SeverityNeutral
	case magnitude.LessThanOrEqual(t.Caution):
		return SeverityCaution
	default:
		return SeverityWarning
	}
}
