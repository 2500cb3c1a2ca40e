package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcintyre94/swapsies/internal/ui/style"
)

// Swap form field indices, in focus order.
const (
	FieldInputMint = iota
	FieldOutputMint
	FieldAmount
	fieldCount
)

// SwapForm is the three-field input pane: the mint being sold, the mint
// being bought, and the display-unit amount. It holds no money math; the
// preview engine owns validation and conversion.
type SwapForm struct {
	inputs [fieldCount]textinput.Model
	labels [fieldCount]string
	focus  int
	width  int

	labelStyle   lipgloss.Style
	inputStyle   lipgloss.Style
	focusedStyle lipgloss.Style
	symbolStyle  lipgloss.Style

	// Resolved symbols shown next to the mint fields, purely informational.
	symbols [fieldCount]string
}

// NewSwapForm creates the swap form with the input mint focused.
func NewSwapForm() *SwapForm {
	palette := style.DefaultPalette()

	f := &SwapForm{
		labels: [fieldCount]string{"Sell (mint)", "Buy (mint)", "Amount"},

		labelStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true),

		inputStyle: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focusedStyle: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		symbolStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true),
	}

	placeholders := [fieldCount]string{
		"token mint address",
		"token mint address",
		"0.0",
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Width = 46
		ti.Prompt = ""
		f.inputs[i] = ti
	}
	f.inputs[FieldInputMint].Focus()

	return f
}

// Update forwards input to the focused field.
func (f *SwapForm) Update(msg tea.Msg) (*SwapForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View renders the form.
func (f *SwapForm) View() string {
	var b strings.Builder
	for i := range f.inputs {
		label := f.labels[i]
		if f.symbols[i] != "" {
			label += "  " + f.symbolStyle.Render(f.symbols[i])
		}
		b.WriteString(f.labelStyle.Render(label))
		b.WriteString("\n")

		fieldStyle := f.inputStyle
		if i == f.focus {
			fieldStyle = f.focusedStyle
		}
		b.WriteString(fieldStyle.Render(f.inputs[i].View()))
		if i < fieldCount-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// NextField moves focus forward, wrapping around.
func (f *SwapForm) NextField() {
	f.setFocus((f.focus + 1) % fieldCount)
}

// PrevField moves focus backward, wrapping around.
func (f *SwapForm) PrevField() {
	f.setFocus((f.focus + fieldCount - 1) % fieldCount)
}

func (f *SwapForm) setFocus(idx int) {
	f.inputs[f.focus].Blur()
	f.focus = idx
	f.inputs[f.focus].Focus()
}

// Focused returns the index of the focused field.
func (f *SwapForm) Focused() int {
	return f.focus
}

// InputMint returns the sell-side mint text.
func (f *SwapForm) InputMint() string {
	return strings.TrimSpace(f.inputs[FieldInputMint].Value())
}

// OutputMint returns the buy-side mint text.
func (f *SwapForm) OutputMint() string {
	return strings.TrimSpace(f.inputs[FieldOutputMint].Value())
}

// Amount returns the raw amount text.
func (f *SwapForm) Amount() string {
	return strings.TrimSpace(f.inputs[FieldAmount].Value())
}

// SetMint fills a mint field, used by the token picker.
func (f *SwapForm) SetMint(field int, mint, symbol string) {
	if field != FieldInputMint && field != FieldOutputMint {
		return
	}
	f.inputs[field].SetValue(mint)
	f.symbols[field] = symbol
}

// SetSymbols sets both resolved symbol annotations.
func (f *SwapForm) SetSymbols(in, out string) {
	f.symbols[FieldInputMint] = in
	f.symbols[FieldOutputMint] = out
}

// Flip exchanges the sell and buy sides.
func (f *SwapForm) Flip() {
	in, out := f.inputs[FieldInputMint].Value(), f.inputs[FieldOutputMint].Value()
	f.inputs[FieldInputMint].SetValue(out)
	f.inputs[FieldOutputMint].SetValue(in)
	f.symbols[FieldInputMint], f.symbols[FieldOutputMint] =
		f.symbols[FieldOutputMint], f.symbols[FieldInputMint]
}

// SetWidth sizes the inputs to the available width.
func (f *SwapForm) SetWidth(width int) {
	f.width = width
	inputWidth := width - 6
	if inputWidth > 10 {
		for i := range f.inputs {
			f.inputs[i].Width = inputWidth
		}
	}
}
