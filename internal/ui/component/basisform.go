package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcintyre94/swapsies/internal/ui/style"
)

// BasisForm edits the cost basis for one token: what was spent in total and
// how many units that bought. The blended per-unit cost is derived by the
// record constructor, not here.
type BasisForm struct {
	mint   string
	symbol string
	inputs [2]textinput.Model
	focus  int
	errMsg string

	container lipgloss.Style
	title     lipgloss.Style
	label     lipgloss.Style
	input     lipgloss.Style
	focused   lipgloss.Style
	errStyle  lipgloss.Style
	hint      lipgloss.Style
}

// NewBasisForm creates the editor.
func NewBasisForm() *BasisForm {
	palette := style.DefaultPalette()

	f := &BasisForm{
		container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Secondary).
			Padding(1, 2),

		title: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true),

		label: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true),

		input: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focused: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		errStyle: lipgloss.NewStyle().
			Foreground(palette.Error),

		hint: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true),
	}

	placeholders := [2]string{"total spent in USD", "units acquired"}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Width = 28
		ti.Prompt = ""
		f.inputs[i] = ti
	}
	f.inputs[0].Focus()

	return f
}

// SetToken resets the form for a token.
func (f *BasisForm) SetToken(mint, symbol string) {
	f.mint = mint
	f.symbol = symbol
	f.errMsg = ""
	for i := range f.inputs {
		f.inputs[i].SetValue("")
		f.inputs[i].Blur()
	}
	f.focus = 0
	f.inputs[0].Focus()
}

// Mint returns the token being edited.
func (f *BasisForm) Mint() string {
	return f.mint
}

// Update forwards input to the focused field.
func (f *BasisForm) Update(msg tea.Msg) (*BasisForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	if f.errMsg != "" {
		f.errMsg = ""
	}
	return f, cmd
}

// NextField moves focus between the two fields.
func (f *BasisForm) NextField() {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + 1) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

// Values returns the raw field texts.
func (f *BasisForm) Values() (totalUSD, units string) {
	return strings.TrimSpace(f.inputs[0].Value()), strings.TrimSpace(f.inputs[1].Value())
}

// SetError shows a validation message under the fields.
func (f *BasisForm) SetError(msg string) {
	f.errMsg = msg
}

// View renders the editor overlay.
func (f *BasisForm) View() string {
	token := f.symbol
	if token == "" {
		token = shorten(f.mint)
	}

	var b strings.Builder
	b.WriteString(f.title.Render("Cost basis for " + token))
	b.WriteString("\n\n")

	labels := [2]string{"Total spent (USD)", "Units acquired"}
	for i := range f.inputs {
		b.WriteString(f.label.Render(labels[i]))
		b.WriteString("\n")
		fieldStyle := f.input
		if i == f.focus {
			fieldStyle = f.focused
		}
		b.WriteString(fieldStyle.Render(f.inputs[i].View()))
		b.WriteString("\n")
	}

	if f.errMsg != "" {
		b.WriteString(f.errStyle.Render("⚠ " + f.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(f.hint.Render("enter save · ctrl+d delete record · esc cancel"))

	return f.container.Render(b.String())
}
