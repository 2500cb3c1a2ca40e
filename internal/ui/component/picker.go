package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcintyre94/swapsies/internal/token"
	"github.com/mcintyre94/swapsies/internal/ui/style"
)

// TokenPicker is the search overlay that fills a mint field from the token
// metadata API.
type TokenPicker struct {
	input     textinput.Model
	tokens    []token.Token
	selected  int
	target    int
	searching bool
	errMsg    string

	container     lipgloss.Style
	title         lipgloss.Style
	inputStyle    lipgloss.Style
	itemStyle     lipgloss.Style
	selectedStyle lipgloss.Style
	mintStyle     lipgloss.Style
	hint          lipgloss.Style
	errStyle      lipgloss.Style
}

// NewTokenPicker creates the picker.
func NewTokenPicker() *TokenPicker {
	palette := style.DefaultPalette()

	ti := textinput.New()
	ti.Placeholder = "symbol or name, enter to search"
	ti.Width = 40
	ti.Prompt = "🔍 "

	return &TokenPicker{
		input: ti,

		container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(1, 2),

		title: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		inputStyle: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		itemStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 2),

		selectedStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 2).
			Bold(true),

		mintStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		hint: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true),

		errStyle: lipgloss.NewStyle().
			Foreground(palette.Error),
	}
}

// Open resets the picker for a target form field.
func (p *TokenPicker) Open(target int) {
	p.target = target
	p.tokens = nil
	p.selected = 0
	p.searching = false
	p.errMsg = ""
	p.input.SetValue("")
	p.input.Focus()
}

// Target returns the form field this picker fills.
func (p *TokenPicker) Target() int {
	return p.target
}

// Update forwards input to the query field.
func (p *TokenPicker) Update(msg tea.Msg) (*TokenPicker, tea.Cmd) {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// Query returns the trimmed search text.
func (p *TokenPicker) Query() string {
	return strings.TrimSpace(p.input.Value())
}

// SetSearching marks a search as in flight.
func (p *TokenPicker) SetSearching(searching bool) {
	p.searching = searching
}

// SetResults installs search results, or the failure message.
func (p *TokenPicker) SetResults(tokens []token.Token, err error) {
	p.searching = false
	p.selected = 0
	if err != nil {
		p.tokens = nil
		p.errMsg = err.Error()
		return
	}
	p.tokens = tokens
	p.errMsg = ""
}

// HasResults reports whether anything is selectable.
func (p *TokenPicker) HasResults() bool {
	return len(p.tokens) > 0
}

// MoveUp moves the selection up, wrapping.
func (p *TokenPicker) MoveUp() {
	if len(p.tokens) == 0 {
		return
	}
	p.selected--
	if p.selected < 0 {
		p.selected = len(p.tokens) - 1
	}
}

// MoveDown moves the selection down, wrapping.
func (p *TokenPicker) MoveDown() {
	if len(p.tokens) == 0 {
		return
	}
	p.selected = (p.selected + 1) % len(p.tokens)
}

// Selected returns the highlighted token, or nil without results.
func (p *TokenPicker) Selected() *token.Token {
	if p.selected >= len(p.tokens) {
		return nil
	}
	t := p.tokens[p.selected]
	return &t
}

// View renders the overlay.
func (p *TokenPicker) View() string {
	side := "sell"
	if p.target == FieldOutputMint {
		side = "buy"
	}

	var b strings.Builder
	b.WriteString(p.title.Render(fmt.Sprintf("Find token (%s side)", side)))
	b.WriteString("\n\n")
	b.WriteString(p.inputStyle.Render(p.input.View()))
	b.WriteString("\n\n")

	switch {
	case p.errMsg != "":
		b.WriteString(p.errStyle.Render("⚠ " + p.errMsg))
	case p.searching:
		b.WriteString(p.hint.Render("searching..."))
	case len(p.tokens) == 0:
		b.WriteString(p.hint.Render("type a query and press enter"))
	default:
		b.WriteString(p.renderList())
	}

	b.WriteString("\n\n")
	b.WriteString(p.hint.Render("↑/↓ choose · enter select · esc cancel"))

	return p.container.Render(b.String())
}

func (p *TokenPicker) renderList() string {
	shown := p.tokens
	if len(shown) > 8 {
		shown = shown[:8]
	}

	var items []string
	for i, t := range shown {
		line := fmt.Sprintf("%s (%s)", t.Symbol, t.Name)
		if i == p.selected {
			items = append(items, p.selectedStyle.Render(line))
		} else {
			items = append(items, p.itemStyle.Render(line))
		}
		if i == p.selected {
			items = append(items, p.mintStyle.Render("    "+t.Mint))
		}
	}
	return strings.Join(items, "\n")
}
