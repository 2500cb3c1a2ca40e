package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcintyre94/swapsies/internal/ui/style"
)

// HelpBar shows the keyboard shortcuts for the current mode.
type HelpBar struct {
	bindings []key.Binding
	width    int

	keyStyle       lipgloss.Style
	descStyle      lipgloss.Style
	sepStyle       lipgloss.Style
	containerStyle lipgloss.Style
}

// NewHelpBar creates a help bar.
func NewHelpBar() *HelpBar {
	palette := style.DefaultPalette()

	return &HelpBar{
		width: 80,

		keyStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		descStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		sepStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		containerStyle: lipgloss.NewStyle().
			Padding(0, 1).
			MarginTop(1),
	}
}

// SetKeyBindings sets the bindings to display.
func (h *HelpBar) SetKeyBindings(bindings []key.Binding) *HelpBar {
	h.bindings = bindings
	return h
}

// SetWidth sets the bar width.
func (h *HelpBar) SetWidth(width int) *HelpBar {
	h.width = width
	return h
}

// View renders the shortcuts joined by bullets, wrapping when the terminal
// is narrow.
func (h *HelpBar) View() string {
	if len(h.bindings) == 0 {
		return ""
	}

	available := h.width - 2
	separator := h.sepStyle.Render(" • ")

	var items []string
	for _, binding := range h.bindings {
		if !binding.Enabled() {
			continue
		}
		help := binding.Help()
		if help.Key == "" || help.Desc == "" {
			continue
		}
		items = append(items, h.keyStyle.Render(help.Key)+" "+h.descStyle.Render(help.Desc))
	}

	content := strings.Join(items, separator)
	if lipgloss.Width(content) > available {
		content = h.wrap(items, available, separator)
	}

	return h.containerStyle.Width(h.width).Render(content)
}

// wrap splits the items across lines so each stays within maxWidth.
func (h *HelpBar) wrap(items []string, maxWidth int, separator string) string {
	var lines []string
	var current []string
	width := 0
	sepWidth := lipgloss.Width(separator)

	for _, item := range items {
		itemWidth := lipgloss.Width(item) + sepWidth
		if width+itemWidth > maxWidth && len(current) > 0 {
			lines = append(lines, strings.Join(current, separator))
			current = []string{item}
			width = itemWidth
		} else {
			current = append(current, item)
			width += itemWidth
		}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, separator))
	}

	return strings.Join(lines, "\n")
}
