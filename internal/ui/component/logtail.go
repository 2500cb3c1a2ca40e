package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcintyre94/swapsies/internal/logger"
	"github.com/mcintyre94/swapsies/internal/ui/style"
)

// tailLines caps how much of the ring is rendered at once.
const tailLines = 200

// LogTail shows the most recent log lines from the in-process ring buffer.
// Lines arrive pre-colored by the console encoder.
type LogTail struct {
	ring     *logger.Ring
	viewport viewport.Model
	visible  bool
	width    int
	height   int

	container lipgloss.Style
	title     lipgloss.Style
}

// NewLogTail creates a log tail reading from ring.
func NewLogTail(ring *logger.Ring) *LogTail {
	palette := style.DefaultPalette()

	return &LogTail{
		ring:    ring,
		visible: false,

		container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Info).
			Padding(0, 1),

		title: lipgloss.NewStyle().
			Foreground(palette.Info).
			Bold(true),

		viewport: viewport.New(60, 6),
	}
}

// SetSize sets the component dimensions.
func (lt *LogTail) SetSize(width, height int) {
	lt.width = width
	lt.height = height
	lt.container = lt.container.Width(width - 2)

	vpWidth := width - 4
	vpHeight := height - 3
	if vpHeight < 2 {
		vpHeight = 2
	}
	lt.viewport.Width = vpWidth
	lt.viewport.Height = vpHeight
}

// Toggle flips visibility.
func (lt *LogTail) Toggle() {
	lt.visible = !lt.visible
}

// IsVisible reports whether the tail is shown.
func (lt *LogTail) IsVisible() bool {
	return lt.visible
}

// Refresh pulls the latest lines from the ring and scrolls to the bottom.
func (lt *LogTail) Refresh() {
	if lt.ring == nil {
		lt.viewport.SetContent("log ring not attached")
		return
	}
	lines := lt.ring.Lines(tailLines)
	if len(lines) == 0 {
		lt.viewport.SetContent("no log output yet")
		return
	}
	lt.viewport.SetContent(strings.Join(lines, "\n"))
	lt.viewport.GotoBottom()
}

// Update handles viewport scrolling while visible.
func (lt *LogTail) Update(msg tea.Msg) tea.Cmd {
	if !lt.visible {
		return nil
	}
	var cmd tea.Cmd
	lt.viewport, cmd = lt.viewport.Update(msg)
	return cmd
}

// View renders the log tail, or nothing while hidden.
func (lt *LogTail) View() string {
	if !lt.visible {
		return ""
	}
	lt.Refresh()

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		lt.title.Render("Logs"),
		lt.viewport.View(),
	)
	return lt.container.Render(content)
}

// GetHeight returns the rendered height for layout math.
func (lt *LogTail) GetHeight() int {
	if !lt.visible {
		return 0
	}
	return lt.height
}
