package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailview/internal/keys"
	"github.com/nhle/mailview/internal/theme"
)

// quoteLegendDepth is how many quote nesting levels the legend shows;
// deeper levels all render in the fallback color.
const quoteLegendDepth = 5

// Model is the help overlay: the full keymap plus a legend for the
// quote nesting colors used in the message view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.ShowAll = true
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	m.help.Width = m.width - 4

	sections := []string{
		titleStyle.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		"",
		titleStyle.Render("Quote Colors"),
		m.quoteLegend(),
	}

	return theme.MessagePanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// quoteLegend renders one sample line per quote nesting level in the
// color the message view uses for it.
func (m Model) quoteLegend() string {
	lines := make([]string, 0, quoteLegendDepth)
	for level := 1; level <= quoteLegendDepth; level++ {
		sample := strings.Repeat(">", level) + fmt.Sprintf(" quoted, level %d", level)
		lines = append(lines, theme.QuoteStyle(level).Render(sample))
	}
	return strings.Join(lines, "\n")
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
