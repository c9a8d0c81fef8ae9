package messageview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailview/internal/keys"
	"github.com/nhle/mailview/internal/model"
	"github.com/nhle/mailview/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// MessageLoadedMsg carries the loaded message with its rendered bodies.
type MessageLoadedMsg struct {
	Message *model.Message
}

// ReplyMsg signals the parent to open the compose form as a reply.
type ReplyMsg struct {
	UID uint32
}

// OpenBrowserMsg signals the parent to export the HTML rendering and
// open it in the system browser.
type OpenBrowserMsg struct {
	UID uint32
}

// ActionMsg signals the parent to execute an action on the current message.
type ActionMsg struct {
	UID    uint32
	Action string
}

// Model is the message view component.
type Model struct {
	message  *model.Message
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new message view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the message view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the message view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MessageLoadedMsg:
		m.message = msg.Message
		m.loading = false
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Reply):
			if m.message != nil {
				uid := m.message.UID
				return m, func() tea.Msg {
					return ReplyMsg{UID: uid}
				}
			}

		case key.Matches(msg, m.keys.OpenBrowser):
			if m.message != nil {
				uid := m.message.UID
				return m, func() tea.Msg {
					return OpenBrowserMsg{UID: uid}
				}
			}

		case key.Matches(msg, m.keys.Archive):
			return m.emitAction("archive")

		case key.Matches(msg, m.keys.ToggleFlag):
			if m.message != nil {
				action := "flag"
				if m.message.Flagged() {
					action = "unflag"
				}
				return m.emitAction(action)
			}

		case key.Matches(msg, m.keys.ToggleRead):
			if m.message != nil {
				action := "mark_read"
				if m.message.Seen() {
					action = "mark_unread"
				}
				return m.emitAction(action)
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// emitAction sends an ActionMsg for the current message.
func (m Model) emitAction(action string) (Model, tea.Cmd) {
	if m.message == nil {
		return m, nil
	}
	uid := m.message.UID
	return m, func() tea.Msg {
		return ActionMsg{UID: uid, Action: action}
	}
}

// View renders the message view.
func (m Model) View() string {
	if m.loading {
		loadingStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return loadingStyle.Render("Loading message...")
	}

	if m.message == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No message selected")
	}

	return m.viewport.View()
}

// renderContent builds the full message content string for the viewport.
func (m Model) renderContent() string {
	if m.message == nil {
		return ""
	}

	msg := m.message
	var sections []string

	// Subject
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(msg.Subject))

	// Flag badges
	var badges []string
	if !msg.Seen() {
		badges = append(badges, theme.UnreadStyle.Render("UNREAD"))
	}
	if msg.Flagged() {
		badges = append(badges, theme.FlaggedStyle.Render("★ FLAGGED"))
	}
	if msg.HasFlag(model.FlagAnswered) {
		badges = append(badges, lipgloss.NewStyle().
			Foreground(theme.ColorGreen).
			Render("↩ ANSWERED"))
	}
	if len(badges) > 0 {
		sections = append(sections, strings.Join(badges, "  "))
	}
	sections = append(sections, "")

	// Header table
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	from := msg.From
	if msg.FromAddress != "" && msg.FromAddress != msg.From {
		from = fmt.Sprintf("%s <%s>", msg.From, msg.FromAddress)
	}
	sections = append(sections, fmt.Sprintf(
		"%s  %s", metaStyle.Render("From:"), valStyle.Render(from),
	))
	if len(msg.To) > 0 {
		sections = append(sections, fmt.Sprintf(
			"%s    %s",
			metaStyle.Render("To:"),
			valStyle.Render(strings.Join(msg.To, ", ")),
		))
	}
	if !msg.Date.IsZero() {
		sections = append(sections, fmt.Sprintf(
			"%s  %s",
			metaStyle.Render("Date:"),
			valStyle.Render(msg.Date.Format("2006-01-02 15:04")),
		))
	}

	// Separator
	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))
	sections = append(sections, "")
	sections = append(sections, separator)
	sections = append(sections, "")

	// Body with per-line quote coloring
	body := msg.RenderedText
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No content")
	} else {
		body = colorizeQuotes(body)
	}
	sections = append(sections, body)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// colorizeQuotes styles each line by its quote nesting depth so replies
// read the same way in the terminal as in the HTML rendering.
func colorizeQuotes(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		depth := quoteDepth(line)
		if depth > 0 {
			lines[i] = theme.QuoteStyle(depth).Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// quoteDepth counts leading '>' markers, allowing spaces between them.
func quoteDepth(line string) int {
	depth := 0
	for _, r := range line {
		switch r {
		case '>':
			depth++
		case ' ', '\t':
			// skip
		default:
			return depth
		}
	}
	return depth
}

// SetMessage updates the message being displayed and re-renders.
func (m *Model) SetMessage(msg *model.Message) {
	m.message = msg
	m.loading = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Message returns the currently displayed message, if any.
func (m *Model) Message() *model.Message {
	return m.message
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the message view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}
