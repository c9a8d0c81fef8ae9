package messagelist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailview/internal/keys"
	"github.com/nhle/mailview/internal/model"
	"github.com/nhle/mailview/internal/store"
	"github.com/nhle/mailview/internal/theme"
)

// MessagesLoadedMsg is sent when messages have been loaded from the store.
type MessagesLoadedMsg struct {
	Messages []model.Message
}

// SelectedMessageMsg is sent when a user opens a message.
type SelectedMessageMsg struct {
	UID uint32
}

// ComposeMsg is sent when the user starts a new message.
type ComposeMsg struct{}

// ReplyMsg is sent when the user replies to the selected message.
type ReplyMsg struct {
	UID uint32
}

// ActionMsg is sent for flag, read, and archive actions on a message.
type ActionMsg struct {
	UID    uint32
	Action string // "archive", "flag", "unflag", "mark_read", "mark_unread"
}

// sortModes defines the available sort modes cycled by Tab.
var sortModes = []string{
	"date",
	"subject",
	"from_name",
}

// Model is the message list view component.
type Model struct {
	list        list.Model
	store       store.Store
	keys        *keys.KeyMap
	filter      store.MessageFilter
	sortIndex   int
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new message list model.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Inbox"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search messages..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:  l,
		store: s,
		keys:  k,
		filter: store.MessageFilter{
			SortBy:   "date",
			SortDesc: true,
		},
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial set of messages.
func (m Model) Init() tea.Cmd {
	return m.LoadMessages()
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MessagesLoadedMsg:
		items := make([]list.Item, len(msg.Messages))
		for i, message := range msg.Messages {
			items[i] = MessageItem{Message: message}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	// Delegate to list model for other messages
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := m.searchInput.Value()
		if query != "" {
			m.filter.Query = &query
		} else {
			m.filter.Query = nil
		}
		return m, m.LoadMessages()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = nil
		return m, m.LoadMessages()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(MessageItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedMessageMsg{UID: item.Message.UID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.FilterUnread):
		m.toggleUnreadFilter()
		return m, m.LoadMessages()

	case key.Matches(msg, m.keys.FilterFlagged):
		m.toggleFlaggedFilter()
		return m, m.LoadMessages()

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortModes)
		m.filter.SortBy = sortModes[m.sortIndex]
		return m, m.LoadMessages()

	case key.Matches(msg, m.keys.Compose):
		return m, func() tea.Msg { return ComposeMsg{} }

	case key.Matches(msg, m.keys.Reply):
		if item, ok := m.list.SelectedItem().(MessageItem); ok {
			uid := item.Message.UID
			return m, func() tea.Msg { return ReplyMsg{UID: uid} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Archive):
		return m.actionOnSelected("archive")

	case key.Matches(msg, m.keys.ToggleFlag):
		if item, ok := m.list.SelectedItem().(MessageItem); ok {
			action := "flag"
			if item.Message.Flagged() {
				action = "unflag"
			}
			return m.actionOnSelected(action)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleRead):
		if item, ok := m.list.SelectedItem().(MessageItem); ok {
			action := "mark_read"
			if item.Message.Seen() {
				action = "mark_unread"
			}
			return m.actionOnSelected(action)
		}
		return m, nil
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Searching reports whether the search input is focused, in which case
// every key press belongs to it.
func (m Model) Searching() bool {
	return m.searchMode
}

// actionOnSelected emits an ActionMsg for the selected message.
func (m Model) actionOnSelected(action string) (Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(MessageItem)
	if !ok {
		return m, nil
	}
	uid := item.Message.UID
	return m, func() tea.Msg {
		return ActionMsg{UID: uid, Action: action}
	}
}

// toggleUnreadFilter cycles the unread filter: off, unread only, read only.
func (m *Model) toggleUnreadFilter() {
	switch {
	case m.filter.Unread == nil:
		v := true
		m.filter.Unread = &v
	case *m.filter.Unread:
		v := false
		m.filter.Unread = &v
	default:
		m.filter.Unread = nil
	}
}

// toggleFlaggedFilter toggles showing only flagged messages.
func (m *Model) toggleFlaggedFilter() {
	if m.filter.Flagged == nil {
		v := true
		m.filter.Flagged = &v
	} else {
		m.filter.Flagged = nil
	}
}

// View renders the message list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no messages are available.
func (m Model) renderEmptyState() string {
	hasFilters := m.filter.Unread != nil ||
		m.filter.Flagged != nil ||
		m.filter.Query != nil

	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if hasFilters {
		return style.Render("No matching messages.\nTry adjusting your filters.")
	}

	return style.Render(
		"No messages yet.\n\nPress R to fetch mail.",
	)
}

// LoadMessages returns a tea.Cmd that queries the store with the current
// filter.
func (m Model) LoadMessages() tea.Cmd {
	filter := m.filter
	s := m.store
	return func() tea.Msg {
		msgs, err := s.GetMessages(context.Background(), filter)
		if err != nil {
			return MessagesLoadedMsg{Messages: nil}
		}
		return MessagesLoadedMsg{Messages: msgs}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
