package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailview/internal/addressbook"
	"github.com/nhle/mailview/internal/keys"
	"github.com/nhle/mailview/internal/model"
	"github.com/nhle/mailview/internal/source/email"
	"github.com/nhle/mailview/internal/store"
	appsync "github.com/nhle/mailview/internal/sync"
	"github.com/nhle/mailview/internal/ui"
	"github.com/nhle/mailview/internal/ui/composeform"
	helpview "github.com/nhle/mailview/internal/ui/help"
	"github.com/nhle/mailview/internal/ui/messagelist"
	"github.com/nhle/mailview/internal/ui/messageview"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewMessage
	ViewHelp
	ViewCompose
)

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the persistence layer.
type Model struct {
	currentView      ViewState
	previousView     ViewState
	layout           ui.Layout
	store            *store.SQLiteStore
	cfg              model.AppConfig
	keys             *keys.KeyMap
	messageList      messagelist.Model
	messageView      messageview.Model
	helpView         helpview.Model
	composeView      composeform.Model
	adapter          *email.Adapter
	poller           *appsync.Poller
	book             *addressbook.Book
	ready            bool
	newCount         int
	statusMessage    string
	authErrorMessage string
}

// New creates a new root application model with the given store and
// configuration.
func New(s *store.SQLiteStore, cfg model.AppConfig) Model {
	km := keys.DefaultKeyMap()
	book := addressbook.New(s)

	return Model{
		currentView: ViewList,
		store:       s,
		cfg:         cfg,
		keys:        km,
		messageList: messagelist.New(s, km, 80, 24),
		messageView: messageview.New(km, 80, 24),
		helpView:    helpview.New(km, 80, 24),
		composeView: composeform.New(book, cfg.Display.RecipientFormat, 80, 24),
		book:        book,
	}
}

// Init loads the cached messages and connects the mail account.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.messageList.Init(),
		m.connectAccount(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.messageList.SetSize(contentWidth, contentHeight)
		m.messageView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.composeView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case accountReadyMsg:
		m.adapter = msg.adapter
		m.poller = appsync.New(m.store, m.adapter, m.cfg.Display.PollIntervalSec)
		m.statusMessage = ""
		return m, m.poller.Start()

	case accountErrorMsg:
		m.statusMessage = msg.message
		return m, nil

	case appsync.SyncResultMsg:
		if msg.AuthError != nil {
			m.authErrorMessage = msg.AuthError.Message
		} else if msg.Error == nil {
			m.authErrorMessage = ""
		}
		if msg.NewMessageCount > 0 {
			m.newCount += msg.NewMessageCount
		}
		return m, tea.Batch(
			m.messageList.LoadMessages(),
			m.poller.WaitForNextResult(),
		)

	case messagelist.SelectedMessageMsg:
		m.previousView = m.currentView
		m.currentView = ViewMessage
		m.messageView.SetLoading(true)
		m.newCount = 0
		return m, m.loadMessage(msg.UID)

	case messageview.MessageLoadedMsg:
		var cmd tea.Cmd
		m.messageView, cmd = m.messageView.Update(msg)
		return m, tea.Batch(cmd, m.messageList.LoadMessages())

	case messagelist.ComposeMsg:
		m.previousView = m.currentView
		m.currentView = ViewCompose
		return m, m.composeView.StartCompose()

	case messagelist.ReplyMsg:
		return m, m.prepareReply(msg.UID)

	case messageview.ReplyMsg:
		return m, m.prepareReply(msg.UID)

	case replyReadyMsg:
		m.previousView = m.currentView
		m.currentView = ViewCompose
		return m, m.composeView.StartReply(msg.original)

	case messagelist.ActionMsg:
		return m, m.executeAction(msg.UID, msg.Action)

	case messageview.ActionMsg:
		return m, m.executeAction(msg.UID, msg.Action)

	case actionDoneMsg:
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
			return m, nil
		}
		m.statusMessage = ""
		cmds := []tea.Cmd{m.messageList.LoadMessages()}
		if m.currentView == ViewMessage && msg.action != "archive" {
			cmds = append(cmds, m.loadMessage(msg.uid))
		}
		if msg.action == "archive" && m.currentView == ViewMessage {
			m.currentView = ViewList
		}
		return m, tea.Batch(cmds...)

	case messageview.BackMsg:
		m.currentView = ViewList
		return m, m.messageList.LoadMessages()

	case messageview.OpenBrowserMsg:
		return m, m.openInBrowser(msg.UID)

	case browserOpenedMsg:
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
		} else {
			m.statusMessage = "opened in browser: " + msg.path
		}
		return m, nil

	case composeform.SendMsg:
		m.currentView = ViewList
		return m, m.sendMessage(msg.To, msg.Subject, msg.Body)

	case composeform.ReplySendMsg:
		m.currentView = ViewList
		return m, m.sendReply(msg.UID, msg.Body)

	case composeform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case sentResultMsg:
		if msg.err != nil {
			m.statusMessage = "send failed: " + msg.err.Error()
		} else {
			m.statusMessage = "message sent"
		}
		return m, m.messageList.LoadMessages()

	case tea.KeyMsg:
		// Global keys that work regardless of current view
		switch msg.String() {
		case "ctrl+c":
			if m.poller != nil {
				m.poller.Stop()
			}
			return m, tea.Quit
		}

		// While the list search input is focused, q/?/R are query
		// characters, not shortcuts.
		if m.currentView == ViewList && m.messageList.Searching() {
			return m.updateActiveView(msg)
		}

		switch msg.String() {
		case "q":
			if m.currentView == ViewList {
				if m.poller != nil {
					m.poller.Stop()
				}
				return m, tea.Quit
			}

		case "?":
			// Do not intercept while composing
			if m.currentView == ViewCompose {
				break
			}
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case "R":
			if m.currentView == ViewList && m.poller != nil {
				m.poller.Refresh()
				return m, m.messageList.LoadMessages()
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.messageList, cmd = m.messageList.Update(msg)
	case ViewMessage:
		m.messageView, cmd = m.messageView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCompose:
		m.composeView, cmd = m.composeView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "mailview"
	if m.cfg.Account.Username != "" {
		headerTitle = "mailview — " + m.cfg.Account.Username
	}
	if m.newCount > 0 {
		headerTitle = fmt.Sprintf("%s [%d new]", headerTitle, m.newCount)
	}
	header := m.layout.RenderHeader(headerTitle, m.syncStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.messageList.View()
	case ViewMessage:
		return m.messageView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCompose:
		return m.composeView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string describing the sync state.
func (m Model) syncStatus() string {
	if m.poller == nil {
		return "offline"
	}

	status := m.poller.Status()
	switch status.State {
	case appsync.SyncRunning:
		return "syncing"
	case appsync.SyncError:
		return "⚠ sync error"
	default:
		if status.LastSync.IsZero() {
			return "idle"
		}
		return "synced " + status.LastSync.Format("15:04")
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	// Show errors prominently when present.
	if m.authErrorMessage != "" && m.currentView == ViewList {
		return m.authErrorMessage
	}
	if m.statusMessage != "" {
		return m.statusMessage
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewMessage:
		return "esc back | r reply | o browser | e archive | f flag | u read | j/k scroll"
	case ViewCompose:
		return "enter submit | esc cancel"
	default:
		return "q quit | ? help | m compose | r reply | / search | 1 unread | 2 flagged | tab sort"
	}
}
