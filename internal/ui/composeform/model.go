package composeform

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailview/internal/addressbook"
	"github.com/nhle/mailview/internal/model"
	"github.com/nhle/mailview/internal/theme"
)

// SendMsg is dispatched when the user submits a new message.
type SendMsg struct {
	To      []string
	Subject string
	Body    string
}

// ReplySendMsg is dispatched when the user submits a reply.
type ReplySendMsg struct {
	UID  uint32
	Body string
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// completionLimit caps how many address suggestions are offered.
const completionLimit = 8

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	to      string
	subject string
	body    string
}

// Model is the Bubble Tea model for the compose/reply form.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	book      *addressbook.Book
	format    model.RecipientFormat
	replyMode bool
	replyUID  uint32
	width     int
	height    int
}

// New creates a new compose form model.
func New(book *addressbook.Book, format model.RecipientFormat, width, height int) Model {
	return Model{
		fb:     &formBindings{},
		book:   book,
		format: format,
		width:  width,
		height: height,
	}
}

// StartCompose initializes the form for a new message.
func (m *Model) StartCompose() tea.Cmd {
	m.replyMode = false
	m.replyUID = 0
	m.fb.to = ""
	m.fb.subject = ""
	m.fb.body = ""
	m.form = m.buildComposeForm()
	return m.form.Init()
}

// StartReply initializes the form for replying to a message. The
// recipient and subject come from the original, so only the body is
// editable.
func (m *Model) StartReply(original *model.Message) tea.Cmd {
	m.replyMode = true
	m.replyUID = original.UID
	m.fb.to = original.FromAddress
	m.fb.subject = original.Subject
	m.fb.body = ""
	m.form = m.buildReplyForm()
	return m.form.Init()
}

// Update handles messages for the compose form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the compose form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Message"
	if m.replyMode {
		titleText = "Reply"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildComposeForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("To").
				Placeholder("recipient@example.com, ...").
				Value(&m.fb.to).
				SuggestionsFunc(m.suggestRecipients, &m.fb.to).
				Validate(validateRecipients),
			huh.NewInput().
				Title("Subject").
				Value(&m.fb.subject).
				Validate(validateRequired("Subject")),
			huh.NewText().
				Title("Body").
				Value(&m.fb.body).
				Validate(validateRequired("Body")),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) buildReplyForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("To: " + m.fb.to).
				Description("Subject: Re: " + m.fb.subject),
			huh.NewText().
				Title("Reply").
				Value(&m.fb.body).
				Validate(validateRequired("Reply")),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// suggestRecipients completes the last comma-separated recipient against
// the address book.
func (m *Model) suggestRecipients() []string {
	if m.book == nil {
		return nil
	}

	parts := strings.Split(m.fb.to, ",")
	prefix := strings.TrimSpace(parts[len(parts)-1])
	if prefix == "" {
		return nil
	}

	contacts, err := m.book.Complete(context.Background(), prefix, completionLimit)
	if err != nil {
		return nil
	}

	head := ""
	if len(parts) > 1 {
		head = strings.Join(parts[:len(parts)-1], ",") + ", "
	}

	suggestions := make([]string, 0, len(contacts))
	for _, c := range contacts {
		suggestions = append(
			suggestions,
			head+addressbook.FormatRecipient(c, m.format),
		)
	}
	return suggestions
}

func (m Model) handleSubmit() tea.Cmd {
	body := m.fb.body

	if m.replyMode {
		uid := m.replyUID
		return func() tea.Msg {
			return ReplySendMsg{UID: uid, Body: body}
		}
	}

	to := splitRecipients(m.fb.to)
	subject := m.fb.subject
	return func() tea.Msg {
		return SendMsg{To: to, Subject: subject, Body: body}
	}
}

// splitRecipients breaks the comma-separated To field into addresses.
func splitRecipients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateRecipients(s string) error {
	if len(splitRecipients(s)) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	return nil
}
