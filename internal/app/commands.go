package app

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailview/internal/credential"
	"github.com/nhle/mailview/internal/model"
	"github.com/nhle/mailview/internal/render"
	"github.com/nhle/mailview/internal/source/email"
	"github.com/nhle/mailview/internal/store"
	"github.com/nhle/mailview/internal/ui/messageview"
)

// accountReadyMsg is sent when the mail adapter has been constructed
// from the configuration and the stored password.
type accountReadyMsg struct {
	adapter *email.Adapter
}

// accountErrorMsg is sent when the account cannot be set up.
type accountErrorMsg struct {
	message string
}

// replyReadyMsg carries the original message a reply is composed against.
type replyReadyMsg struct {
	original *model.Message
}

// actionDoneMsg reports the outcome of a message action.
type actionDoneMsg struct {
	uid    uint32
	action string
	err    error
}

// browserOpenedMsg reports the outcome of the HTML export.
type browserOpenedMsg struct {
	path string
	err  error
}

// sentResultMsg reports the outcome of sending a message.
type sentResultMsg struct {
	err error
}

// connectAccount builds the mail adapter, loading the password from the
// system keyring.
func (m Model) connectAccount() tea.Cmd {
	account := m.cfg.Account
	return func() tea.Msg {
		if account.IMAPHost == "" || account.Username == "" {
			return accountErrorMsg{
				message: "no account configured; edit " + model.DefaultConfigPath(),
			}
		}

		password, err := credential.Get(credential.PasswordKey(account.Username))
		if err != nil {
			return accountErrorMsg{
				message: "no stored password for " + account.Username +
					"; run: mailview auth",
			}
		}

		return accountReadyMsg{adapter: email.NewAdapter(account, password)}
	}
}

// loadMessage fetches a message for display, preferring the local cache
// and falling back to the server when the body has not been fetched yet.
// Opening a message marks it read.
func (m Model) loadMessage(uid uint32) tea.Cmd {
	s := m.store
	adapter := m.adapter
	return func() tea.Msg {
		ctx := context.Background()

		msg, err := s.GetMessageByUID(ctx, uid)
		if err != nil && !store.IsNotFound(err) {
			return messageview.MessageLoadedMsg{Message: nil}
		}

		if msg == nil || (msg.RenderedText == "" && msg.RenderedHTML == "") {
			if adapter == nil {
				return messageview.MessageLoadedMsg{Message: msg}
			}
			fetched, fetchErr := adapter.FetchFullMessage(ctx, uid)
			if fetchErr != nil {
				return messageview.MessageLoadedMsg{Message: msg}
			}
			if msg != nil {
				fetched.ID = msg.ID
			}
			msg = fetched
			_ = s.UpsertMessages(ctx, []model.Message{*msg})
		}

		if !msg.Seen() {
			if adapter != nil {
				_ = adapter.MarkRead(ctx, uid)
			}
			msg.Flags = applyFlagChange(msg.Flags, model.FlagSeen, true)
			_ = s.SetMessageFlags(ctx, uid, msg.Flags)
		}

		return messageview.MessageLoadedMsg{Message: msg}
	}
}

// prepareReply loads the original message before opening the reply form.
func (m Model) prepareReply(uid uint32) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		msg, err := s.GetMessageByUID(context.Background(), uid)
		if err != nil || msg == nil {
			return actionDoneMsg{uid: uid, action: "reply", err: err}
		}
		return replyReadyMsg{original: msg}
	}
}

// executeAction performs a flag or archive action against the server and
// mirrors the change into the local cache.
func (m Model) executeAction(uid uint32, action string) tea.Cmd {
	s := m.store
	adapter := m.adapter
	return func() tea.Msg {
		if adapter == nil {
			return actionDoneMsg{
				uid: uid, action: action,
				err: fmt.Errorf("not connected"),
			}
		}

		ctx := context.Background()

		var err error
		switch action {
		case "archive":
			err = adapter.Archive(ctx, uid)
			if err == nil {
				err = s.DeleteMessage(ctx, uid)
			}
			return actionDoneMsg{uid: uid, action: action, err: err}
		case "flag":
			err = adapter.Flag(ctx, uid)
		case "unflag":
			err = adapter.Unflag(ctx, uid)
		case "mark_read":
			err = adapter.MarkRead(ctx, uid)
		case "mark_unread":
			err = adapter.MarkUnread(ctx, uid)
		default:
			err = fmt.Errorf("unknown action %q", action)
		}
		if err != nil {
			return actionDoneMsg{uid: uid, action: action, err: err}
		}

		if msg, getErr := s.GetMessageByUID(ctx, uid); getErr == nil {
			flags := msg.Flags
			switch action {
			case "flag":
				flags = applyFlagChange(flags, model.FlagFlagged, true)
			case "unflag":
				flags = applyFlagChange(flags, model.FlagFlagged, false)
			case "mark_read":
				flags = applyFlagChange(flags, model.FlagSeen, true)
			case "mark_unread":
				flags = applyFlagChange(flags, model.FlagSeen, false)
			}
			err = s.SetMessageFlags(ctx, uid, flags)
		}

		return actionDoneMsg{uid: uid, action: action, err: err}
	}
}

// openInBrowser writes the message's HTML rendering to a temporary file
// and opens it with the system browser.
func (m Model) openInBrowser(uid uint32) tea.Cmd {
	s := m.store
	fixedWidth := m.cfg.Display.FixedWidthFont
	return func() tea.Msg {
		msg, err := s.GetMessageByUID(context.Background(), uid)
		if err != nil {
			return browserOpenedMsg{err: err}
		}

		body := msg.RenderedHTML
		if body == "" && msg.TextBody != "" {
			body = render.TextToHTML(msg.TextBody)
		}
		if body == "" {
			return browserOpenedMsg{err: fmt.Errorf("message has no content")}
		}

		doc := render.WrapDocument(body, fixedWidth)

		f, err := os.CreateTemp("", "mailview-*.html")
		if err != nil {
			return browserOpenedMsg{err: fmt.Errorf("creating export file: %w", err)}
		}
		if _, err := f.WriteString(doc); err != nil {
			f.Close()
			return browserOpenedMsg{err: fmt.Errorf("writing export file: %w", err)}
		}
		if err := f.Close(); err != nil {
			return browserOpenedMsg{err: err}
		}

		if err := openPath(f.Name()); err != nil {
			return browserOpenedMsg{path: f.Name(), err: err}
		}
		return browserOpenedMsg{path: f.Name()}
	}
}

// openPath launches the platform's opener for the given file.
func openPath(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}

// sendMessage sends a new message and records its recipients in the
// address book.
func (m Model) sendMessage(to []string, subject, body string) tea.Cmd {
	adapter := m.adapter
	book := m.book
	return func() tea.Msg {
		if adapter == nil {
			return sentResultMsg{err: fmt.Errorf("not connected")}
		}

		ctx := context.Background()
		if err := adapter.Send(ctx, to, subject, body); err != nil {
			return sentResultMsg{err: err}
		}

		_ = book.Record(ctx, to)
		return sentResultMsg{}
	}
}

// sendReply sends a reply to the given message.
func (m Model) sendReply(uid uint32, body string) tea.Cmd {
	adapter := m.adapter
	return func() tea.Msg {
		if adapter == nil {
			return sentResultMsg{err: fmt.Errorf("not connected")}
		}
		return sentResultMsg{err: adapter.Reply(context.Background(), uid, body)}
	}
}

// applyFlagChange adds or removes a flag from a flag set.
func applyFlagChange(flags []string, flag string, add bool) []string {
	out := make([]string, 0, len(flags)+1)
	for _, f := range flags {
		if f != flag {
			out = append(out, f)
		}
	}
	if add {
		out = append(out, flag)
	}
	return out
}
