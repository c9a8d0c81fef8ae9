package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"

	"github.com/nhle/mailview/internal/emoji"
	"github.com/nhle/mailview/internal/mime"
	"github.com/nhle/mailview/internal/model"
	"github.com/nhle/mailview/internal/render"
)

// Adapter ties the IMAP client, the SMTP submission path, and the body
// renderers together behind one mail-account facade.
type Adapter struct {
	imapClient *IMAPClient
	smtpConfig SMTPConfig
	username   string
}

// NewAdapter creates a mail adapter for the given account. The password
// comes from the credential store, never from the config file.
func NewAdapter(account model.AccountConfig, password string) *Adapter {
	return &Adapter{
		imapClient: NewIMAPClient(
			account.IMAPHost, account.IMAPPort,
			account.Username, password,
			account.TLS, account.Mailbox,
		),
		smtpConfig: SMTPConfig{
			Host:     account.SMTPHost,
			Port:     account.SMTPPort,
			Username: account.Username,
			Password: password,
			TLS:      account.TLS,
		},
		username: account.Username,
	}
}

// ValidateConnection verifies IMAP credentials by connecting,
// authenticating, and selecting the mailbox. Returns the username on
// success.
func (a *Adapter) ValidateConnection(ctx context.Context) (string, error) {
	client, err := a.imapClient.Connect(ctx)
	if err != nil {
		return "", fmt.Errorf("validating mail connection: %w", err)
	}
	defer func() { _ = client.Logout().Wait() }()

	if err := a.imapClient.selectMailbox(client); err != nil {
		return "", err
	}

	return a.username, nil
}

// FetchMessages retrieves recent envelopes from the mailbox and maps them
// to messages without bodies. Bodies are fetched lazily per message.
func (a *Adapter) FetchMessages(
	ctx context.Context, since time.Time, limit int,
) ([]model.Message, error) {
	envelopes, err := a.imapClient.FetchEnvelopes(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching messages: %w", err)
	}

	msgs := make([]model.Message, 0, len(envelopes))
	for _, env := range envelopes {
		msgs = append(msgs, envelopeToMessage(env))
	}

	return msgs, nil
}

// FetchFullMessage retrieves the full message body for a given UID,
// converts its bodies for display, and returns the assembled message.
func (a *Adapter) FetchFullMessage(
	ctx context.Context, uid uint32,
) (*model.Message, error) {
	parsed, err := a.imapClient.FetchMessage(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("fetching message %d: %w", uid, err)
	}

	m := envelopeToMessage(parsed.Envelope)
	m.TextBody = parsed.TextBody
	m.HTMLBody = parsed.HTMLBody
	renderMessage(&m)

	return &m, nil
}

// MarkRead sets the \Seen flag on a message.
func (a *Adapter) MarkRead(ctx context.Context, uid uint32) error {
	return a.imapClient.SetFlags(ctx, uid, []imap.Flag{imap.FlagSeen}, true)
}

// MarkUnread clears the \Seen flag on a message.
func (a *Adapter) MarkUnread(ctx context.Context, uid uint32) error {
	return a.imapClient.SetFlags(ctx, uid, []imap.Flag{imap.FlagSeen}, false)
}

// Flag sets the \Flagged flag on a message.
func (a *Adapter) Flag(ctx context.Context, uid uint32) error {
	return a.imapClient.SetFlags(ctx, uid, []imap.Flag{imap.FlagFlagged}, true)
}

// Unflag clears the \Flagged flag on a message.
func (a *Adapter) Unflag(ctx context.Context, uid uint32) error {
	return a.imapClient.SetFlags(ctx, uid, []imap.Flag{imap.FlagFlagged}, false)
}

// Archive moves a message out of the mailbox.
func (a *Adapter) Archive(ctx context.Context, uid uint32) error {
	return a.imapClient.MoveToArchive(ctx, uid)
}

// Reply fetches the original message, composes a reply quoting it, sends
// the reply via SMTP, and marks the original as answered.
func (a *Adapter) Reply(
	ctx context.Context, uid uint32, replyText string,
) error {
	parsed, err := a.imapClient.FetchMessage(ctx, uid)
	if err != nil {
		return fmt.Errorf("fetching message for reply: %w", err)
	}

	subject := parsed.Envelope.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	body := replyText + "\n\n" + quoteOriginal(parsed)

	to := parsed.Envelope.FromAddress
	if to == "" {
		to = parsed.Envelope.From
	}

	raw, err := composeMessage(
		a.username, []string{to}, subject, body, parsed.Envelope.MessageID,
	)
	if err != nil {
		return fmt.Errorf("composing reply: %w", err)
	}

	if err := sendRaw(a.smtpConfig, a.username, []string{to}, raw); err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}

	return a.imapClient.SetFlags(
		ctx, uid, []imap.Flag{imap.FlagAnswered}, true,
	)
}

// Send composes and sends a new message to the given recipients.
func (a *Adapter) Send(
	_ context.Context, to []string, subject, body string,
) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	raw, err := composeMessage(a.username, to, subject, body, "")
	if err != nil {
		return fmt.Errorf("composing message: %w", err)
	}

	if err := sendRaw(a.smtpConfig, a.username, to, raw); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

// envelopeToMessage converts an Envelope to a model.Message.
func envelopeToMessage(env Envelope) model.Message {
	return model.Message{
		UID:         env.UID,
		MessageID:   env.MessageID,
		Subject:     env.Subject,
		From:        env.From,
		FromAddress: env.FromAddress,
		To:          env.To,
		Date:        env.Date,
		Flags:       env.Flags,
		FetchedAt:   time.Now(),
	}
}

// renderMessage fills in the display renderings from the raw bodies.
// Plain-text bodies are converted to HTML for browser export, with any
// carrier emoji swapped for image references keyed on the sender's
// domain. HTML-only bodies are reduced to text for terminal display.
func renderMessage(m *model.Message) {
	if m.TextBody != "" {
		html := render.TextToHTML(m.TextBody)
		if emoji.HasEmoji(html) {
			html = emoji.ConvertToImg(html, []string{m.FromAddress})
		}
		m.RenderedHTML = html
		m.RenderedText = m.TextBody
	} else if m.HTMLBody != "" {
		m.RenderedHTML = m.HTMLBody
		m.RenderedText = render.HTMLToText(m.HTMLBody)
	}

	if emoji.HasEmoji(m.RenderedText) {
		m.RenderedText = emoji.InlineNames(m.RenderedText)
	}
}

// quoteOriginal builds the quoted block appended below a reply body.
func quoteOriginal(parsed *ParsedMessage) string {
	original := parsed.TextBody
	if original == "" && parsed.HTMLBody != "" {
		original = render.HTMLToText(parsed.HTMLBody)
	}

	var quoted strings.Builder
	quoted.WriteString(fmt.Sprintf(
		"On %s, %s wrote:\n",
		parsed.Envelope.Date.Format("Mon, 2 Jan 2006 at 15:04"),
		parsed.Envelope.From,
	))
	for _, line := range strings.Split(strings.TrimRight(original, "\n"), "\n") {
		quoted.WriteString("> ")
		quoted.WriteString(line)
		quoted.WriteString("\n")
	}

	return quoted.String()
}

// composeMessage serializes a multipart/alternative message carrying the
// body as both plain text and its HTML conversion.
func composeMessage(
	from string, to []string, subject, body, inReplyTo string,
) ([]byte, error) {
	alt := mime.NewMultipart("alternative")
	alt.AddPart(mime.NewTextPart("text/plain", "utf-8", body))
	alt.AddPart(mime.NewTextPart("text/html", "utf-8", render.TextToHTML(body)))
	if err := alt.SetEncoding(mime.Encoding8Bit); err != nil {
		return nil, err
	}

	root := mime.NewMultipartPart(alt)
	root.Header.Set("From", from)
	root.Header.Set("To", strings.Join(to, ", "))
	root.Header.Set("Subject", subject)
	root.Header.Set("Date", time.Now().Format(time.RFC1123Z))
	root.Header.Set("MIME-Version", "1.0")
	if inReplyTo != "" {
		ref := "<" + strings.Trim(inReplyTo, "<>") + ">"
		root.Header.Set("In-Reply-To", ref)
		root.Header.Set("References", ref)
	}

	var buf bytes.Buffer
	if err := root.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sendRaw submits an already-serialized message over SMTP.
func sendRaw(cfg SMTPConfig, from string, to []string, raw []byte) error {
	addr := cfg.Host + ":" + cfg.Port

	if cfg.TLS {
		return sendSMTPWithTLS(addr, cfg, from, to, raw)
	}
	return sendSMTPWithStartTLS(addr, cfg, from, to, raw)
}

// sendSMTPWithTLS sends a message over an implicit TLS connection.
func sendSMTPWithTLS(
	addr string, cfg SMTPConfig,
	from string, to []string, raw []byte,
) error {
	tlsConfig := &tls.Config{ServerName: cfg.Host}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return sendMailViaSMTPClient(client, from, to, raw)
}

// sendSMTPWithStartTLS sends a message using STARTTLS.
func sendSMTPWithStartTLS(
	addr string, cfg SMTPConfig,
	from string, to []string, raw []byte,
) error {
	conn, err := net.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		return fmt.Errorf("dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: cfg.Host}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("SMTP STARTTLS: %w", err)
	}

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return sendMailViaSMTPClient(client, from, to, raw)
}

// sendMailViaSMTPClient sends a message using an already-authenticated
// SMTP client.
func sendMailViaSMTPClient(
	client *smtp.Client, from string, to []string, raw []byte,
) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("SMTP RCPT TO %s: %w", rcpt, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}

	if _, err := writer.Write(raw); err != nil {
		return fmt.Errorf("writing message body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing message body: %w", err)
	}

	return client.Quit()
}
