package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/mailview/internal/source"
)

// defaultSearchWindow bounds the envelope search when the caller has no
// sync cursor yet.
const defaultSearchWindow = 30 * 24 * time.Hour

// archiveFolders are tried in order when archiving; servers disagree on
// what the archive mailbox is called.
var archiveFolders = []string{
	"Archive", "[Gmail]/All Mail", "Archives", "INBOX.Archive",
}

// IMAPClient wraps go-imap v2 for connecting to and querying one
// mailbox on an IMAP server.
type IMAPClient struct {
	host     string
	port     string
	username string
	password string
	tls      bool
	mailbox  string
}

// NewIMAPClient creates a new IMAP client configuration. An empty mailbox
// defaults to INBOX.
func NewIMAPClient(
	host, port, username, password string, tls bool, mailbox string,
) *IMAPClient {
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &IMAPClient{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
		mailbox:  mailbox,
	}
}

// Connect establishes a connection to the IMAP server, authenticates,
// and returns the connected client. The caller is responsible for
// calling Logout/Close on the returned client.
func (c *IMAPClient) Connect(
	_ context.Context,
) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &source.AuthError{
			Account: c.username,
			Message: fmt.Sprintf("IMAP authentication failed: %v", err),
		}
	}

	return client, nil
}

// selectMailbox opens the configured mailbox on a connected client.
func (c *IMAPClient) selectMailbox(client *imapclient.Client) error {
	if _, err := client.Select(c.mailbox, nil).Wait(); err != nil {
		return fmt.Errorf("selecting %s: %w", c.mailbox, err)
	}
	return nil
}

// withMailbox runs fn against a fresh connection with the configured
// mailbox selected, logging out afterwards. Each operation gets its own
// short-lived session rather than holding a connection across poll
// intervals.
func (c *IMAPClient) withMailbox(
	ctx context.Context, fn func(*imapclient.Client) error,
) error {
	client, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	if err := c.selectMailbox(client); err != nil {
		return err
	}
	return fn(client)
}

// FetchEnvelopes searches the mailbox for messages received since the
// given time and returns their envelope data. A zero since defaults to
// the last 30 days. When the search exceeds limit, the most recent
// messages win.
func (c *IMAPClient) FetchEnvelopes(
	ctx context.Context, since time.Time, limit int,
) ([]Envelope, error) {
	if since.IsZero() {
		since = time.Now().Add(-defaultSearchWindow)
	}

	var envelopes []Envelope
	err := c.withMailbox(ctx, func(client *imapclient.Client) error {
		searchData, err := client.UIDSearch(
			&imap.SearchCriteria{Since: since}, nil,
		).Wait()
		if err != nil {
			return fmt.Errorf("searching messages: %w", err)
		}

		uids := searchData.AllUIDs()
		if len(uids) == 0 {
			return nil
		}
		if limit > 0 && len(uids) > limit {
			uids = uids[len(uids)-limit:]
		}

		fetchCmd := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
			Envelope: true,
			Flags:    true,
			UID:      true,
		})
		defer fetchCmd.Close()

		for {
			msg := fetchCmd.Next()
			if msg == nil {
				break
			}
			buf, err := msg.Collect()
			if err != nil {
				continue
			}
			envelopes = append(envelopes, envelopeFromBuffer(buf))
		}

		if err := fetchCmd.Close(); err != nil {
			return fmt.Errorf("fetching envelopes: %w", err)
		}
		return nil
	})
	return envelopes, err
}

// FetchMessage fetches the full message body for the given UID and
// parses it into a ParsedMessage. The body section is fetched with
// Peek so the server does not mark the message read as a side effect;
// read state is an explicit user action.
func (c *IMAPClient) FetchMessage(
	ctx context.Context, uid uint32,
) (*ParsedMessage, error) {
	var parsed *ParsedMessage
	err := c.withMailbox(ctx, func(client *imapclient.Client) error {
		bodySection := &imap.FetchItemBodySection{Peek: true}

		fetchCmd := client.Fetch(
			imap.UIDSetNum(imap.UID(uid)),
			&imap.FetchOptions{
				Envelope:    true,
				Flags:       true,
				UID:         true,
				BodySection: []*imap.FetchItemBodySection{bodySection},
			},
		)
		defer fetchCmd.Close()

		msg := fetchCmd.Next()
		if msg == nil {
			return fmt.Errorf("message UID %d not found", uid)
		}

		buf, err := msg.Collect()
		if err != nil {
			return fmt.Errorf("collecting message data: %w", err)
		}

		parsed = &ParsedMessage{Envelope: envelopeFromBuffer(buf)}
		if rawBody := buf.FindBodySection(bodySection); rawBody != nil {
			parsed.TextBody, parsed.HTMLBody, parsed.Attachments = parseMIMEBody(rawBody)
		}

		if err := fetchCmd.Close(); err != nil {
			return fmt.Errorf("closing fetch: %w", err)
		}
		return nil
	})
	return parsed, err
}

// SetFlags adds or removes flags on a message.
func (c *IMAPClient) SetFlags(
	ctx context.Context, uid uint32, flags []imap.Flag, add bool,
) error {
	return c.withMailbox(ctx, func(client *imapclient.Client) error {
		op := imap.StoreFlagsAdd
		if !add {
			op = imap.StoreFlagsDel
		}
		return client.Store(imap.UIDSetNum(imap.UID(uid)), &imap.StoreFlags{
			Op:     op,
			Silent: true,
			Flags:  flags,
		}, nil).Close()
	})
}

// MoveToArchive moves the message to an archive mailbox, trying common
// archive folder names and falling back to marking the message deleted.
func (c *IMAPClient) MoveToArchive(
	ctx context.Context, uid uint32,
) error {
	return c.withMailbox(ctx, func(client *imapclient.Client) error {
		uidSet := imap.UIDSetNum(imap.UID(uid))

		for _, folder := range archiveFolders {
			if _, err := client.Move(uidSet, folder).Wait(); err == nil {
				return nil
			}
		}

		return client.Store(uidSet, &imap.StoreFlags{
			Op:     imap.StoreFlagsAdd,
			Silent: true,
			Flags:  []imap.Flag{imap.FlagDeleted},
		}, nil).Close()
	})
}

// envelopeFromBuffer extracts an Envelope from a FetchMessageBuffer.
func envelopeFromBuffer(buf *imapclient.FetchMessageBuffer) Envelope {
	env := Envelope{
		UID: uint32(buf.UID),
	}

	if buf.Envelope != nil {
		env.MessageID = buf.Envelope.MessageID
		env.Subject = buf.Envelope.Subject
		env.Date = buf.Envelope.Date

		if len(buf.Envelope.From) > 0 {
			from := buf.Envelope.From[0]
			env.FromAddress = from.Addr()
			if from.Name != "" {
				env.From = from.Name
			} else {
				env.From = env.FromAddress
			}
		}

		for _, to := range buf.Envelope.To {
			env.To = append(env.To, to.Addr())
		}
	}

	for _, flag := range buf.Flags {
		env.Flags = append(env.Flags, string(flag))
	}

	return env
}

// parseMIMEBody parses a raw RFC 2822 message with go-message and
// extracts the text/plain body, text/html body, and attachment
// metadata. Attachment content is not kept, only its size.
func parseMIMEBody(raw []byte) (
	textBody string, htmlBody string, attachments []Attachment,
) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		// Unparseable MIME: show the raw bytes as plain text.
		return string(raw), "", nil
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}

			switch {
			case strings.HasPrefix(contentType, "text/plain"):
				textBody = string(body)
			case strings.HasPrefix(contentType, "text/html"):
				htmlBody = string(body)
			}

		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()

			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}

			attachments = append(attachments, Attachment{
				Filename: filename,
				Size:     int64(len(body)),
				MIMEType: contentType,
			})
		}
	}

	return textBody, htmlBody, attachments
}
