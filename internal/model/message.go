package model

import "time"

// Standard IMAP system flags this application cares about.
const (
	FlagSeen     = "\\Seen"
	FlagFlagged  = "\\Flagged"
	FlagAnswered = "\\Answered"
	FlagDeleted  = "\\Deleted"
)

// Message is a locally cached mail message: envelope data, the raw bodies
// as fetched, and the converted renderings so conversion runs once per
// message rather than once per view.
type Message struct {
	// ID is the local row identifier.
	ID string

	// UID is the message's IMAP UID within its mailbox.
	UID uint32

	// MessageID is the RFC 5322 Message-ID header value.
	MessageID string

	Subject     string
	From        string // display name when known, else the address
	FromAddress string // bare address, used for carrier detection
	To          []string
	Date        time.Time
	Flags       []string

	// TextBody and HTMLBody are the parts as fetched, undecorated.
	TextBody string
	HTMLBody string

	// RenderedHTML is the text→HTML conversion of TextBody, used for
	// browser export; RenderedText is the HTML→text conversion of
	// HTMLBody (or TextBody passed through), used for terminal display.
	RenderedHTML string
	RenderedText string

	FetchedAt time.Time
}

// HasFlag reports whether the message carries the given IMAP flag.
func (m *Message) HasFlag(flag string) bool {
	for _, f := range m.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Seen reports whether the message has been read.
func (m *Message) Seen() bool { return m.HasFlag(FlagSeen) }

// Flagged reports whether the message is starred.
func (m *Message) Flagged() bool { return m.HasFlag(FlagFlagged) }

// Contact is an address book entry used for recipient completion.
type Contact struct {
	// ID is the local row identifier.
	ID string

	// Name is the display name, possibly empty.
	Name string

	// Address is the bare email address.
	Address string

	// TimesContacted counts messages sent to this contact; completion
	// results are ranked by it.
	TimesContacted int

	LastContacted time.Time
}
