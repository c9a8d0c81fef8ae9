package store

import (
	"context"

	"github.com/nhle/mailview/internal/model"
)

// MessageFilter controls filtering, sorting, and pagination for message
// queries.
type MessageFilter struct {
	Unread   *bool   // only unread (true) or only read (false) messages
	Flagged  *bool   // only flagged (true) or only unflagged (false)
	Query    *string // search subject + sender
	SortBy   string  // "date", "subject", "from_name", "fetched_at"
	SortDesc bool
	Limit    int
	Offset   int
}

// Store defines the persistence interface for cached messages and the
// contact address book.
type Store interface {
	// === Messages ===

	UpsertMessages(ctx context.Context, msgs []model.Message) error
	GetMessages(ctx context.Context, opts MessageFilter) ([]model.Message, error)
	GetMessageByUID(ctx context.Context, uid uint32) (*model.Message, error)
	SetMessageFlags(ctx context.Context, uid uint32, flags []string) error
	DeleteMessage(ctx context.Context, uid uint32) error

	// === Contacts ===

	UpsertContact(ctx context.Context, c model.Contact) error
	SearchContacts(ctx context.Context, prefix string, limit int) ([]model.Contact, error)
	RecordContact(ctx context.Context, name, address string) error
	GetContacts(ctx context.Context) ([]model.Contact, error)
}
