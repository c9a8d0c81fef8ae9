// Package addressbook provides recipient completion and display formatting
// on top of the contact store.
package addressbook

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/nhle/mailview/internal/model"
	"github.com/nhle/mailview/internal/store"
)

// Book wraps the contact store with completion and formatting helpers.
type Book struct {
	store store.Store
}

// New creates an address book over the given store.
func New(s store.Store) *Book {
	return &Book{store: s}
}

// Complete returns up to limit contacts matching the given prefix, ranked
// by how often they have been contacted.
func (b *Book) Complete(
	ctx context.Context, prefix string, limit int,
) ([]model.Contact, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}

	contacts, err := b.store.SearchContacts(ctx, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("completing %q: %w", prefix, err)
	}
	return contacts, nil
}

// Record notes the recipients of a sent message, parsing each address and
// bumping its usage counter. Unparseable addresses are recorded bare.
func (b *Book) Record(ctx context.Context, addrs []string) error {
	for _, raw := range addrs {
		name, address := splitAddress(raw)
		if address == "" {
			continue
		}
		if err := b.store.RecordContact(ctx, name, address); err != nil {
			return fmt.Errorf("recording recipient %s: %w", address, err)
		}
	}
	return nil
}

// FormatRecipient renders a contact for display according to the
// configured format. A contact without a display name always renders as
// the bare address.
func FormatRecipient(c model.Contact, format model.RecipientFormat) string {
	if c.Name == "" || format == model.RecipientAddressOnly {
		return c.Address
	}
	return fmt.Sprintf("%s <%s>", c.Name, c.Address)
}

// splitAddress parses an RFC 5322 address into display name and bare
// address, falling back to treating the input as a bare address.
func splitAddress(raw string) (name, address string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}

	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", raw
	}
	return addr.Name, addr.Address
}
